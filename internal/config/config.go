// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-certregistry.
//
// go-certregistry is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Auth    AuthConfig    `yaml:"auth"`
	Metrics MetricsConfig `yaml:"metrics"`
	Health  HealthConfig  `yaml:"health"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	RESTPort int    `yaml:"rest_port"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuthConfig controls authentication of REST callers. When disabled, the
// principal is taken from the X-Registry-Principal header unverified, which
// is only appropriate for development.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`

	// APIKeys maps an API key to its caller identity
	APIKeys map[string]APIKeyConfig `yaml:"api_keys,omitempty"`
}

// APIKeyConfig represents an API key and its associated identity
type APIKeyConfig struct {
	Subject string `yaml:"subject"`
}

// MetricsConfig controls the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HealthConfig controls health check endpoints
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// StorageConfig controls the registry storage backend
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file
	Path    string `yaml:"path"`    // data directory for the file backend
}

// Default returns a configuration suitable for local development
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "localhost",
			RESTPort: 8443,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Health: HealthConfig{
			Enabled: true,
			Path:    "/health",
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "",
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("CERTREG_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if restPort := os.Getenv("CERTREG_REST_PORT"); restPort != "" {
		port, err := strconv.Atoi(restPort)
		if err != nil {
			log.Printf("Warning: invalid CERTREG_REST_PORT value %q, using default %d: %v",
				restPort, cfg.Server.RESTPort, err)
		} else if port < 1 || port > 65535 {
			log.Printf("Warning: invalid CERTREG_REST_PORT value %q (out of range 1-65535), using default %d",
				restPort, cfg.Server.RESTPort)
		} else {
			cfg.Server.RESTPort = port
		}
	}

	if level := os.Getenv("CERTREG_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("CERTREG_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	if backend := os.Getenv("CERTREG_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dataDir := os.Getenv("CERTREG_DATA_DIR"); dataDir != "" {
		cfg.Storage.Path = dataDir
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.RESTPort < 1 || c.Server.RESTPort > 65535 {
		return fmt.Errorf("invalid REST port: %d", c.Server.RESTPort)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	switch c.Storage.Backend {
	case "memory":
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory or file)", c.Storage.Backend)
	}

	if c.Auth.Enabled {
		if len(c.Auth.APIKeys) == 0 {
			return fmt.Errorf("auth is enabled but no API keys are configured")
		}
		for key, kc := range c.Auth.APIKeys {
			if kc.Subject == "" {
				return fmt.Errorf("API key %q has no subject", maskKey(key))
			}
		}
	}

	return nil
}

// maskKey returns a redacted form of an API key safe for error messages.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
