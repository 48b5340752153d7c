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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-certregistry/internal/config"
	"github.com/jeremyhahn/go-certregistry/internal/rest"
	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/audit"
	"github.com/jeremyhahn/go-certregistry/pkg/health"
	"github.com/jeremyhahn/go-certregistry/pkg/logging"
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/jeremyhahn/go-certregistry/pkg/storage"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "/etc/certregistry/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("go-certregistry server\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Git Commit: %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		os.Exit(0)
	}

	if envConfig := os.Getenv("CERTREG_CONFIG"); envConfig != "" {
		*configPath = envConfig
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting certificate registry server",
		"config", *configPath,
		"version", version,
		"storage", cfg.Storage.Backend)

	backend, err := openBackend(cfg)
	if err != nil {
		logger.FatalError(err)
	}

	store, err := registry.NewStore(backend)
	if err != nil {
		logger.FatalError(err)
	}
	defer store.Close()

	// Identity is established by the REST layer (API keys); by the time a
	// caller reaches the registry it is authenticated.
	authn := accesscontrol.AuthenticatorFunc(func(ctx context.Context, subject string) error {
		return nil
	})

	emitter := audit.NewLoggerEmitter(logger)

	access, err := accesscontrol.New(store, authn,
		accesscontrol.WithEventSink(registry.NewRoleEventSink(emitter)))
	if err != nil {
		logger.FatalError(err)
	}

	reg, err := registry.New(&registry.Config{
		Store:   store,
		Access:  access,
		Emitter: emitter,
		Logger:  logger,
	})
	if err != nil {
		logger.FatalError(err)
	}

	checker := health.NewChecker()
	checker.RegisterCheck("storage", storageCheck(backend))

	apiKeys := make(map[string]string, len(cfg.Auth.APIKeys))
	if cfg.Auth.Enabled {
		for key, kc := range cfg.Auth.APIKeys {
			apiKeys[key] = kc.Subject
		}
	}

	srv, err := rest.NewServer(&rest.Config{
		Port:          cfg.Server.RESTPort,
		Registry:      reg,
		Version:       version,
		APIKeys:       apiKeys,
		EnableMetrics: cfg.Metrics.Enabled,
		Logger:        logger,
	})
	if err != nil {
		logger.FatalError(err)
	}
	srv.SetHealthChecker(checker)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	checker.MarkStarted()

	select {
	case err := <-errCh:
		if err != nil {
			logger.FatalError(err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.FatalError(err)
		}
	}

	logger.Info("server stopped")
}

// openBackend creates the storage backend named by the configuration.
func openBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "file":
		return storage.NewFileBackend(cfg.Storage.Path)
	case "memory":
		return storage.NewMemoryBackend()
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Storage.Backend)
	}
}

// storageCheck probes the storage backend for readiness.
func storageCheck(backend storage.Backend) health.CheckFunc {
	return func(ctx context.Context) health.CheckResult {
		if _, err := backend.Exists("version"); err != nil {
			return health.CheckResult{
				Name:   "storage",
				Status: health.StatusUnhealthy,
				Error:  err.Error(),
			}
		}
		return health.CheckResult{
			Name:    "storage",
			Status:  health.StatusHealthy,
			Message: "Storage backend reachable",
		}
	}
}
