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

package cli

import (
	"context"
	"fmt"

	"github.com/jeremyhahn/go-certregistry/pkg/accesscontrol"
	"github.com/jeremyhahn/go-certregistry/pkg/audit"
	"github.com/jeremyhahn/go-certregistry/pkg/logging"
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/jeremyhahn/go-certregistry/pkg/storage"
)

// Config holds CLI configuration
type Config struct {
	DataDir      string
	Caller       string
	OutputFormat string
	Verbose      bool
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{
		OutputFormat: "text",
	}
}

// RequireCaller returns the caller identity or an error when --as was not
// supplied. Commands that pass an access-control gate need one.
func (c *Config) RequireCaller() (string, error) {
	if c.Caller == "" {
		return "", fmt.Errorf("a caller identity is required; supply one with --as")
	}
	return c.Caller, nil
}

// CreateRegistry opens the file-backed registry at the configured data
// directory. The CLI runs against local storage, so callers are taken at
// their word; role assignments still gate every operation.
func (c *Config) CreateRegistry() (*registry.Registry, error) {
	backend, err := storage.NewFileBackend(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry storage: %w", err)
	}

	store, err := registry.NewStore(backend)
	if err != nil {
		return nil, err
	}

	authn := accesscontrol.AuthenticatorFunc(func(ctx context.Context, subject string) error {
		return nil
	})

	var logger *logging.Logger
	if c.Verbose {
		logger = logging.NewLogger(true)
	} else {
		logger = logging.New("error", "text")
	}

	emitter := audit.Emitter(audit.NopEmitter{})
	if c.Verbose {
		emitter = audit.NewLoggerEmitter(logger)
	}

	access, err := accesscontrol.New(store, authn,
		accesscontrol.WithEventSink(registry.NewRoleEventSink(emitter)))
	if err != nil {
		return nil, err
	}

	return registry.New(&registry.Config{
		Store:   store,
		Access:  access,
		Emitter: emitter,
		Logger:  logger,
	})
}
