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

package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jeremyhahn/go-certregistry/pkg/logging"
	"github.com/jeremyhahn/go-certregistry/pkg/metrics"
	"github.com/jeremyhahn/go-certregistry/pkg/registry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the REST API server.
type Server struct {
	server   *http.Server
	handlers *HandlerContext
	port     int
	apiKeys  map[string]string
	metrics  bool
	logger   *logging.Logger
}

// Config holds the REST server configuration.
type Config struct {
	// Port is the HTTP port to listen on (default: 8443)
	Port int

	// Registry is the certificate registry service. Required.
	Registry *registry.Registry

	// Version is the API version string
	Version string

	// APIKeys maps API keys to caller subjects. When empty, callers are
	// identified by the X-Registry-Principal header unverified.
	APIKeys map[string]string

	// EnableMetrics exposes Prometheus metrics at /metrics
	EnableMetrics bool

	// Logger is the structured logger (optional)
	Logger *logging.Logger

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration
}

// NewServer creates a new REST API server.
func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	if cfg.Port == 0 {
		cfg.Port = 8443
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = logging.DefaultLogger()
	}

	handlers := NewHandlerContext(cfg.Registry, cfg.Version)

	server := &Server{
		handlers: handlers,
		port:     cfg.Port,
		apiKeys:  cfg.APIKeys,
		metrics:  cfg.EnableMetrics,
		logger:   log,
	}

	router := server.setupRouter()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return server, nil
}

// setupRouter configures the chi router with all routes and middleware.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(s.RecoveryMiddleware())
	r.Use(s.LoggingMiddleware())
	r.Use(metrics.HTTPMiddleware)
	r.Use(CORSMiddleware)

	// Health endpoints (no auth required)
	r.Get("/health", s.handlers.HealthHandler)
	r.Head("/health", s.handlers.HealthHandler)
	r.Get("/health/live", s.handlers.LivenessHandler)
	r.Get("/health/ready", s.handlers.ReadinessHandler)
	r.Get("/health/startup", s.handlers.StartupHandler)

	if s.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API v1 routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.AuthenticationMiddleware())

		// Registry lifecycle
		r.Post("/registry/init", s.handlers.InitializeHandler)
		r.Get("/schema", s.handlers.GetSchemaHandler)
		r.Post("/schema/upgrade", s.handlers.UpgradeSchemaHandler)

		// Certificate endpoints
		r.Post("/certificates", s.handlers.IssueCertificateHandler)
		r.Post("/certificates/batch", s.handlers.BatchIssueHandler)
		r.Get("/certificates", s.handlers.ListCertificatesHandler)
		r.Get("/certificates/{id}", s.handlers.GetCertificateHandler)
		r.Put("/certificates/{id}/status", s.handlers.UpdateStatusHandler)
		r.Put("/certificates/{id}/metadata", s.handlers.UpdateMetadataHandler)
		r.Post("/certificates/{id}/revoke", s.handlers.RevokeCertificateHandler)
		r.Post("/certificates/{id}/verify", s.handlers.VerifyCertificateHandler)

		// Authority endpoints
		r.Post("/authorities", s.handlers.AddAuthorityHandler)
		r.Get("/authorities/{subject}", s.handlers.GetAuthorityHandler)
		r.Put("/authorities/{subject}", s.handlers.UpdateAuthorityHandler)

		// Role endpoints
		r.Post("/roles/grant", s.handlers.GrantRoleHandler)
		r.Post("/roles/revoke", s.handlers.RevokeRoleHandler)
		r.Get("/roles/{subject}", s.handlers.GetRolesHandler)
	})

	return r
}

// Start starts the REST API server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "port", s.port)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the REST API server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Errorf("failed to shutdown server: %v", err)
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Handler returns the configured router, for tests that drive the server
// through httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetHealthChecker sets the health checker for the server.
func (s *Server) SetHealthChecker(checker HealthChecker) {
	s.handlers.SetHealthChecker(checker)
}
