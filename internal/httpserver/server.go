// Package httpserver exposes the execute/validate/describe operations over
// HTTP, plus a Prometheus /metrics endpoint, grounded on the teacher's
// pkg/server.Server (net/http.ServeMux, a middleware chain, JSON
// request/response helpers) narrowed to this engine's three collaborator
// operations instead of the teacher's full workflow-CRUD + HTTP-client
// registration surface.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pflowhq/pflow/internal/compiler"
	"github.com/pflowhq/pflow/internal/obslog"
	"github.com/pflowhq/pflow/internal/registry"
	"github.com/pflowhq/pflow/internal/runtimeconfig"
	"github.com/pflowhq/pflow/internal/telemetry"
)

// Config holds HTTP server configuration, grounded 1:1 on the teacher's
// pkg/server.Config.
type Config struct {
	Address            string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	EnableCORS         bool
}

// DefaultConfig matches the teacher's pkg/server.DefaultConfig.
func DefaultConfig() Config {
	return Config{
		Address:            ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024,
		EnableCORS:         true,
	}
}

// Server is the HTTP API collaborator over the execute/validate/describe
// operations.
type Server struct {
	config     Config
	httpServer *http.Server
	registry   *registry.Registry
	factories  compiler.Factories
	runtime    *runtimeconfig.Config
	logger     *obslog.Logger
	telemetry  *telemetry.Telemetry
}

// New builds a Server wired to reg/factories/runtime for compiling incoming
// workflows and tel/logger for observability, matching how the teacher's
// server.New wires an engine config into the route handlers.
func New(cfg Config, reg *registry.Registry, factories compiler.Factories, runtime *runtimeconfig.Config, logger *obslog.Logger, tel *telemetry.Telemetry) (*Server, error) {
	if logger == nil {
		logger = obslog.New(obslog.DefaultConfig())
	}

	s := &Server{
		config:    cfg,
		registry:  reg,
		factories: factories,
		runtime:   runtime,
		logger:    logger,
		telemetry: tel,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.middlewareChain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/workflow/execute", s.handleExecute)
	mux.HandleFunc("/api/v1/workflow/validate", s.handleValidate)
	mux.HandleFunc("/api/v1/registry", s.handleDescribe)
}

func (s *Server) middlewareChain(handler http.Handler) http.Handler {
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	s.logger.WithField("address", s.config.Address).Info("starting http server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("httpserver: failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("httpserver: failed to shut down: %w", err)
	}
	return nil
}
