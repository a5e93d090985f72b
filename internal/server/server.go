// Package server provides the main HTTP server for LeaseSync.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/leasesync/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ReadinessChecker verifies that the server is ready to serve traffic.
// Returns nil if ready, an error describing why not otherwise.
type ReadinessChecker func(ctx context.Context) error

// RouteRegistrar allows feature packages to register routes on the
// server without creating import cycles (consumer-side interface).
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Server is the main LeaseSync HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	ready      ReadinessChecker
}

// New creates a Server with middleware and routes. Feature packages
// contribute their endpoints through registrars.
func New(addr string, logger *zap.Logger, ready ReadinessChecker, registrars ...RouteRegistrar) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger: logger,
		mux:    mux,
		ready:  ready,
	}

	s.registerRoutes()
	for _, r := range registrars {
		r.RegisterRoutes(mux)
	}

	// Middleware chain: outermost listed first.
	handler := Chain(mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, []string{"/healthz", "/readyz", "/metrics"}),
		SecurityHeadersMiddleware,
		VersionHeaderMiddleware,
		RateLimitMiddleware(100, 200, []string{"/healthz", "/readyz", "/metrics"}),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// registerRoutes sets up all core routes.
func (s *Server) registerRoutes() {
	// Unversioned operational endpoints.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Versioned API endpoints.
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealthz is a liveness probe -- returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// handleReadyz checks readiness -- returns 200 if the server can serve traffic.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version map[string]string `json:"version"`
}

// handleHealth returns detailed health information.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:  "ok",
		Service: "leasesync",
		Version: version.Map(),
	})
}
