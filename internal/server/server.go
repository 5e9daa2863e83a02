// Package server hosts the sidecar HTTP surface: health probes and a
// version endpoint. It runs alongside the stdio transport so
// orchestrators can probe the process without touching the tool
// channel.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/3leaps/splunkmcp/internal/errors"
	"github.com/3leaps/splunkmcp/internal/server/handlers"
	"github.com/3leaps/splunkmcp/internal/server/middleware"
)

// Server wraps the chi router and the underlying http.Server.
type Server struct {
	host   string
	port   int
	router chi.Router
	http   *http.Server
}

// New builds a server bound to host:port with all routes registered.
func New(host string, port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)

	r.NotFound(apperrors.NotFoundHandler)
	r.MethodNotAllowed(apperrors.MethodNotAllowedHandler)

	r.Get("/health", handlers.HealthHandler)
	r.Get("/health/live", handlers.LivenessHandler)
	r.Get("/health/ready", handlers.ReadinessHandler)
	r.Get("/health/startup", handlers.StartupHandler)
	r.Get("/version", handlers.VersionHandler)

	s := &Server{host: host, port: port, router: r}
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Port returns the configured port.
func (s *Server) Port() int { return s.port }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Start serves until the listener fails or Shutdown is called.
// http.ErrServerClosed is swallowed so a clean shutdown returns nil.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
