// Package server provides the HTTP API for the shori gateway and the
// health endpoint every service exposes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/shori/internal/lifecycle"
)

// Server is the gateway HTTP server.
type Server struct {
	orch    *lifecycle.Orchestrator
	service string
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a gateway server. service names the process in the
// health response.
func NewServer(orch *lifecycle.Orchestrator, service string, logger *zap.Logger) *Server {
	return &Server{orch: orch, service: service, logger: logger}
}

// Router builds the gateway routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/documents", s.handleCreateDocument)
	r.Get("/api/documents", s.handleListDocuments)
	r.Get("/api/documents/{id}", s.handleGetDocument)
	r.Put("/api/documents/{id}", s.handleUpdateDocument)
	r.Delete("/api/documents/{id}", s.handleDeleteDocument)
	r.Get("/health", HealthHandler(s.service))

	return r
}

// Start starts the HTTP server on addr and blocks until it stops.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting gateway server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// HealthHandler returns the /health handler used by every service.
func HealthHandler(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"service":   service,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// NewHealthServer builds the health-only server workers run, so their HTTP
// surface stays up even when the broker is unavailable.
func NewHealthServer(addr, service string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", HealthHandler(service))
	return &http.Server{Addr: addr, Handler: r}
}
