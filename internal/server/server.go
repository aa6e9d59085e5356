// Package server is the trace viewer: a small REST API over recorded
// scheduler runs and their trace events.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/tos/internal/config"
	"github.com/me/tos/internal/store"
)

// Server serves recorded runs over HTTP.
type Server struct {
	router    chi.Router
	logger    *slog.Logger
	config    config.ServeConfig
	store     store.Store
	startTime time.Time
}

// New creates a Server with all routes registered.
func New(cfg config.ServeConfig, st store.Store, logger *slog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger.With("component", "server"),
		config:    cfg,
		store:     st,
		startTime: time.Now(),
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware(s.logger))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
		r.Get("/runs/{runID}/events", s.handleGetRunEvents)
	})
}

// ListenAndServe blocks serving HTTP on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("trace viewer listening", "addr", s.config.Addr)
	return http.ListenAndServe(s.config.Addr, s.router)
}
