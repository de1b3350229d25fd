// Package server provides the HTTP API for Chishiki.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/chishiki/internal/config"
	"github.com/hyperjump/chishiki/internal/engine"
)

// Server is the HTTP server for the Chishiki API.
type Server struct {
	engine *engine.Engine
	config *config.ServerConfig
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(e *engine.Engine, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		engine: e,
		config: cfg,
		logger: logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/search/diversity", s.handleDiversitySearch)
		r.Post("/search/fusion", s.handleFusion)
		r.Post("/search/keyword", s.handleKeywordSearch)
		r.Post("/search/hybrid", s.handleHybridSearch)

		r.Post("/concepts", s.handleAddConcept)
		r.Post("/relationships", s.handleAddRelationship)
		r.Get("/concepts/{name}/expand", s.handleExpandConcept)
		r.Get("/concepts/paths", s.handleFindPaths)
		r.Post("/concepts/suggest", s.handleSuggest)
		r.Get("/concepts/communities", s.handleCommunities)

		r.Post("/ingest", s.handleIngest)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
