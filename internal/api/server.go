// Package api wires the HTTP surface: router, middleware, and handlers.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harishram/fintrack-backend/internal/api/handlers"
	"github.com/harishram/fintrack-backend/internal/api/middleware"
	"github.com/harishram/fintrack-backend/internal/application/service"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new API server over the transaction service.
func NewServer(cfg Config, svc *service.TransactionService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
	}

	s.router.Use(middleware.CORS(cfg.AllowedOrigins))
	s.router.Use(middleware.Logging(logger))

	s.setupRoutes(svc)
	return s
}

// setupRoutes configures all API routes. Fixed paths are registered before
// the id parameter routes.
func (s *Server) setupRoutes(svc *service.TransactionService) {
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	txns := handlers.NewTransactionsHandler(svc, s.logger)
	s.router.Route("/api/transactions", func(r chi.Router) {
		r.Get("/categories", txns.Categories)
		r.Get("/filter", txns.Filter)

		r.Get("/", txns.List)
		r.Post("/", txns.Create)

		r.Get("/{id}", txns.Get)
		r.Put("/{id}", txns.Update)
		r.Delete("/{id}", txns.Delete)
		r.Patch("/{id}/star", txns.ToggleStar)
		r.Patch("/{id}/note", txns.SetNote)
		r.Patch("/{id}/split", txns.ReplaceSplit)
	})
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
