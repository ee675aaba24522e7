package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/handan-ai/handan/internal/service/knowledge"
	"github.com/handan-ai/handan/internal/service/triage"
	"github.com/handan-ai/handan/internal/storage"
)

// Server is the Handan HTTP server.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	logger     *slog.Logger
}

// Handler returns the root HTTP handler for use in tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServerConfig holds all dependencies and configuration for creating a Server.
type ServerConfig struct {
	DB           *storage.DB
	TriageSvc    *triage.Service
	KnowledgeSvc *knowledge.Service
	Logger       *slog.Logger

	Port                int
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	Version             string
	MaxRequestBodyBytes int64
}

// New creates a new HTTP server with all routes configured.
func New(cfg ServerConfig) *Server {
	h := NewHandlers(HandlersDeps{
		DB:           cfg.DB,
		TriageSvc:    cfg.TriageSvc,
		KnowledgeSvc: cfg.KnowledgeSvc,
		Logger:       cfg.Logger,
		Version:      cfg.Version,
	})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /version", h.HandleVersion)

	// Work-item lifecycle.
	mux.HandleFunc("POST /v1/work-items", h.HandleCreateWorkItem)
	mux.HandleFunc("GET /v1/work-items/{work_item_id}", h.HandleGetWorkItem)
	mux.HandleFunc("POST /v1/work-items/{work_item_id}/run", h.HandleRunWorkItem)
	mux.HandleFunc("POST /v1/work-items/{work_item_id}/review", h.HandleReviewWorkItem)
	mux.HandleFunc("GET /v1/work-items/{work_item_id}/trace", h.HandleWorkItemTrace)

	// Knowledge base.
	mux.HandleFunc("POST /v1/knowledge/ingest", h.HandleIngestKnowledge)
	mux.HandleFunc("GET /v1/knowledge/query", h.HandleQueryKnowledge)

	// Simulation.
	mux.HandleFunc("POST /v1/simulation/run", h.HandleRunSimulation)
	mux.HandleFunc("DELETE /v1/simulation", h.HandleResetSimulation)

	// Middleware chain, outermost first: request ID, logging, tracing,
	// body limit.
	var handler http.Handler = mux
	handler = bodyLimitMiddleware(cfg.MaxRequestBodyBytes, handler)
	handler = tracingMiddleware(handler)
	handler = loggingMiddleware(cfg.Logger, handler)
	handler = requestIDMiddleware(handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
