package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/handan-ai/handan/internal/model"
	"github.com/handan-ai/handan/internal/service/knowledge"
	"github.com/handan-ai/handan/internal/service/triage"
	"github.com/handan-ai/handan/internal/storage"
)

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	db           *storage.DB
	triageSvc    *triage.Service
	knowledgeSvc *knowledge.Service
	logger       *slog.Logger
	startedAt    time.Time
	version      string
}

// HandlersDeps holds all dependencies for constructing Handlers.
type HandlersDeps struct {
	DB           *storage.DB
	TriageSvc    *triage.Service
	KnowledgeSvc *knowledge.Service
	Logger       *slog.Logger
	Version      string
}

// NewHandlers creates a new Handlers with all dependencies.
func NewHandlers(d HandlersDeps) *Handlers {
	return &Handlers{
		db:           d.DB,
		triageSvc:    d.TriageSvc,
		knowledgeSvc: d.KnowledgeSvc,
		logger:       d.Logger,
		startedAt:    time.Now(),
		version:      d.Version,
	}
}

// HandleHealth handles GET /health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, map[string]any{
		"status":         status,
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// HandleVersion handles GET /version.
func (h *Handlers) HandleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"service": "handan",
		"version": h.version,
	})
}

// writeServiceError maps service-layer errors onto the error envelope.
// Validation failures happen before any side effects; invalid-state
// rejections report the current status; anything unclassified is a
// server-side failure.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stateErr *triage.InvalidStateError
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, model.ErrCodeNotFound, "work item not found")
	case errors.As(err, &stateErr):
		writeError(w, r, http.StatusConflict, model.ErrCodeConflict, stateErr.Error())
	default:
		h.logger.Error("request failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal error")
	}
}
