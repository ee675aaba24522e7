package server

import (
	"net/http"
	"strconv"

	"github.com/handan-ai/handan/internal/model"
)

// defaultQueryTopK is the top_k used when the query parameter is absent.
const defaultQueryTopK = 3

// HandleIngestKnowledge handles POST /v1/knowledge/ingest.
func (h *Handlers) HandleIngestKnowledge(w http.ResponseWriter, r *http.Request) {
	var req model.IngestKnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	result, err := h.knowledgeSvc.Ingest(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Deduped {
		status = http.StatusOK
	}
	writeJSON(w, r, status, result)
}

// HandleQueryKnowledge handles GET /v1/knowledge/query?q=...&top_k=N.
func (h *Handlers) HandleQueryKnowledge(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "query parameter q is required")
		return
	}

	topK := defaultQueryTopK
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "top_k must be a positive integer")
			return
		}
		topK = n
	}

	matches, err := h.knowledgeSvc.Query(r.Context(), query, topK)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.KnowledgeMatch{}
	}

	writeJSON(w, r, http.StatusOK, matches)
}
