package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/handan-ai/handan/internal/model"
)

// HandleCreateWorkItem handles POST /v1/work-items.
func (h *Handlers) HandleCreateWorkItem(w http.ResponseWriter, r *http.Request) {
	var req model.CreateWorkItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	wi, err := h.triageSvc.Create(r.Context(), req.Event)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, wi)
}

// HandleGetWorkItem handles GET /v1/work-items/{work_item_id}.
func (h *Handlers) HandleGetWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workItemID(w, r)
	if !ok {
		return
	}

	wi, err := h.triageSvc.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, wi)
}

// HandleRunWorkItem handles POST /v1/work-items/{work_item_id}/run.
func (h *Handlers) HandleRunWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workItemID(w, r)
	if !ok {
		return
	}

	result, err := h.triageSvc.Run(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// HandleReviewWorkItem handles POST /v1/work-items/{work_item_id}/review.
func (h *Handlers) HandleReviewWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workItemID(w, r)
	if !ok {
		return
	}

	var req model.ReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body")
		return
	}

	result, err := h.triageSvc.Review(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, result)
}

// HandleWorkItemTrace handles GET /v1/work-items/{work_item_id}/trace.
func (h *Handlers) HandleWorkItemTrace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.workItemID(w, r)
	if !ok {
		return
	}

	trace, err := h.triageSvc.Trace(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, trace)
}

// workItemID parses the work_item_id path value, writing a 400 on failure.
func (h *Handlers) workItemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("work_item_id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid work_item_id")
		return uuid.Nil, false
	}
	return id, true
}
