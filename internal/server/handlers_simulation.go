package server

import (
	"net/http"
)

// HandleRunSimulation handles POST /v1/simulation/run.
func (h *Handlers) HandleRunSimulation(w http.ResponseWriter, r *http.Request) {
	report, err := h.triageSvc.Simulate(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, report)
}

// HandleResetSimulation handles DELETE /v1/simulation.
func (h *Handlers) HandleResetSimulation(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.triageSvc.ResetSimulation(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"work_items_deleted": deleted,
	})
}
