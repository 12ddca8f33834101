package handler

import "net/http"

// Refresh forces a reload of every table.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.LoadRawTables(r.Context(), true); err != nil {
		h.logger.Warn("forced refresh failed", "error", err)
		httpError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"signature": h.repo.Store().Signature(),
		"routes":    len(h.repo.AllRoutes()),
	})
}
