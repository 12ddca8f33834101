package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"marketroutes/internal/inventory"
)

// Inventory serves the current box inventory.
func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.inv.Items(r.Context())
	if err != nil {
		h.logger.Error("fetching inventory", "error", err)
		httpError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type countRequest struct {
	Count *int `json:"count"`
}

// UpdateInventory sets the count for one item.
func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil || req.Count == nil {
		httpError(w, http.StatusBadRequest, `body must be {"count": <n>}`)
		return
	}

	item, err := h.inv.SetCount(r.Context(), r.PathValue("item"), *req.Count)
	switch {
	case errors.Is(err, inventory.ErrUnknownItem):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inventory.ErrNegativeCount):
		httpError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		h.logger.Error("updating inventory", "error", err)
		httpError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, item)
	}
}
