package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"marketroutes/internal/config"
	"marketroutes/internal/inventory"
	"marketroutes/internal/routes"
)

// Handler holds shared dependencies for all HTTP handlers.
type Handler struct {
	repo   *routes.Repository
	inv    *inventory.Service
	cfg    *config.Config
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

// New creates a Handler.
func New(repo *routes.Repository, inv *inventory.Service, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		inv:    inv,
		cfg:    cfg,
		loc:    cfg.Location(),
		now:    time.Now,
		logger: logger,
	}
}

// Health reports whether tables have been loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	store := h.repo.Store()
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":    store.Loaded(),
		"fetchedAt": store.FetchedAt(),
		"signature": store.Signature(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
