package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"marketroutes/internal/config"
	"marketroutes/internal/handler"
	"marketroutes/internal/inventory"
	"marketroutes/internal/routes"
)

// Server is the HTTP server for the routes API.
type Server struct {
	mux    *http.ServeMux
	cfg    *config.Config
	logger *slog.Logger
	ready  chan struct{} // closed once tables are available
}

// New creates a new Server with all routes registered.
func New(cfg *config.Config, repo *routes.Repository, inv *inventory.Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	h := handler.New(repo, inv, cfg, logger)

	ready := make(chan struct{})
	// Restored snapshots count as data
	if repo.Store().Loaded() {
		close(ready)
	}

	s := &Server{mux: mux, cfg: cfg, logger: logger, ready: ready}

	mux.HandleFunc("GET /healthz", h.Health)

	// Routes
	mux.HandleFunc("GET /api/routes", h.RouteList)
	mux.HandleFunc("GET /api/routes/{id}", h.RouteDetail)
	mux.HandleFunc("GET /api/reminders", h.Reminders)

	// Workers
	mux.HandleFunc("GET /api/workers", h.Workers)
	mux.HandleFunc("GET /api/workers/{name}/calendar.ics", h.WorkerCalendar)

	// Address book and inventory
	mux.HandleFunc("GET /api/contacts", h.Contacts)
	mux.HandleFunc("GET /api/inventory", h.Inventory)
	mux.HandleFunc("POST /api/inventory/{item}", h.UpdateInventory)

	mux.HandleFunc("POST /api/refresh", h.Refresh)

	return s
}

// SetReady signals that tables are loaded and the API can serve requests.
func (s *Server) SetReady() {
	select {
	case <-s.ready:
		// already closed
	default:
		close(s.ready)
	}
}

// Handler returns the mux wrapped in middleware.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.mux, s.logger, s.ready)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("server starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}
