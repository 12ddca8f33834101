package handler

import (
	"fmt"
	"net/http"
	"strings"

	"marketroutes/internal/schedule"
)

type workerInfo struct {
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Routes int    `json:"routes"`
}

// Workers lists every worker assigned to at least one route.
func (h *Handler) Workers(w http.ResponseWriter, r *http.Request) {
	rs := h.repo.AllRoutes()
	out := []workerInfo{}
	for _, name := range schedule.Workers(rs) {
		out = append(out, workerInfo{
			Name:   name,
			Icon:   h.repo.WorkerIcon(name),
			Routes: len(schedule.Filter{Worker: name}.Apply(rs)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// WorkerCalendar serves a worker's routes as an iCalendar feed.
func (h *Handler) WorkerCalendar(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		httpError(w, http.StatusBadRequest, "missing worker name")
		return
	}
	rs := schedule.Filter{Worker: name}.Apply(h.repo.AllRoutes())
	schedule.SortChronological(rs)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "routes-"+safeFilename(name)+".ics"))
	if err := schedule.WriteICS(w, "Routes for "+name, rs, h.now()); err != nil {
		h.logger.Error("writing worker calendar", "worker", name, "error", err)
	}
}

func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}
