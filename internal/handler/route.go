package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"marketroutes/internal/routes"
	"marketroutes/internal/schedule"
)

type routeList struct {
	Count  int            `json:"count"`
	Routes []routes.Route `json:"routes"`
}

// RouteList serves every route matching the query filters, in date order.
func (h *Handler) RouteList(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := f.Apply(h.repo.AllRoutes())
	schedule.SortChronological(out)
	writeJSON(w, http.StatusOK, routeList{Count: len(out), Routes: out})
}

// RouteDetail serves a single route by ID.
func (h *Handler) RouteDetail(w http.ResponseWriter, r *http.Request) {
	rt, ok := h.repo.Route(r.PathValue("id"))
	if !ok {
		httpError(w, http.StatusNotFound, "route not found")
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

// Reminders serves the routes coming up in the next few days, optionally
// for a single worker.
func (h *Handler) Reminders(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			httpError(w, http.StatusBadRequest, "days must be between 1 and 366")
			return
		}
		days = n
	}
	rs := h.repo.AllRoutes()
	if worker := r.URL.Query().Get("worker"); worker != "" {
		rs = schedule.Filter{Worker: worker}.Apply(rs)
	}
	out := schedule.Upcoming(rs, h.now().In(h.loc), days)
	writeJSON(w, http.StatusOK, routeList{Count: len(out), Routes: out})
}

func (h *Handler) parseFilter(r *http.Request) (schedule.Filter, error) {
	q := r.URL.Query()
	f := schedule.Filter{
		Worker:    q.Get("worker"),
		Volunteer: q.Get("volunteer"),
		Van:       q.Get("van"),
	}
	if v := q.Get("kind"); v != "" {
		k, ok := routes.ParseKind(v)
		if !ok {
			return f, fmt.Errorf("unknown kind %q", v)
		}
		f.Kind = k
	}
	var err error
	if f.From, err = h.parseDay(q.Get("from")); err != nil {
		return f, fmt.Errorf("from: %w", err)
	}
	if f.To, err = h.parseDay(q.Get("to")); err != nil {
		return f, fmt.Errorf("to: %w", err)
	}
	return f, nil
}

func (h *Handler) parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, h.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
