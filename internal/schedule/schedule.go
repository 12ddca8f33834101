// Package schedule answers calendar questions over normalized routes:
// who works when, what is coming up, and calendar exports.
package schedule

import (
	"sort"
	"strings"
	"time"

	"marketroutes/internal/routes"
)

// Filter selects routes. Zero fields match everything; From and To are
// inclusive calendar dates and exclude undated routes when set.
type Filter struct {
	Worker    string
	Volunteer string
	Van       string
	Kind      routes.Kind
	From      time.Time
	To        time.Time
}

// Match reports whether r passes the filter.
func (f Filter) Match(r routes.Route) bool {
	if f.Worker != "" && !r.HasWorker(f.Worker) {
		return false
	}
	if f.Volunteer != "" && !r.HasVolunteer(f.Volunteer) {
		return false
	}
	if f.Van != "" && !r.HasVan(f.Van) {
		return false
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		if r.SortDate == nil {
			return false
		}
		if !f.From.IsZero() && r.SortDate.Before(dayOf(f.From, r.SortDate.Location())) {
			return false
		}
		if !f.To.IsZero() && r.SortDate.After(dayOf(f.To, r.SortDate.Location())) {
			return false
		}
	}
	return true
}

// Apply returns the matching routes in their original order.
func (f Filter) Apply(rs []routes.Route) []routes.Route {
	out := make([]routes.Route, 0, len(rs))
	for _, r := range rs {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortChronological sorts routes by date, then start time, then ID.
// Undated routes go last.
func SortChronological(rs []routes.Route) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		switch {
		case a.SortDate == nil && b.SortDate == nil:
			return a.ID < b.ID
		case a.SortDate == nil:
			return false
		case b.SortDate == nil:
			return true
		case !a.SortDate.Equal(*b.SortDate):
			return a.SortDate.Before(*b.SortDate)
		}
		if ta, tb := clockMinutes(a.StartTime), clockMinutes(b.StartTime); ta != tb {
			return ta < tb
		}
		return a.ID < b.ID
	})
}

// Upcoming returns routes dated from now's calendar day through days-1 days
// later, sorted chronologically.
func Upcoming(rs []routes.Route, now time.Time, days int) []routes.Route {
	if days <= 0 {
		days = 7
	}
	from := dayOf(now, now.Location())
	f := Filter{From: from, To: from.AddDate(0, 0, days-1)}
	out := f.Apply(rs)
	SortChronological(out)
	return out
}

// Workers returns every distinct worker name, sorted case-insensitively.
func Workers(rs []routes.Route) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rs {
		for _, w := range r.Workers {
			k := strings.ToLower(w)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// clockMinutes turns "9:30 AM", "14:00" or "9am" into minutes after
// midnight. Unparseable times sort after every real time.
func clockMinutes(s string) int {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, layout := range []string{"3:04PM", "15:04", "3PM", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute()
		}
	}
	return 24 * 60
}
