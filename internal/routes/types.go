package routes

import (
	"strings"
	"time"

	"marketroutes/internal/contacts"
)

// Kind classifies a route.
type Kind string

const (
	KindSPFM     Kind = "spfm"
	KindRecovery Kind = "recovery"
	KindDelivery Kind = "spfm-delivery"
)

// ClassifyKind maps a free-text route type onto a Kind. Blank input yields
// fallback.
func ClassifyKind(s string, fallback Kind) Kind {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "":
		return fallback
	case strings.Contains(v, "recovery"):
		return KindRecovery
	case strings.Contains(v, "delivery"):
		return KindDelivery
	default:
		return KindSPFM
	}
}

// ParseKind parses an exact Kind name, as used in API filters.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSPFM:
		return KindSPFM, true
	case KindRecovery:
		return KindRecovery, true
	case KindDelivery:
		return KindDelivery, true
	}
	return "", false
}

// Stop is one location on a route, optionally enriched from the address book.
type Stop struct {
	Location string            `json:"location"`
	Contact  *contacts.Contact `json:"contact"`
}

// Materials lists what has to be packed or brought back at each point.
type Materials struct {
	Office       []string `json:"office"`
	Storage      []string `json:"storage"`
	AtMarket     []string `json:"atMarket"`
	BackAtOffice []string `json:"backAtOffice"`
}

// Route is a single scheduled market, recovery or delivery run.
type Route struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	Date        string     `json:"date"`
	DisplayDate string     `json:"displayDate"`
	SortDate    *time.Time `json:"sortDate"` // nil iff Date did not parse
	StartTime   string     `json:"startTime"`
	Market      string     `json:"market"`
	DropOff     string     `json:"dropOff"`
	Workers     []string   `json:"workers"`
	Volunteers  []string   `json:"volunteers"`
	Vans        []string   `json:"vans"`
	Materials   Materials  `json:"materials"`
	Stops       []Stop     `json:"stops"`
	Contacts    []string   `json:"contacts"`
	Phones      []string   `json:"phones"`
}

// HasWorker reports whether name is assigned as a worker (case-insensitive).
func (r Route) HasWorker(name string) bool { return containsFold(r.Workers, name) }

// HasVolunteer reports whether name is assigned as a volunteer.
func (r Route) HasVolunteer(name string) bool { return containsFold(r.Volunteers, name) }

// HasVan reports whether van is assigned.
func (r Route) HasVan(van string) bool { return containsFold(r.Vans, van) }

func containsFold(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
