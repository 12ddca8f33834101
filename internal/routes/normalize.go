package routes

import (
	"strings"
	"time"

	"marketroutes/internal/contacts"
	"marketroutes/internal/sheets"
)

// ContactLookup finds address book entries for stop locations.
type ContactLookup interface {
	Lookup(name string) *contacts.Contact
}

// Normalizer converts raw sheet rows into Routes.
type Normalizer struct {
	contacts ContactLookup
	loc      *time.Location
}

// NewNormalizer creates a Normalizer. lookup may be nil, in which case stops
// are not enriched; loc defaults to time.Local.
func NewNormalizer(lookup ContactLookup, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{contacts: lookup, loc: loc}
}

// Normalize builds a Route from one row. Missing or unparseable fields
// degrade to empty values; it never fails.
func (n *Normalizer) Normalize(row sheets.Row, fallback Kind) Route {
	r := Route{
		Kind:      rowKind(row, fallback),
		StartTime: resolve(row, startTimeAliases),
		Market:    resolve(row, marketAliases),
		DropOff:   resolve(row, dropOffAliases),
	}

	raw, ok := row.Resolve(dateAliases...)
	if !ok {
		raw, _ = row.Resolve(parsedAliases...)
	}
	if t, ok := parseDate(raw, n.loc); ok {
		r.Date = t.Format(isoLayout)
		r.DisplayDate = t.Format(displayLayout)
		r.SortDate = &t
	} else {
		// Kept for display only; SortDate stays nil.
		r.Date = strings.TrimSpace(raw)
		r.DisplayDate = r.Date
	}

	r.Workers = WorkersFromRow(row)
	r.Volunteers = VolunteersFromRow(row)
	r.Vans = VansFromRow(row)

	r.Materials = Materials{
		Office:       splitList(resolve(row, officeAliases)),
		Storage:      splitList(resolve(row, storageAliases)),
		AtMarket:     splitList(resolve(row, atMarketAliases)),
		BackAtOffice: splitList(resolve(row, backAtOfficeAliases)),
	}

	r.Stops = n.stops(row, r)
	r.Contacts = numbered(row, "contact")
	r.Phones = numbered(row, "phone")

	if id := resolve(row, idAliases); id != "" {
		r.ID = id
	} else {
		r.ID = compositeID(r)
	}
	return r
}

func (n *Normalizer) stops(row sheets.Row, r Route) []Stop {
	var locations []string
	if r.Kind == KindRecovery || r.Kind == KindDelivery {
		locations = numbered(row, "stop")
	}
	if len(locations) == 0 {
		for _, loc := range []string{r.Market, r.DropOff} {
			if loc != "" {
				locations = append(locations, loc)
			}
		}
	}

	stops := make([]Stop, 0, len(locations))
	for _, loc := range locations {
		s := Stop{Location: loc}
		if n.contacts != nil {
			s.Contact = n.contacts.Lookup(loc)
		}
		stops = append(stops, s)
	}
	return stops
}

func rowKind(row sheets.Row, fallback Kind) Kind {
	v, _ := row.Resolve(kindAliases...)
	return ClassifyKind(v, fallback)
}

func compositeID(r Route) string {
	return strings.Join([]string{string(r.Kind), r.Date, r.StartTime, r.Market, r.DropOff}, "|")
}
