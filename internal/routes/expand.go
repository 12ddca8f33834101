package routes

import (
	"log/slog"
	"strings"
	"time"

	"marketroutes/internal/sheets"
)

// DefaultWindowWeeks is how far ahead periodic templates are expanded.
const DefaultWindowWeeks = 8

// Expander turns the Routes template table into dated routes.
type Expander struct {
	normalizer *Normalizer
	now        func() time.Time
	logger     *slog.Logger
}

// NewExpander creates an Expander. now supplies "today"; nil means time.Now.
func NewExpander(n *Normalizer, now func() time.Time, logger *slog.Logger) *Expander {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{normalizer: n, now: now, logger: logger}
}

// override is one dated row's claim on a calendar day.
type override struct {
	kind        Kind
	market      string
	marketEmpty bool
}

// overrideIndex maps an ISO date to the dated rows that fall on it.
type overrideIndex map[string][]override

func (idx overrideIndex) add(date string, kind Kind, market string) {
	m := normalizeMarket(market)
	idx[date] = append(idx[date], override{kind: kind, market: m, marketEmpty: m == ""})
}

// suppresses reports whether a periodic occurrence of kind on date at market
// is replaced by a dated row. A recovery override with no market clears
// every recovery occurrence that day.
func (idx overrideIndex) suppresses(date string, kind Kind, market string) bool {
	m := normalizeMarket(market)
	for _, o := range idx[date] {
		if o.kind != kind {
			continue
		}
		if o.market == m || (o.kind == KindRecovery && o.marketEmpty) {
			return true
		}
	}
	return false
}

func normalizeMarket(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

type periodicRow struct {
	row     sheets.Row
	weekday time.Weekday
}

// Expand returns the dated rows, then the periodic occurrences for the next
// windowWeeks weeks (row by row, earliest first), then rows that are neither.
// The result is not sorted across dates.
func (e *Expander) Expand(rows []sheets.Row, windowWeeks int) []Route {
	if windowWeeks <= 0 {
		windowWeeks = DefaultWindowWeeks
	}
	loc := e.normalizer.loc

	var dated, other []sheets.Row
	var periodic []periodicRow
	index := make(overrideIndex)

	for _, row := range rows {
		raw, _ := row.Resolve(dateAliases...)
		if t, ok := parseDate(raw, loc); ok {
			dated = append(dated, row)
			index.add(t.Format(isoLayout), rowKind(row, KindSPFM), resolve(row, marketAliases))
			continue
		}
		if name, ok := row.Resolve(weekdayAliases...); ok {
			wd, ok := parseWeekday(name)
			if !ok {
				e.logger.Warn("skipping template row with unrecognized weekday", "weekday", name)
				continue
			}
			periodic = append(periodic, periodicRow{row: row, weekday: wd})
			continue
		}
		e.logger.Debug("template row has neither date nor weekday", "columns", row.Len())
		other = append(other, row)
	}

	out := make([]Route, 0, len(dated)+len(periodic)*windowWeeks+len(other))
	for _, row := range dated {
		out = append(out, e.normalizer.Normalize(row, KindSPFM))
	}

	today := midnight(e.now().In(loc), loc)
	for _, p := range periodic {
		kind := rowKind(p.row, KindSPFM)
		market := resolve(p.row, marketAliases)
		id := resolve(p.row, idAliases)
		for _, d := range Occurrences(today, p.weekday, windowWeeks) {
			iso := d.Format(isoLayout)
			if index.suppresses(iso, kind, market) {
				continue
			}
			r := e.normalizer.Normalize(p.row.With("date", iso), KindSPFM)
			if id != "" {
				r.ID = id + "|" + iso
			}
			out = append(out, r)
		}
	}

	for _, row := range other {
		out = append(out, e.normalizer.Normalize(row, KindSPFM))
	}
	return out
}

// Occurrences returns count weekly dates on weekday starting from the first
// matching day on or after today. today itself counts when it matches.
func Occurrences(today time.Time, weekday time.Weekday, count int) []time.Time {
	offset := (int(weekday) - int(today.Weekday()) + 7) % 7
	out := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, time.Date(today.Year(), today.Month(), today.Day()+offset+7*i, 0, 0, 0, 0, today.Location()))
	}
	return out
}
