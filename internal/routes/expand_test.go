package routes

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"marketroutes/internal/sheets"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExpander(now time.Time) *Expander {
	return NewExpander(newTestNormalizer(), func() time.Time { return now }, discardLogger())
}

func dates(rs []Route) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Date
	}
	return out
}

func TestOccurrences(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		weekday time.Weekday
		count   int
		want    []string
	}{
		{"same day counts", time.Monday, 2, []string{"2025-03-10", "2025-03-17"}},
		{"next day", time.Tuesday, 2, []string{"2025-03-11", "2025-03-18"}},
		{"end of week", time.Sunday, 1, []string{"2025-03-16"}},
		{"crosses month", time.Friday, 4, []string{"2025-03-14", "2025-03-21", "2025-03-28", "2025-04-04"}},
		{"zero", time.Monday, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Occurrences(today, tt.weekday, tt.count)
			gotISO := make([]string, len(got))
			for i, d := range got {
				gotISO[i] = d.Format(isoLayout)
			}
			if !reflect.DeepEqual(gotISO, tt.want) {
				t.Errorf("Occurrences(%v, %d) = %v, want %v", tt.weekday, tt.count, gotISO, tt.want)
			}
		})
	}
}

func TestExpand_PeriodicStartsToday(t *testing.T) {
	rows := []sheets.Row{sheets.RowOf("Weekday", "Monday", "market", "Downtown")}

	got := newTestExpander(monday).Expand(rows, 3)
	if want := []string{"2025-03-10", "2025-03-17", "2025-03-24"}; !reflect.DeepEqual(dates(got), want) {
		t.Errorf("dates = %v, want %v", dates(got), want)
	}
	for _, r := range got {
		if r.Kind != KindSPFM || r.Market != "Downtown" || r.SortDate == nil {
			t.Errorf("occurrence = %+v", r)
		}
	}
}

func TestExpand_ExactMarketOverride(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("Weekday", "Monday", "market", "Market A", "worker1", "Sam"),
		sheets.RowOf("date", "2025-03-17", "routeType", "spfm", "market", " market  a ", "worker1", "Alex"),
	}

	got := newTestExpander(monday).Expand(rows, 3)
	if want := []string{"2025-03-17", "2025-03-10", "2025-03-24"}; !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
	if got[0].Workers[0] != "Alex" {
		t.Errorf("override route workers = %v", got[0].Workers)
	}
}

func TestExpand_OverrideNeedsSameKindAndMarket(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("Weekday", "Monday", "market", "Market A"),
		// Different kind on the same market and day.
		sheets.RowOf("date", "2025-03-10", "routeType", "recovery", "market", "Market A"),
		// Same kind, different market.
		sheets.RowOf("date", "2025-03-17", "market", "Market B"),
		// Same kind, blank market: only recovery clears the whole day.
		sheets.RowOf("date", "2025-03-24"),
	}

	got := newTestExpander(monday).Expand(rows, 3)
	var periodic []string
	for _, r := range got[3:] {
		periodic = append(periodic, r.Date)
	}
	if want := []string{"2025-03-10", "2025-03-17", "2025-03-24"}; !reflect.DeepEqual(periodic, want) {
		t.Errorf("periodic dates = %v, want %v", periodic, want)
	}
}

func TestExpand_RecoveryBlankMarketClearsDay(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("Weekday", "Tuesday", "routeType", "recovery", "market", "Stop X", "stop1", "Stop X"),
		sheets.RowOf("Weekday", "Tuesday", "routeType", "recovery", "market", "Stop Y", "stop1", "Stop Y"),
		sheets.RowOf("date", "2025-03-11", "routeType", "recovery", "stop1", "Stop Z"),
	}

	got := newTestExpander(monday).Expand(rows, 2)
	if want := []string{"2025-03-11", "2025-03-18", "2025-03-18"}; !reflect.DeepEqual(dates(got), want) {
		t.Fatalf("dates = %v, want %v", dates(got), want)
	}
	if got[0].Stops[0].Location != "Stop Z" {
		t.Errorf("first route should be the dated override, got %+v", got[0])
	}
	if got[1].Market != "Stop X" || got[2].Market != "Stop Y" {
		t.Errorf("remaining markets = %q, %q", got[1].Market, got[2].Market)
	}
}

func TestExpand_RowMajorOrder(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("Weekday", "Tue", "market", "B"),
		sheets.RowOf("Weekday", "Mon", "market", "A"),
	}

	got := newTestExpander(monday).Expand(rows, 2)
	if want := []string{"2025-03-11", "2025-03-18", "2025-03-10", "2025-03-17"}; !reflect.DeepEqual(dates(got), want) {
		t.Errorf("dates = %v, want %v", dates(got), want)
	}
}

func TestExpand_SuppliedIDGetsDateSuffix(t *testing.T) {
	rows := []sheets.Row{sheets.RowOf("Route ID", "R7", "Weekday", "Monday", "market", "Downtown")}

	got := newTestExpander(monday).Expand(rows, 2)
	if len(got) != 2 || got[0].ID != "R7|2025-03-10" || got[1].ID != "R7|2025-03-17" {
		t.Errorf("IDs = %q", []string{got[0].ID, got[1].ID})
	}
}

func TestExpand_SkipsUnknownWeekdayAndKeepsOtherRows(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("market", "No Schedule"),
		sheets.RowOf("Weekday", "Someday", "market", "Nowhere"),
		sheets.RowOf("date", "2025-03-12", "market", "Dated"),
		sheets.RowOf("Weekday", "Wednesday", "market", "Weekly"),
	}

	got := newTestExpander(monday).Expand(rows, 1)
	var markets []string
	for _, r := range got {
		markets = append(markets, r.Market)
	}
	if want := []string{"Dated", "Weekly", "No Schedule"}; !reflect.DeepEqual(markets, want) {
		t.Errorf("markets = %v, want %v", markets, want)
	}
}

func TestExpand_Idempotent(t *testing.T) {
	rows := []sheets.Row{
		sheets.RowOf("Weekday", "Monday", "market", "Market A", "worker1", "Sam, Alex"),
		sheets.RowOf("Weekday", "Thursday", "routeType", "recovery", "stop1", "Pantry A"),
		sheets.RowOf("date", "2025-03-17", "market", "Market A"),
	}

	e := newTestExpander(monday)
	first := e.Expand(rows, 4)
	second := e.Expand(rows, 4)
	if !reflect.DeepEqual(first, second) {
		t.Error("Expand should be deterministic for the same input and day")
	}
}

func TestExpand_DefaultWindow(t *testing.T) {
	rows := []sheets.Row{sheets.RowOf("Weekday", "Friday")}
	if got := len(newTestExpander(monday).Expand(rows, 0)); got != DefaultWindowWeeks {
		t.Errorf("occurrences = %d, want %d", got, DefaultWindowWeeks)
	}
}
