package routes

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	isoLayout     = "2006-01-02"
	displayLayout = "Monday, January 2, 2006"
)

// dateLayouts are the date spellings seen in the route sheets.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
}

// parseDate parses a sheet date into local midnight in loc.
func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	// Sheets exported without formatting give serial day numbers.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < 20000 || serial > 80000 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return midnight(t, loc), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return midnight(t, loc), true
		}
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			return midnight(t.In(loc), loc), true
		}
	}
	return time.Time{}, false
}

// midnight drops the time of day, keeping the calendar date of t.
func midnight(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// parseWeekday accepts full English weekday names and three-letter
// abbreviations, case-insensitively.
func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if s == full || (len(s) == 3 && strings.HasPrefix(full, s)) {
			return d, true
		}
	}
	return 0, false
}
