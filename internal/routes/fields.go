package routes

import (
	"fmt"
	"regexp"
	"strings"

	"marketroutes/internal/sheets"
)

// Column aliases. Sheets are inconsistent about casing and spacing, so every
// field is read through one of these lists; add spellings here, not in code.
var (
	kindAliases      = []string{"type", "routeType", "route type", "RouteType", "Route Type"}
	dateAliases      = []string{"date", "Date", "DATE"}
	parsedAliases    = []string{"sortDate", "parsed"}
	startTimeAliases = []string{"startTime", "Start Time", "time", "Time"}
	marketAliases    = []string{"market", "Market"}
	dropOffAliases   = []string{"dropOff", "Drop Off", "dropoff", "Drop-off Location"}
	idAliases        = []string{"routeId", "Route ID", "id", "ID"}
	weekdayAliases   = []string{"weekday", "Weekday", "day", "Day", "day of week", "dayOfWeek"}
	legacyWorker     = []string{"Worker", "worker"}

	officeAliases       = []string{"materialsOffice", "Materials Office", "office", "Office"}
	storageAliases      = []string{"materialsStorage", "Materials Storage", "storage", "Storage"}
	atMarketAliases     = []string{"atMarket", "At Market", "materialsAtMarket"}
	backAtOfficeAliases = []string{"backAtOffice", "Back at Office", "materialsBackAtOffice"}
)

// maxNumbered caps numbered-column scans.
const maxNumbered = 20

// headerEcho matches cells that repeat a column name, as happens when a
// header row is pasted into the body of a sheet.
var headerEcho = regexp.MustCompile(`(?i)^(worker|volunteer|van|stop|contact|phone)\s*\d*$`)

func resolve(row sheets.Row, aliases []string) string {
	v, _ := row.Resolve(aliases...)
	return strings.TrimSpace(v)
}

// names scans prefix1..prefixN, stopping at the first absent column, and
// returns the distinct names found.
func names(row sheets.Row, prefix string) []string {
	var out []string
	seen := make(map[string]bool)
	for i := 1; i <= maxNumbered; i++ {
		v, ok := row.Lookup(fmt.Sprintf("%s%d", prefix, i))
		if !ok {
			break
		}
		out = appendNames(out, seen, v)
	}
	return out
}

// appendNames splits a cell on commas and appends each usable entry.
func appendNames(out []string, seen map[string]bool, cell string) []string {
	for _, part := range strings.Split(cell, ",") {
		name := strings.TrimSpace(part)
		if name == "" || strings.EqualFold(name, "cancelled") || headerEcho.MatchString(name) {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// numbered returns the trimmed non-empty values of prefix1..prefixN.
func numbered(row sheets.Row, prefix string) []string {
	var out []string
	for i := 1; i <= maxNumbered; i++ {
		v, ok := row.Lookup(fmt.Sprintf("%s%d", prefix, i))
		if !ok {
			break
		}
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WorkersFromRow extracts worker names from a raw row, falling back to a
// single legacy Worker column when no numbered workers are present.
func WorkersFromRow(row sheets.Row) []string {
	if w := names(row, "worker"); len(w) > 0 {
		return w
	}
	v, _ := row.Resolve(legacyWorker...)
	return appendNames(nil, make(map[string]bool), v)
}

// VolunteersFromRow extracts volunteer names from a raw row.
func VolunteersFromRow(row sheets.Row) []string { return names(row, "volunteer") }

// VansFromRow extracts van names from a raw row.
func VansFromRow(row sheets.Row) []string { return names(row, "van") }
