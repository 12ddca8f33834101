package schedule

import (
	"fmt"
	"io"
	"strings"
	"time"

	"marketroutes/internal/routes"
)

// ICSProductID identifies the calendars we generate.
const ICSProductID = "-//marketroutes//Route Calendar//EN"

// icsWriter remembers the first write error so the calendar body can be
// written without checking every line.
type icsWriter struct {
	w   io.Writer
	err error
}

func (iw *icsWriter) line(format string, args ...any) {
	if iw.err != nil {
		return
	}
	_, iw.err = fmt.Fprintf(iw.w, format+"\r\n", args...)
}

// WriteICS writes dated routes as all-day events, each with a reminder at
// 18:00 the evening before. Undated routes are skipped.
func WriteICS(w io.Writer, calName string, rs []routes.Route, stamp time.Time) error {
	iw := &icsWriter{w: w}
	iw.line("BEGIN:VCALENDAR")
	iw.line("VERSION:2.0")
	iw.line("PRODID:%s", ICSProductID)
	iw.line("CALSCALE:GREGORIAN")
	iw.line("X-WR-CALNAME:%s", escapeText(calName))

	for _, r := range rs {
		if r.SortDate == nil {
			continue
		}
		day := *r.SortDate
		iw.line("BEGIN:VEVENT")
		iw.line("UID:%s@marketroutes", escapeText(strings.ReplaceAll(r.ID, "|", "-")))
		iw.line("DTSTAMP:%s", stamp.UTC().Format("20060102T150405Z"))
		iw.line("DTSTART;VALUE=DATE:%s", day.Format("20060102"))
		iw.line("DTEND;VALUE=DATE:%s", day.AddDate(0, 0, 1).Format("20060102"))
		iw.line("SUMMARY:%s", escapeText(summary(r)))
		if desc := description(r); desc != "" {
			iw.line("DESCRIPTION:%s", escapeText(desc))
		}
		if len(r.Stops) > 0 {
			iw.line("LOCATION:%s", escapeText(r.Stops[0].Location))
		}
		iw.line("BEGIN:VALARM")
		iw.line("ACTION:DISPLAY")
		iw.line("DESCRIPTION:Reminder: %s", escapeText(summary(r)))
		iw.line("TRIGGER:-PT6H")
		iw.line("END:VALARM")
		iw.line("END:VEVENT")
	}

	iw.line("END:VCALENDAR")
	return iw.err
}

func summary(r routes.Route) string {
	label := map[routes.Kind]string{
		routes.KindSPFM:     "Market",
		routes.KindRecovery: "Recovery",
		routes.KindDelivery: "Delivery",
	}[r.Kind]
	if r.Market != "" {
		label += ": " + r.Market
	}
	if r.StartTime != "" {
		label += " (" + r.StartTime + ")"
	}
	return label
}

func description(r routes.Route) string {
	var parts []string
	if len(r.Workers) > 0 {
		parts = append(parts, "Workers: "+strings.Join(r.Workers, ", "))
	}
	if len(r.Volunteers) > 0 {
		parts = append(parts, "Volunteers: "+strings.Join(r.Volunteers, ", "))
	}
	if len(r.Vans) > 0 {
		parts = append(parts, "Vans: "+strings.Join(r.Vans, ", "))
	}
	if len(r.Stops) > 0 {
		stops := make([]string, len(r.Stops))
		for i, s := range r.Stops {
			stops[i] = s.Location
		}
		parts = append(parts, "Stops: "+strings.Join(stops, " → "))
	}
	return strings.Join(parts, "\n")
}

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

func escapeText(s string) string { return icsEscaper.Replace(s) }
