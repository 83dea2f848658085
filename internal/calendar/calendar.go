package calendar

import (
	"time"
)

// Layout is the wire format for calendar days used throughout the
// engine. Days are always interpreted as UTC calendar dates; local
// time is never consulted so DST transitions cannot shift a day.
const Layout = "2006-01-02"

// Parse converts a YYYY-MM-DD string into a day-granularity UTC
// timestamp. The error is the caller's to handle; the engine itself
// only ever formats dates it produced, so round-trips are safe.
func Parse(date string) (time.Time, error) {
	return time.ParseInLocation(Layout, date, time.UTC)
}

// Format renders a timestamp back into YYYY-MM-DD in UTC.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// AddDays shifts a date string by n calendar days (n may be negative).
// Malformed input is returned unchanged; the engine validates dates at
// ingestion, not here.
func AddDays(date string, n int) string {
	t, err := Parse(date)
	if err != nil {
		return date
	}
	return Format(t.AddDate(0, 0, n))
}

// Range returns the inclusive list of date strings between start and
// end. An empty slice is returned when start is after end or either
// bound fails to parse.
func Range(start, end string) []string {
	s, err := Parse(start)
	if err != nil {
		return nil
	}
	e, err := Parse(end)
	if err != nil {
		return nil
	}
	if s.After(e) {
		return nil
	}
	days := make([]string, 0, int(e.Sub(s).Hours()/24)+1)
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, Format(d))
	}
	return days
}
