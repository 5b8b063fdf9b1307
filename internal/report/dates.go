package report

import "time"

// Dates yields the calendar dates spanned by [t0, t1], inclusive on both
// ends: both bounds are truncated to midnight and stepped one day at a
// time, ascending. These become the report's columns.
func Dates(t0, t1 time.Time) []time.Time {
	first := midnight(t0)
	last := midnight(t1)

	var dates []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
