// Package timerange expands the UI time-range shortcuts into concrete
// calendar date bounds.
package timerange

import "time"

// Shortcut names offered by the filter bar.
const (
	Last7Days   = "Last 7 days"
	Last30Days  = "Last 30 days"
	Last90Days  = "Last 90 days"
	ThisMonth   = "This month"
	ThisYear    = "This year"
	CustomRange = "Custom range"
)

// Expand computes the inclusive start/end dates for a shortcut evaluated at
// the given moment. The end date is always the current day. Expand is a pure
// function of (shortcut, now); CustomRange and unknown shortcuts return
// ok=false because they carry no derivable bounds.
func Expand(shortcut string, now time.Time) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch shortcut {
	case Last7Days:
		start = today.AddDate(0, 0, -7)
	case Last30Days:
		start = today.AddDate(0, 0, -30)
	case Last90Days:
		start = today.AddDate(0, 0, -90)
	case ThisMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case ThisYear:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Time{}, time.Time{}, false
	}

	return start, today, true
}
