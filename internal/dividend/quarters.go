package dividend

import (
	"fmt"
	"time"
)

// quarterStart returns the first instant of the calendar quarter containing t, in UTC.
func quarterStart(t time.Time) time.Time {
	t = t.UTC()
	m := time.Month((int(t.Month())-1)/3*3 + 1)
	return time.Date(t.Year(), m, 1, 0, 0, 0, 0, time.UTC)
}

func quarterLabel(start time.Time) string {
	return fmt.Sprintf("Q%d %d", (int(start.Month())-1)/3+1, start.Year())
}

// windowStart returns the first quarter of a window of the given number of
// years that ends with the quarter containing now.
func windowStart(now time.Time, years int) time.Time {
	return quarterStart(now).AddDate(0, -3*(years*4-1), 0)
}

// timeline returns every calendar quarter from the one containing from up to
// and including the one containing now. EndDate is the last instant of the quarter.
func timeline(from, now time.Time) []bucket {
	start := quarterStart(from)
	last := quarterStart(now)
	var out []bucket
	for !start.After(last) {
		next := start.AddDate(0, 3, 0)
		out = append(out, bucket{label: quarterLabel(start), start: start, end: next.Add(-time.Nanosecond)})
		start = next
	}
	return out
}

type bucket struct {
	label      string
	start, end time.Time
}

func (b bucket) contains(t time.Time) bool {
	return !t.Before(b.start) && !t.After(b.end)
}
