// Package timestamp resolves the loosely encoded dates found in upstream
// dividend events into bounded calendar dates.
package timestamp

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// millisThreshold separates unix seconds from unix milliseconds.
const millisThreshold = 10_000_000_000

const (
	yearsBack    = 20
	yearsForward = 1
)

var layouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
}

var (
	slashDate   = regexp.MustCompile(`(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	embeddedNum = regexp.MustCompile(`\d{10,13}`)
)

// Normalizer resolves raw timestamps against a clock.
type Normalizer struct {
	Now func() time.Time
}

// Default uses the wall clock.
var Default = Normalizer{Now: time.Now}

// Normalize resolves input with the wall clock. See Normalizer.Normalize.
func Normalize(input any) time.Time { return Default.Normalize(input) }

// Normalize turns input into a date within [now-20y, now+1y]. It never fails:
// input that cannot be resolved yields the current instant.
func (n Normalizer) Normalize(input any) time.Time {
	if t, ok := n.Resolve(input); ok {
		return t
	}
	return n.now()
}

// Resolve is Normalize without the fallback. ok is false when no strategy
// produced an in-bounds date.
func (n Normalizer) Resolve(input any) (time.Time, bool) {
	switch v := input.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return n.bounded(v.UTC())
	case int:
		return n.fromNumber(float64(v))
	case int32:
		return n.fromNumber(float64(v))
	case int64:
		return n.fromNumber(float64(v))
	case uint32:
		return n.fromNumber(float64(v))
	case uint64:
		return n.fromNumber(float64(v))
	case float32:
		return n.fromNumber(float64(v))
	case float64:
		return n.fromNumber(v)
	case json.Number:
		return n.fromString(v.String())
	case string:
		return n.fromString(v)
	case []byte:
		return n.fromString(string(v))
	}
	return time.Time{}, false
}

func (n Normalizer) fromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if t, ok := n.fromNumber(f); ok {
			return t, true
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t, ok := n.bounded(t.UTC()); ok {
				return t, true
			}
			break
		}
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if t, ok := calendarDate(year, month, day); ok {
			if t, ok := n.bounded(t); ok {
				return t, true
			}
		}
	}

	if m := embeddedNum.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return n.fromNumber(f)
		}
	}
	return time.Time{}, false
}

func (n Normalizer) fromNumber(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	var t time.Time
	if math.Abs(f) < millisThreshold {
		t = time.Unix(int64(f), 0)
	} else {
		t = time.UnixMilli(int64(f))
	}
	return n.bounded(t.UTC())
}

func (n Normalizer) bounded(t time.Time) (time.Time, bool) {
	year := n.now().Year()
	if t.Year() < year-yearsBack || t.Year() > year+yearsForward {
		return time.Time{}, false
	}
	return t, true
}

func (n Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

// calendarDate builds a UTC date, rejecting values time.Date would silently roll over.
func calendarDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}
