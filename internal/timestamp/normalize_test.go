package timestamp

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func fixed() Normalizer {
	return Normalizer{Now: func() time.Time { return fixedNow }}
}

func day(t time.Time) string { return t.Format("2006-01-02") }

func TestNormalize_Numbers(t *testing.T) {
	n := fixed()
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"seconds int", 1700000000, "2023-11-14"},
		{"seconds int64", int64(1700000000), "2023-11-14"},
		{"seconds float", float64(1700000000), "2023-11-14"},
		{"millis", int64(1700000000000), "2023-11-14"},
		{"seconds string", "1700000000", "2023-11-14"},
		{"millis string", " 1700000000000 ", "2023-11-14"},
		{"json number", json.Number("1700000000"), "2023-11-14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, day(got))
			assert.Equal(t, day(time.Unix(1700000000, 0).UTC()), day(n.Normalize(tt.input)))
		})
	}
}

func TestNormalize_Strings(t *testing.T) {
	n := fixed()
	tests := []struct {
		input string
		want  string
	}{
		{"2024-03-15", "2024-03-15"},
		{"20240315", "2024-03-15"},
		{"2024-03-15T10:00:00Z", "2024-03-15"},
		{"2024-03-15 10:00:00", "2024-03-15"},
		{"Mar 15, 2024", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"03/15/2024", "2024-03-15"},
		{"ex-date 3/5/2024 (paid)", "2024-03-05"},
		{"12-31-2023", "2023-12-31"},
		{"paid at 1700000000 utc", "2023-11-14"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := n.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, day(got))
		})
	}
}

func TestNormalize_FallsBackToNow(t *testing.T) {
	n := fixed()
	inputs := []any{
		"banana",
		"",
		"   ",
		-1,
		int64(-1700000000),
		0,
		"1800-01-01",
		"2099-01-01",
		"02/30/2024",
		"13/01/2024",
		math.NaN(),
		math.Inf(1),
		nil,
		struct{}{},
		[]int{1, 2},
	}
	for _, in := range inputs {
		_, ok := n.Resolve(in)
		assert.False(t, ok, "input %#v", in)
		assert.Equal(t, fixedNow, n.Normalize(in), "input %#v", in)
	}
}

func TestNormalize_Bounds(t *testing.T) {
	n := fixed()

	_, ok := n.Resolve("2006-01-01")
	assert.True(t, ok, "lower bound year is inclusive")
	_, ok = n.Resolve("2005-12-31")
	assert.False(t, ok)
	_, ok = n.Resolve("2027-12-31")
	assert.True(t, ok, "upper bound year is inclusive")
	_, ok = n.Resolve("2028-01-01")
	assert.False(t, ok)
}

func TestNormalize_WallClockFallback(t *testing.T) {
	before := time.Now()
	got := Normalize("banana")
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
