package model

import (
	"strings"
	"time"
)

// Quote is a single closing price observation.
type Quote struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// NormalizeTicker returns the canonical upper-case form of a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// PeriodSeries is a pre-computed price series for one (ticker, period) pair.
// A valid series always has len(Dates) == len(Prices) > 0.
type PeriodSeries struct {
	Ticker string      `json:"ticker"`
	Period string      `json:"period"`
	Dates  []time.Time `json:"dates"`
	Prices []float64   `json:"prices"`
}

// Len returns the number of points in the series.
func (s *PeriodSeries) Len() int { return len(s.Prices) }
