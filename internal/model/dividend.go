package model

import (
	"fmt"
	"time"
)

// DividendEvent is a dividend as received from an upstream provider.
// RawTimestamp is whatever the provider sent: unix seconds, unix millis,
// or a loosely formatted date string.
type DividendEvent struct {
	RawTimestamp any     `json:"date"`
	Amount       float64 `json:"amount"`
}

// NormalizedDividendEvent is a dividend whose date has been resolved to a
// bounded calendar date.
type NormalizedDividendEvent struct {
	Date   time.Time
	Amount float64
}

// Lookback is the comparison window.
type Lookback string

const (
	Lookback1Y  Lookback = "1Y"
	Lookback3Y  Lookback = "3Y"
	Lookback5Y  Lookback = "5Y"
	LookbackMax Lookback = "MAX"
)

// ParseLookback parses a lookback label, case-insensitively.
func ParseLookback(s string) (Lookback, error) {
	switch Lookback(NormalizeTicker(s)) {
	case Lookback1Y:
		return Lookback1Y, nil
	case Lookback3Y:
		return Lookback3Y, nil
	case Lookback5Y:
		return Lookback5Y, nil
	case LookbackMax:
		return LookbackMax, nil
	}
	return "", fmt.Errorf("unknown lookback %q", s)
}

// Years returns the number of years covered, or 0 for MAX.
func (l Lookback) Years() int {
	switch l {
	case Lookback1Y:
		return 1
	case Lookback3Y:
		return 3
	case Lookback5Y:
		return 5
	}
	return 0
}

// QuarterBucket holds one calendar quarter of a ticker/benchmark comparison.
type QuarterBucket struct {
	Label                    string    `json:"label"`
	StartDate                time.Time `json:"start_date"`
	EndDate                  time.Time `json:"end_date"`
	TickerDividend           float64   `json:"ticker_dividend"`
	BenchmarkDividend        float64   `json:"benchmark_dividend"`
	TickerPrice              float64   `json:"ticker_price"`
	BenchmarkPrice           float64   `json:"benchmark_price"`
	TickerYieldAnnualized    float64   `json:"ticker_yield_annualized"`
	BenchmarkYieldAnnualized float64   `json:"benchmark_yield_annualized"`
}

// ComparisonSummary aggregates a comparison over its whole window.
type ComparisonSummary struct {
	TickerTotalDividend     float64 `json:"ticker_total_dividend"`
	BenchmarkTotalDividend  float64 `json:"benchmark_total_dividend"`
	TickerAverageYield      float64 `json:"ticker_average_yield"`
	BenchmarkAverageYield   float64 `json:"benchmark_average_yield"`
	TickerPayingQuarters    int     `json:"ticker_paying_quarters"`
	BenchmarkPayingQuarters int     `json:"benchmark_paying_quarters"`
	YieldSpread             float64 `json:"yield_spread"`
}

// Comparison is the result of comparing a ticker's dividend yield against a benchmark.
type Comparison struct {
	Ticker    string            `json:"ticker"`
	Benchmark string            `json:"benchmark"`
	Lookback  Lookback          `json:"lookback"`
	Quarters  []QuarterBucket   `json:"quarters"`
	Summary   ComparisonSummary `json:"summary"`
}
