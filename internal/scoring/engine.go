// Package scoring is the last-resort metric scorer used when no richer
// analytics exist for a ticker. Every function is pure and deterministic.
package scoring

import (
	"fmt"
	"math"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

// Evaluate scores all four metric families. It refuses to score
// fundamentals with no usable field instead of inventing a score.
func Evaluate(f model.Fundamentals) (model.MetricScores, error) {
	if empty(f) {
		return model.MetricScores{}, fmt.Errorf("scoring: %w", model.ErrInsufficientData)
	}
	return model.MetricScores{
		Performance: Performance(f),
		Stability:   Stability(f),
		Value:       Value(f),
		Momentum:    Momentum(f),
	}, nil
}

func empty(f model.Fundamentals) bool {
	all := [][]field{performanceFields, stabilityFields, valueFields, momentumFields}
	for _, fields := range all {
		for _, fd := range fields {
			if v := fd.Value(&f); v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// FromProfile seeds fundamentals with what a profile carries.
// Profile dividend yields above 1 are treated as percentages.
func FromProfile(p *model.Profile) model.Fundamentals {
	dy := p.DividendYield
	if dy > 1 {
		dy /= 100
	}
	return model.Fundamentals{
		ProfitMargin:  p.ProfitMargin,
		Beta:          p.Beta,
		PERatio:       p.PERatio,
		DividendYield: dy,
	}
}

// tradingYear is the number of daily closes in 52 weeks.
const tradingYear = 252

// ApplySeries fills the momentum inputs from a chronological daily price
// series. Inputs that the series is too short for are left missing.
func ApplySeries(f *model.Fundamentals, prices []float64) {
	if r, err := calculator.Return(prices, tradingYear); err == nil && len(prices) > tradingYear {
		f.Change52w = r
	}
	if len(prices) > tradingYear {
		high, low, err := calculator.Range(prices, tradingYear)
		if err == nil {
			if pos, err := calculator.Position(prices[len(prices)-1], high, low); err == nil {
				// zero reads as missing, so a close at the low is kept just above it
				f.Range52w = math.Max(pos, 1e-9)
			}
		}
	}
	if r, err := calculator.Return(prices, 63); err == nil && len(prices) > 63 {
		f.Change3m = r
	}
	if rsi, err := calculator.RSI(prices, 14); err == nil {
		f.RSI14 = rsi
	}
	if d, err := calculator.Deviation(prices, 50); err == nil {
		f.MA50Deviation = d
	}
}
