package scoring

import "MarketLens/internal/model"

type input = model.Fundamentals

var performanceFields = []field{
	{"profit_margin", func(f *input) float64 { return f.ProfitMargin }, []rule{
		{above(0.20), +10},
		{above(0.10), +5},
		{below(0), -10},
	}},
	{"revenue_growth", func(f *input) float64 { return f.RevenueGrowth }, []rule{
		{above(0.15), +10},
		{above(0.05), +5},
		{below(0), -10},
	}},
	{"earnings_growth", func(f *input) float64 { return f.EarningsGrowth }, []rule{
		{above(0.15), +10},
		{above(0.05), +5},
		{below(0), -10},
	}},
	{"return_on_equity", func(f *input) float64 { return f.ReturnOnEquity }, []rule{
		{above(0.20), +10},
		{above(0.10), +5},
		{below(0), -10},
	}},
}

var stabilityFields = []field{
	{"beta", func(f *input) float64 { return f.Beta }, []rule{
		{between(0, 0.8), +15},
		{between(0, 1.2), +5},
		{above(1.5), -15},
		{below(0), -5},
	}},
	{"debt_to_equity", func(f *input) float64 { return f.DebtToEquity }, []rule{
		{between(0, 0.5), +10},
		{between(0, 1.0), +5},
		{above(2.0), -10},
		{below(0), -10},
	}},
	{"current_ratio", func(f *input) float64 { return f.CurrentRatio }, []rule{
		{above(2.0), +10},
		{above(1.5), +5},
		{below(1.0), -10},
	}},
}

var valueFields = []field{
	{"pe_ratio", func(f *input) float64 { return f.PERatio }, []rule{
		{between(0, 15), +15},
		{between(0, 25), +5},
		{above(40), -10},
		{below(0), -10},
	}},
	{"pb_ratio", func(f *input) float64 { return f.PBRatio }, []rule{
		{between(0, 1), +10},
		{between(0, 3), +5},
		{above(5), -10},
	}},
	{"dividend_yield", func(f *input) float64 { return f.DividendYield }, []rule{
		{above(0.04), +10},
		{above(0.02), +5},
	}},
}

var momentumFields = []field{
	{"change_52w", func(f *input) float64 { return f.Change52w }, []rule{
		{above(0.20), +15},
		{above(0.05), +5},
		{below(-0.20), -15},
		{below(0), -5},
	}},
	{"change_3m", func(f *input) float64 { return f.Change3m }, []rule{
		{above(0.10), +10},
		{above(0), +5},
		{below(-0.10), -10},
	}},
	{"rsi_14", func(f *input) float64 { return f.RSI14 }, []rule{
		{between(50, 70), +5},
		{above(80), -10},
		{above(70), -5},
		{below(30), -5},
	}},
	{"ma50_deviation", func(f *input) float64 { return f.MA50Deviation }, []rule{
		{above(0.05), +10},
		{above(0), +5},
		{below(-0.05), -10},
		{below(0), -5},
	}},
	{"range_52w", func(f *input) float64 { return f.Range52w }, []rule{
		{above(0.8), +5},
		{below(0.2), -5},
	}},
}

// Performance scores profitability and growth.
func Performance(f model.Fundamentals) float64 { return apply(&f, performanceFields) }

// Stability scores volatility and balance-sheet strength.
func Stability(f model.Fundamentals) float64 { return apply(&f, stabilityFields) }

// Value scores valuation multiples and yield.
func Value(f model.Fundamentals) float64 { return apply(&f, valueFields) }

// Momentum scores recent price action.
func Momentum(f model.Fundamentals) float64 { return apply(&f, momentumFields) }
