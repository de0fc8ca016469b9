package model

// Fundamentals are the raw inputs of the fallback score engine.
// Ratios are fractions (0.2 means 20%). A zero value means "missing".
type Fundamentals struct {
	// performance
	ProfitMargin   float64 `json:"profit_margin"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	EarningsGrowth float64 `json:"earnings_growth"`
	ReturnOnEquity float64 `json:"return_on_equity"`

	// stability
	Beta         float64 `json:"beta"`
	DebtToEquity float64 `json:"debt_to_equity"`
	CurrentRatio float64 `json:"current_ratio"`

	// value
	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	DividendYield float64 `json:"dividend_yield"`

	// momentum
	Change52w     float64 `json:"change_52w"`
	Change3m      float64 `json:"change_3m"`
	RSI14         float64 `json:"rsi_14"`
	MA50Deviation float64 `json:"ma50_deviation"`
	// Range52w is where the last close sits in the 52-week low..high range (0..1].
	Range52w float64 `json:"range_52w"`
}

// MetricScores holds one bounded [0, 100] score per metric family.
type MetricScores struct {
	Performance float64 `json:"performance"`
	Stability   float64 `json:"stability"`
	Value       float64 `json:"value"`
	Momentum    float64 `json:"momentum"`
}

// Overall returns the unweighted mean of the four scores.
func (m MetricScores) Overall() float64 {
	return (m.Performance + m.Stability + m.Value + m.Momentum) / 4
}
