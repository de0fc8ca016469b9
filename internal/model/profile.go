package model

import "time"

// Source identifies which backing store answered a profile lookup.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSecondary Source = "secondary"
)

// Profile is the canonical stock profile returned by the data source router,
// whichever store produced it.
type Profile struct {
	Ticker        string    `json:"ticker"`
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	Industry      string    `json:"industry"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	MarketCap     float64   `json:"market_cap"`
	Volume        float64   `json:"volume"`
	PERatio       float64   `json:"pe_ratio"`
	DividendYield float64   `json:"dividend_yield"`
	ProfitMargin  float64   `json:"profit_margin"`
	Beta          float64   `json:"beta"`
	High52w       float64   `json:"high_52w"`
	Low52w        float64   `json:"low_52w"`
	UpdatedAt     time.Time `json:"updated_at"`
	Source        Source    `json:"source"`
}
