package collector

import (
	"context"
	"time"

	"MarketLens/internal/model"
)

// Fetcher is a market-data provider client.
type Fetcher interface {
	// Dividends returns raw dividend events paid between from and to.
	Dividends(ctx context.Context, ticker string, from, to time.Time) ([]model.DividendEvent, error)
	// Quotes returns chronologically ordered daily closes between from and to.
	Quotes(ctx context.Context, ticker string, from, to time.Time) ([]model.Quote, error)
	Name() string
}
