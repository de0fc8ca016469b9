package store

import (
	"context"
	"fmt"
	"time"

	"MarketLens/internal/model"
)

// Noop is the primary store used when no database is configured.
// It knows no tickers and finds nothing.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Tickers(context.Context) ([]string, error) { return nil, nil }

func (Noop) Profile(_ context.Context, ticker string) (*model.Profile, error) {
	return nil, fmt.Errorf("noop profile %s: %w", ticker, model.ErrNotFound)
}

func (Noop) SeriesRow(_ context.Context, ticker, period string) (*SeriesRow, error) {
	return nil, fmt.Errorf("noop series %s/%s: %w", ticker, period, model.ErrNotFound)
}

func (Noop) Dividends(_ context.Context, ticker string, _, _ time.Time) ([]model.DividendEvent, error) {
	return nil, fmt.Errorf("noop dividends %s: %w", ticker, model.ErrNotFound)
}

func (Noop) Quotes(_ context.Context, ticker string, _, _ time.Time) ([]model.Quote, error) {
	return nil, fmt.Errorf("noop quotes %s: %w", ticker, model.ErrNotFound)
}

func (Noop) Close() error { return nil }
