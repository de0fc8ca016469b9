// Package series serves pre-computed per-period price series from the
// primary store, refusing anything that is not a complete, well-formed series.
package series

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"MarketLens/internal/model"
	"MarketLens/internal/store"
)

// DefaultTimeout bounds a single series lookup.
const DefaultTimeout = 5 * time.Second

// RowReader reads the raw series row for (ticker, lower(period)).
type RowReader interface {
	SeriesRow(ctx context.Context, ticker, period string) (*store.SeriesRow, error)
}

// Store is a validated accessor over a RowReader. It keeps no cache and is
// safe for concurrent use.
type Store struct {
	rows    RowReader
	timeout time.Duration
}

// New creates a Store. A zero timeout means DefaultTimeout.
func New(rows RowReader, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{rows: rows, timeout: timeout}
}

// Get returns the series for ticker and period. The error wraps
// model.ErrNotFound or model.ErrInvalidShape when the series is absent, and
// model.ErrUnavailable when the store could not be reached.
func (s *Store) Get(ctx context.Context, ticker, period string) (*model.PeriodSeries, error) {
	ticker = model.NormalizeTicker(ticker)
	period = strings.ToLower(strings.TrimSpace(period))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	row, err := s.rows.SeriesRow(ctx, ticker, period)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			log.Debug().Str("ticker", ticker).Str("period", period).Msg("series not found")
		case errors.Is(err, model.ErrInvalidShape):
			log.Warn().Err(err).Str("ticker", ticker).Str("period", period).Msg("series rejected")
		case !errors.Is(err, model.ErrUnavailable):
			err = fmt.Errorf("series %s/%s: %w: %v", ticker, period, model.ErrUnavailable, err)
		}
		return nil, err
	}

	series, err := Validate(ticker, period, row)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("period", period).Msg("series rejected")
		return nil, err
	}
	return series, nil
}

// Validate decodes a raw row into a series. Both columns must be arrays of
// equal, non-zero length; every price must coerce to a finite number and
// every date must resolve.
func Validate(ticker, period string, row *store.SeriesRow) (*model.PeriodSeries, error) {
	if row == nil {
		return nil, fmt.Errorf("series %s/%s: %w", ticker, period, model.ErrNotFound)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("series %s/%s: %w: %s", ticker, period, model.ErrInvalidShape, fmt.Sprintf(format, args...))
	}
	if row.Dates == nil || row.Prices == nil {
		return nil, invalid("missing column")
	}

	var rawDates, rawPrices []any
	if err := decodeArray(row.Dates, &rawDates); err != nil {
		return nil, invalid("dates: %v", err)
	}
	if err := decodeArray(row.Prices, &rawPrices); err != nil {
		return nil, invalid("prices: %v", err)
	}
	if len(rawDates) != len(rawPrices) {
		return nil, invalid("%d dates, %d prices", len(rawDates), len(rawPrices))
	}
	if len(rawPrices) == 0 {
		return nil, invalid("empty")
	}

	s := &model.PeriodSeries{
		Ticker: ticker,
		Period: period,
		Dates:  make([]time.Time, len(rawDates)),
		Prices: make([]float64, len(rawPrices)),
	}
	for i := range rawPrices {
		p, ok := price(rawPrices[i])
		if !ok {
			return nil, invalid("price %d is %v", i, rawPrices[i])
		}
		d, ok := date(rawDates[i])
		if !ok {
			return nil, invalid("date %d is %v", i, rawDates[i])
		}
		s.Prices[i] = p
		s.Dates[i] = d
	}
	return s, nil
}

func decodeArray(raw []byte, v *[]any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if *v == nil {
		return errors.New("not an array")
	}
	return nil
}
