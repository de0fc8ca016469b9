package series

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
	"MarketLens/internal/store"
)

type fakeRows struct {
	mu    sync.Mutex
	rows  map[string]*store.SeriesRow
	err   error
	block bool
	keys  []string
}

func (f *fakeRows) SeriesRow(ctx context.Context, ticker, period string) (*store.SeriesRow, error) {
	f.mu.Lock()
	f.keys = append(f.keys, ticker+"/"+period)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	row, ok := f.rows[ticker+"/"+period]
	if !ok {
		return nil, model.ErrNotFound
	}
	return row, nil
}

func row(dates, prices string) *store.SeriesRow {
	r := &store.SeriesRow{}
	if dates != "" {
		r.Dates = []byte(dates)
	}
	if prices != "" {
		r.Prices = []byte(prices)
	}
	return r
}

func TestGet_Valid(t *testing.T) {
	rows := &fakeRows{rows: map[string]*store.SeriesRow{
		"AAPL/1y": row(`["2024-01-02","2024-01-03","2024-01-04"]`, `[185.64, "184.25", 181.91]`),
	}}
	s := New(rows, 0)

	got, err := s.Get(context.Background(), "aapl", "1Y")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, "1y", got.Period)
	assert.Equal(t, []float64{185.64, 184.25, 181.91}, got.Prices)
	require.Len(t, got.Dates, 3)
	assert.True(t, got.Dates[2].Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, []string{"AAPL/1y"}, rows.keys, "period is looked up lower-cased")
}

func TestGet_Absent(t *testing.T) {
	tests := []struct {
		name string
		row  *store.SeriesRow
		want error
	}{
		{"length mismatch", row(`["2024-01-02","2024-01-03"]`, `[1.0]`), model.ErrInvalidShape},
		{"empty", row(`[]`, `[]`), model.ErrInvalidShape},
		{"missing dates", row("", `[1.0]`), model.ErrInvalidShape},
		{"missing prices", row(`["2024-01-02"]`, ""), model.ErrInvalidShape},
		{"not arrays", row(`{"d":1}`, `{"p":1}`), model.ErrInvalidShape},
		{"null arrays", row(`null`, `null`), model.ErrInvalidShape},
		{"non numeric price", row(`["2024-01-02"]`, `["abc"]`), model.ErrInvalidShape},
		{"NaN price", row(`["2024-01-02"]`, `[NaN]`), model.ErrInvalidShape},
		{"null price", row(`["2024-01-02"]`, `[null]`), model.ErrInvalidShape},
		{"bad date", row(`["someday"]`, `[1.0]`), model.ErrInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&fakeRows{rows: map[string]*store.SeriesRow{"X/1m": tt.row}}, 0)
			got, err := s.Get(context.Background(), "X", "1m")
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, model.IsAbsent(err))
		})
	}

	s := New(&fakeRows{}, 0)
	_, err := s.Get(context.Background(), "NOPE", "1y")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestGet_Unavailable(t *testing.T) {
	s := New(&fakeRows{err: errors.New("connection reset")}, 0)
	_, err := s.Get(context.Background(), "AAPL", "1y")
	assert.ErrorIs(t, err, model.ErrUnavailable)
	assert.False(t, model.IsAbsent(err))

	slow := New(&fakeRows{block: true}, 20*time.Millisecond)
	_, err = slow.Get(context.Background(), "AAPL", "1y")
	assert.ErrorIs(t, err, model.ErrUnavailable)
}

func TestGet_Concurrent(t *testing.T) {
	rows := &fakeRows{rows: map[string]*store.SeriesRow{
		"SPY/1m": row(`["2024-01-02","2024-01-03"]`, `[470.1, 468.8]`),
	}}
	s := New(rows, 0)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Get(context.Background(), "SPY", "1M")
			if assert.NoError(t, err) {
				assert.Equal(t, len(got.Dates), len(got.Prices))
			}
		}()
	}
	wg.Wait()
}
