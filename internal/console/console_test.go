package console

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
	"MarketLens/internal/router"
)

type fakeProfiles struct {
	profiles map[string]*model.Profile
	err      error
	mode     router.Mode
}

func (f *fakeProfiles) GetStockData(_ context.Context, ticker string) (*model.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[model.NormalizeTicker(ticker)]; ok {
		return p, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeProfiles) SetMode(m router.Mode) error {
	f.mode = m
	return nil
}

func (f *fakeProfiles) Snapshot() *router.State { return &router.State{Mode: f.mode} }

type fakeSeries struct{ series *model.PeriodSeries }

func (f *fakeSeries) Get(_ context.Context, ticker, period string) (*model.PeriodSeries, error) {
	if f.series == nil || f.series.Ticker != model.NormalizeTicker(ticker) || f.series.Period != strings.ToLower(period) {
		return nil, model.ErrNotFound
	}
	return f.series, nil
}

type fakeComparer struct {
	gotTicker, gotBenchmark string
	gotLookback             model.Lookback
	err                     error
}

func (f *fakeComparer) Compare(_ context.Context, ticker, benchmark string, lookback model.Lookback) (*model.Comparison, error) {
	f.gotTicker, f.gotBenchmark, f.gotLookback = ticker, benchmark, lookback
	if f.err != nil {
		return nil, f.err
	}
	return &model.Comparison{
		Ticker: ticker, Benchmark: benchmark, Lookback: lookback,
		Quarters: []model.QuarterBucket{{Label: "Q4 2026", TickerDividend: 0.5, TickerYieldAnnualized: 8}},
		Summary:  model.ComparisonSummary{TickerTotalDividend: 0.5, TickerAverageYield: 8, TickerPayingQuarters: 1, YieldSpread: 8},
	}, nil
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) RefreshNow() error {
	f.calls++
	return nil
}

func newConsole() (*Console, *fakeProfiles, *fakeComparer, *fakeRefresher) {
	p := &fakeProfiles{
		mode: router.ModePrimary,
		profiles: map[string]*model.Profile{
			"SCHD": {Ticker: "SCHD", Name: "Schwab US Dividend Equity ETF", Price: 27.5, PERatio: 14, Beta: 0.7, Source: model.SourceSecondary},
		},
	}
	dates := make([]time.Time, 3)
	for i := range dates {
		dates[i] = time.Date(2026, 10, 14+i, 0, 0, 0, 0, time.UTC)
	}
	s := &fakeSeries{series: &model.PeriodSeries{Ticker: "SCHD", Period: "1y", Dates: dates, Prices: []float64{25, 26, 27.5}}}
	c := &fakeComparer{}
	r := &fakeRefresher{}
	return New(p, s, c, r, "spy"), p, c, r
}

func TestHandleCommand(t *testing.T) {
	con, _, _, _ := newConsole()
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"profile schd", "Schwab US Dividend Equity ETF"},
		{"profile schd", "[secondary]"},
		{"profile ZZZZ", "No data for ZZZZ."},
		{"series SCHD 1Y", "SCHD 1y: 3 points"},
		{"series SCHD 5y", "No 5y series for SCHD."},
		{"score schd", "Overall:"},
		{"score nope", "No data for NOPE."},
		{"/help", "Available commands"},
		{"bogus", "Available commands"},
		{"profile", "usage: profile TICKER"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Contains(t, con.HandleCommand(ctx, tt.line), tt.want)
		})
	}
	assert.Empty(t, con.HandleCommand(ctx, "   "))
}

func TestCompareArguments(t *testing.T) {
	con, _, cmp, _ := newConsole()
	ctx := context.Background()

	out := con.HandleCommand(ctx, "compare schd")
	assert.Equal(t, "schd", cmp.gotTicker)
	assert.Equal(t, "SPY", cmp.gotBenchmark)
	assert.Equal(t, model.Lookback1Y, cmp.gotLookback)
	assert.Contains(t, out, "Q4 2026")

	con.HandleCommand(ctx, "compare schd vti 3y")
	assert.Equal(t, "vti", cmp.gotBenchmark)
	assert.Equal(t, model.Lookback3Y, cmp.gotLookback)

	con.HandleCommand(ctx, "compare schd max")
	assert.Equal(t, "SPY", cmp.gotBenchmark)
	assert.Equal(t, model.LookbackMax, cmp.gotLookback)
}

func TestFailuresAreNotReportedAsAbsence(t *testing.T) {
	con, p, cmp, _ := newConsole()
	ctx := context.Background()

	cmp.err = model.ErrNotFound
	assert.Contains(t, con.HandleCommand(ctx, "compare schd"), "No dividend history")

	cmp.err = errors.New("timeout")
	assert.Contains(t, con.HandleCommand(ctx, "compare schd"), "Temporarily unavailable")

	p.err = model.ErrUnavailable
	assert.Contains(t, con.HandleCommand(ctx, "profile schd"), "Temporarily unavailable")
}

func TestModeAndRefresh(t *testing.T) {
	con, p, _, r := newConsole()
	ctx := context.Background()

	assert.Contains(t, con.HandleCommand(ctx, "mode"), "Mode: primary")
	assert.Contains(t, con.HandleCommand(ctx, "mode secondary"), "Mode: secondary")
	assert.Equal(t, router.ModeSecondary, p.mode)
	assert.Contains(t, con.HandleCommand(ctx, "mode tertiary"), "tertiary")

	con.HandleCommand(ctx, "refresh")
	assert.Equal(t, 1, r.calls)
}

func TestRunLoop(t *testing.T) {
	con, _, _, _ := newConsole()
	var out strings.Builder
	in := strings.NewReader("profile schd\n\nquit\nprofile schd\n")

	require.NoError(t, con.Run(context.Background(), in, &out))
	assert.Equal(t, 1, strings.Count(out.String(), "Schwab US Dividend Equity ETF"))
}

func TestRunReportsEOF(t *testing.T) {
	con, _, _, _ := newConsole()
	var out strings.Builder
	err := con.Run(context.Background(), strings.NewReader("mode\n"), &out)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, out.String(), "Mode: primary")
}

func TestRunStopsOnCancel(t *testing.T) {
	con, _, _, _ := newConsole()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- con.Run(ctx, blockingReader{}, &strings.Builder{}) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) { select {} }
