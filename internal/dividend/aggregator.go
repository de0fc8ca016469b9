package dividend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"MarketLens/internal/model"
	"MarketLens/internal/timestamp"
)

const (
	// DefaultTimeout bounds the whole fan-out of a comparison.
	DefaultTimeout = 20 * time.Second

	// quoteSlack is how far before the window quotes are kept for price matching.
	quoteSlack = 30 * 24 * time.Hour

	// lateQuote is how far past quarter end a quote may be matched.
	lateQuote = 7 * 24 * time.Hour

	// annualize converts a quarterly yield into a yearly rate.
	annualize = 4

	// maxYears is the oldest window MAX may reach, matching the normalizer floor.
	maxYears = 20
)

// Source provides raw dividend events and daily closes for an instrument.
type Source interface {
	Dividends(ctx context.Context, ticker string, from, to time.Time) ([]model.DividendEvent, error)
	Quotes(ctx context.Context, ticker string, from, to time.Time) ([]model.Quote, error)
}

// Aggregator builds quarterly dividend-yield comparisons.
type Aggregator struct {
	src     Source
	timeout time.Duration
	norm    timestamp.Normalizer
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the deadline for the underlying fetches.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock replaces the wall clock, for tests. A nil clock is ignored.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.norm = timestamp.Normalizer{Now: now}
		}
	}
}

// New creates an Aggregator reading from src.
func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{src: src, timeout: DefaultTimeout, norm: timestamp.Default}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type history struct {
	events []model.NormalizedDividendEvent
	quotes []model.Quote
}

// Compare buckets dividends and prices of ticker and benchmark into calendar
// quarters over lookback. If either instrument cannot be fetched the whole
// comparison fails.
func (a *Aggregator) Compare(ctx context.Context, ticker, benchmark string, lookback model.Lookback) (*model.Comparison, error) {
	ticker = model.NormalizeTicker(ticker)
	benchmark = model.NormalizeTicker(benchmark)
	if ticker == "" || benchmark == "" {
		return nil, fmt.Errorf("compare: ticker and benchmark are required")
	}
	if _, err := model.ParseLookback(string(lookback)); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	start := time.Now()
	now := a.norm.Now().UTC()
	years := lookback.Years()
	from := time.Date(now.Year()-maxYears, 1, 1, 0, 0, 0, 0, time.UTC)
	if years > 0 {
		from = windowStart(now, years).Add(-quoteSlack)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var (
		tickerEvents, benchEvents []model.DividendEvent
		tickerQuotes, benchQuotes []model.Quote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tickerEvents, err = a.src.Dividends(gctx, ticker, from, now)
		return wrap("dividends", ticker, err)
	})
	g.Go(func() (err error) {
		benchEvents, err = a.src.Dividends(gctx, benchmark, from, now)
		return wrap("dividends", benchmark, err)
	})
	g.Go(func() (err error) {
		tickerQuotes, err = a.src.Quotes(gctx, ticker, from, now)
		return wrap("quotes", ticker, err)
	})
	g.Go(func() (err error) {
		benchQuotes, err = a.src.Quotes(gctx, benchmark, from, now)
		return wrap("quotes", benchmark, err)
	})
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Str("benchmark", benchmark).Msg("comparison failed")
		return nil, fmt.Errorf("compare %s vs %s: %w", ticker, benchmark, err)
	}
	for sym, q := range map[string][]model.Quote{ticker: tickerQuotes, benchmark: benchQuotes} {
		if len(q) == 0 {
			return nil, fmt.Errorf("compare %s vs %s: no price history for %s: %w", ticker, benchmark, sym, model.ErrNotFound)
		}
	}

	t := history{events: a.normalize(ticker, tickerEvents), quotes: sortQuotes(tickerQuotes)}
	b := history{events: a.normalize(benchmark, benchEvents), quotes: sortQuotes(benchQuotes)}

	var first time.Time
	if years > 0 {
		first = windowStart(now, years)
	} else {
		first = earliest(now, t, b)
		if floor := time.Date(now.Year()-maxYears, 1, 1, 0, 0, 0, 0, time.UTC); first.Before(floor) {
			first = floor
		}
	}

	quarters := timeline(first, now)
	t = t.clip(quarters[0].start, now)
	b = b.clip(quarters[0].start, now)

	out := &model.Comparison{
		Ticker:    ticker,
		Benchmark: benchmark,
		Lookback:  lookback,
		Quarters:  make([]model.QuarterBucket, 0, len(quarters)),
	}
	for _, q := range quarters {
		qb := model.QuarterBucket{Label: q.label, StartDate: q.start, EndDate: q.end}
		qb.TickerDividend, qb.TickerPrice, qb.TickerYieldAnnualized = t.quarter(q)
		qb.BenchmarkDividend, qb.BenchmarkPrice, qb.BenchmarkYieldAnnualized = b.quarter(q)
		out.Quarters = append(out.Quarters, qb)
	}
	out.Summary = summarize(out.Quarters)

	log.Info().
		Str("ticker", ticker).
		Str("benchmark", benchmark).
		Str("lookback", string(lookback)).
		Int("quarters", len(out.Quarters)).
		Dur("elapsed", time.Since(start)).
		Msg("comparison built")
	return out, nil
}

func wrap(what, ticker string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidShape) || errors.Is(err, model.ErrUnavailable) {
		return fmt.Errorf("%s %s: %w", what, ticker, err)
	}
	return fmt.Errorf("%s %s: %w: %v", what, ticker, model.ErrUnavailable, err)
}

// normalize resolves event dates, dropping events whose date cannot be
// resolved or whose amount is not a positive finite number.
func (a *Aggregator) normalize(ticker string, events []model.DividendEvent) []model.NormalizedDividendEvent {
	out := make([]model.NormalizedDividendEvent, 0, len(events))
	dropped := 0
	for _, e := range events {
		date, ok := a.norm.Resolve(e.RawTimestamp)
		if !ok || e.Amount <= 0 || math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			dropped++
			continue
		}
		out = append(out, model.NormalizedDividendEvent{Date: date, Amount: e.Amount})
	}
	if dropped > 0 {
		log.Debug().Str("ticker", ticker).Int("dropped", dropped).Msg("dividend events dropped")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortQuotes(q []model.Quote) []model.Quote {
	out := make([]model.Quote, 0, len(q))
	for _, x := range q {
		if x.Close > 0 && !math.IsInf(x.Close, 0) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func earliest(now time.Time, hs ...history) time.Time {
	first := now
	for _, h := range hs {
		if len(h.events) > 0 && h.events[0].Date.Before(first) {
			first = h.events[0].Date
		}
		if len(h.quotes) > 0 && h.quotes[0].Time.Before(first) {
			first = h.quotes[0].Time
		}
	}
	return first
}

// clip drops events outside [from, to] and quotes older than from minus the slack.
func (h history) clip(from, to time.Time) history {
	var out history
	for _, e := range h.events {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out.events = append(out.events, e)
		}
	}
	cutoff := from.Add(-quoteSlack)
	for _, q := range h.quotes {
		if !q.Time.Before(cutoff) {
			out.quotes = append(out.quotes, q)
		}
	}
	if len(out.quotes) == 0 {
		out.quotes = h.quotes
	}
	return out
}

// quarter returns the dividends paid in q, the matched price and the annualized yield.
func (h history) quarter(q bucket) (dividend, price, yield float64) {
	sum := decimal.Zero
	for _, e := range h.events {
		if q.contains(e.Date) {
			sum = sum.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	dividend = sum.InexactFloat64()
	price = h.price(q)
	if dividend > 0 && price > 0 {
		yield = dividend / price * 100 * annualize
	}
	return dividend, price, yield
}

// price picks the latest quote inside the quarter, else the first quote up to
// seven days after it, else the latest quote before it, else the latest quote.
func (h history) price(q bucket) float64 {
	if len(h.quotes) == 0 {
		return 0
	}
	var inside, before float64
	for _, x := range h.quotes {
		switch {
		case q.contains(x.Time):
			inside = x.Close
		case x.Time.Before(q.start):
			before = x.Close
		}
	}
	if inside > 0 {
		return inside
	}
	late := q.end.Add(lateQuote)
	for _, x := range h.quotes {
		if x.Time.After(q.end) && !x.Time.After(late) {
			return x.Close
		}
	}
	if before > 0 {
		return before
	}
	return h.quotes[len(h.quotes)-1].Close
}

func summarize(quarters []model.QuarterBucket) model.ComparisonSummary {
	var (
		s                model.ComparisonSummary
		tTotal, bTotal   = decimal.Zero, decimal.Zero
		tYields, bYields []float64
	)
	for _, q := range quarters {
		tTotal = tTotal.Add(decimal.NewFromFloat(q.TickerDividend))
		bTotal = bTotal.Add(decimal.NewFromFloat(q.BenchmarkDividend))
		if q.TickerDividend > 0 {
			s.TickerPayingQuarters++
		}
		if q.BenchmarkDividend > 0 {
			s.BenchmarkPayingQuarters++
		}
		if q.TickerYieldAnnualized > 0 {
			tYields = append(tYields, q.TickerYieldAnnualized)
		}
		if q.BenchmarkYieldAnnualized > 0 {
			bYields = append(bYields, q.BenchmarkYieldAnnualized)
		}
	}
	s.TickerTotalDividend = tTotal.InexactFloat64()
	s.BenchmarkTotalDividend = bTotal.InexactFloat64()
	s.TickerAverageYield = mean(tYields)
	s.BenchmarkAverageYield = mean(bYields)
	s.YieldSpread = s.TickerAverageYield - s.BenchmarkAverageYield
	return s
}

// mean of the non-zero yields; 0 when a series never paid.
func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
