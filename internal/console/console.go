package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"MarketLens/internal/model"
	"MarketLens/internal/router"
	"MarketLens/internal/scoring"
)

// Profiles resolves stock profiles across the primary and secondary stores.
type Profiles interface {
	GetStockData(ctx context.Context, ticker string) (*model.Profile, error)
	SetMode(m router.Mode) error
	Snapshot() *router.State
}

// Series serves pre-computed period series.
type Series interface {
	Get(ctx context.Context, ticker, period string) (*model.PeriodSeries, error)
}

// Comparer builds dividend-yield comparisons.
type Comparer interface {
	Compare(ctx context.Context, ticker, benchmark string, lookback model.Lookback) (*model.Comparison, error)
}

// Refresher triggers an immediate availability refresh.
type Refresher interface {
	RefreshNow() error
}

// Console dispatches text commands to the data layer.
type Console struct {
	Profiles  Profiles
	Series    Series
	Comparer  Comparer
	Refresher Refresher
	Benchmark string
	Timeout   time.Duration

	// ScorePeriod is the series used to derive momentum inputs for "score".
	ScorePeriod string
}

// New creates a Console.
func New(p Profiles, s Series, c Comparer, r Refresher, benchmark string) *Console {
	if benchmark == "" {
		benchmark = "SPY"
	}
	return &Console{
		Profiles:    p,
		Series:      s,
		Comparer:    c,
		Refresher:   r,
		Benchmark:   model.NormalizeTicker(benchmark),
		Timeout:     30 * time.Second,
		ScorePeriod: "1y",
	}
}

const usage = `Available commands:
  profile TICKER
  series TICKER PERIOD
  compare TICKER [BENCHMARK] [1Y|3Y|5Y|MAX]
  score TICKER
  mode [primary|secondary]
  refresh
  help`

// HandleCommand processes a command line and returns a reply.
func (c *Console) HandleCommand(ctx context.Context, line string) string {
	args := strings.Fields(line)
	if len(args) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := strings.ToLower(strings.TrimPrefix(args[0], "/"))
	args = args[1:]
	log.Debug().Str("command", cmd).Strs("args", args).Msg("console command")

	switch cmd {
	case "profile":
		if len(args) != 1 {
			return "usage: profile TICKER"
		}
		p, err := c.Profiles.GetStockData(ctx, args[0])
		if err != nil {
			return describe(err, fmt.Sprintf("No data for %s.", model.NormalizeTicker(args[0])))
		}
		return FormatProfile(p)

	case "series":
		if len(args) != 2 {
			return "usage: series TICKER PERIOD"
		}
		s, err := c.Series.Get(ctx, args[0], args[1])
		if err != nil {
			return describe(err, fmt.Sprintf("No %s series for %s.", strings.ToLower(args[1]), model.NormalizeTicker(args[0])))
		}
		return FormatSeries(s)

	case "compare":
		return c.compare(ctx, args)

	case "score":
		if len(args) != 1 {
			return "usage: score TICKER"
		}
		return c.score(ctx, args[0])

	case "mode":
		if len(args) == 0 {
			return FormatState(c.Profiles.Snapshot())
		}
		m, err := router.ParseMode(args[0])
		if err != nil {
			return err.Error()
		}
		if err := c.Profiles.SetMode(m); err != nil {
			log.Warn().Err(err).Msg("mode change not persisted")
		}
		return FormatState(c.Profiles.Snapshot())

	case "refresh":
		if err := c.Refresher.RefreshNow(); err != nil {
			return fmt.Sprintf("Refresh failed: %v", err)
		}
		return FormatState(c.Profiles.Snapshot())

	default:
		return usage
	}
}

func (c *Console) compare(ctx context.Context, args []string) string {
	if len(args) == 0 || len(args) > 3 {
		return "usage: compare TICKER [BENCHMARK] [1Y|3Y|5Y|MAX]"
	}
	ticker, benchmark, lookback := args[0], c.Benchmark, model.Lookback1Y
	for _, a := range args[1:] {
		if lb, err := model.ParseLookback(a); err == nil {
			lookback = lb
			continue
		}
		benchmark = a
	}
	cmp, err := c.Comparer.Compare(ctx, ticker, benchmark, lookback)
	if err != nil {
		return describe(err, fmt.Sprintf("No dividend history for %s or %s.", model.NormalizeTicker(ticker), model.NormalizeTicker(benchmark)))
	}
	return FormatComparison(cmp)
}

// score evaluates the profile's fundamentals. Momentum inputs come from the
// ticker's series when one exists; a missing series is not an error.
func (c *Console) score(ctx context.Context, ticker string) string {
	p, err := c.Profiles.GetStockData(ctx, ticker)
	if err != nil {
		return describe(err, fmt.Sprintf("No data for %s.", model.NormalizeTicker(ticker)))
	}
	f := scoring.FromProfile(p)
	if s, err := c.Series.Get(ctx, p.Ticker, c.ScorePeriod); err == nil {
		scoring.ApplySeries(&f, s.Prices)
	}
	m, err := scoring.Evaluate(f)
	if err != nil {
		if errors.Is(err, model.ErrInsufficientData) {
			return fmt.Sprintf("Not enough fundamentals to score %s.", p.Ticker)
		}
		return err.Error()
	}
	return FormatScores(p.Ticker, m)
}

// describe renders absence as an explicit no-data message and anything else as a failure.
func describe(err error, absent string) string {
	if model.IsAbsent(err) {
		return absent
	}
	log.Error().Err(err).Msg("console command failed")
	return fmt.Sprintf("Temporarily unavailable: %v", err)
}
