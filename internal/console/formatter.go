package console

import (
	"fmt"
	"strings"

	"MarketLens/internal/model"
	"MarketLens/internal/router"
)

// FormatProfile formats a stock profile for display.
func FormatProfile(p *model.Profile) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s  %s  [%s]\n", p.Ticker, p.Name, p.Source))
	if p.Sector != "" || p.Industry != "" {
		b.WriteString(fmt.Sprintf("%s / %s\n", p.Sector, p.Industry))
	}
	b.WriteString(fmt.Sprintf("Price: %.2f (%+.2f, %+.2f%%)\n", p.Price, p.Change, p.ChangePercent))
	b.WriteString(fmt.Sprintf("52w range: %.2f - %.2f\n", p.Low52w, p.High52w))
	b.WriteString(fmt.Sprintf("Market cap: %s | Volume: %s\n", compact(p.MarketCap), compact(p.Volume)))
	b.WriteString(fmt.Sprintf("P/E: %s | Div yield: %s | Margin: %s | Beta: %s\n",
		orNA(p.PERatio, "%.2f"), orNA(p.DividendYield, "%.2f%%"), orNA(p.ProfitMargin*100, "%.1f%%"), orNA(p.Beta, "%.2f")))
	if !p.UpdatedAt.IsZero() {
		b.WriteString(fmt.Sprintf("Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatSeries formats a period series as a short summary with its endpoints.
func FormatSeries(s *model.PeriodSeries) string {
	var b strings.Builder
	first, last := s.Prices[0], s.Prices[len(s.Prices)-1]
	b.WriteString(fmt.Sprintf("%s %s: %d points\n", s.Ticker, s.Period, s.Len()))
	b.WriteString(fmt.Sprintf("  %s  %.2f\n", s.Dates[0].Format("2006-01-02"), first))
	b.WriteString(fmt.Sprintf("  %s  %.2f\n", s.Dates[len(s.Dates)-1].Format("2006-01-02"), last))
	if first > 0 {
		b.WriteString(fmt.Sprintf("  change: %+.2f%%\n", (last-first)/first*100))
	}
	return b.String()
}

// FormatComparison formats a quarterly dividend-yield comparison.
func FormatComparison(c *model.Comparison) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s vs %s | %s\n\n", c.Ticker, c.Benchmark, c.Lookback))
	b.WriteString(fmt.Sprintf("%-8s %10s %10s %10s %10s\n", "Quarter", c.Ticker+" div", "yield", c.Benchmark+" div", "yield"))
	for _, q := range c.Quarters {
		b.WriteString(fmt.Sprintf("%-8s %10.4f %9.2f%% %10.4f %9.2f%%\n",
			q.Label, q.TickerDividend, q.TickerYieldAnnualized, q.BenchmarkDividend, q.BenchmarkYieldAnnualized))
	}
	s := c.Summary
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("Total paid: %s %.4f (%d quarters) | %s %.4f (%d quarters)\n",
		c.Ticker, s.TickerTotalDividend, s.TickerPayingQuarters, c.Benchmark, s.BenchmarkTotalDividend, s.BenchmarkPayingQuarters))
	b.WriteString(fmt.Sprintf("Average yield: %s %.2f%% | %s %.2f%% | spread %+.2f%%\n",
		c.Ticker, s.TickerAverageYield, c.Benchmark, s.BenchmarkAverageYield, s.YieldSpread))
	return b.String()
}

// FormatScores formats the four metric scores and their mean.
func FormatScores(ticker string, m model.MetricScores) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s scores\n", ticker))
	b.WriteString(fmt.Sprintf("  Performance: %5.1f\n", m.Performance))
	b.WriteString(fmt.Sprintf("  Stability:   %5.1f\n", m.Stability))
	b.WriteString(fmt.Sprintf("  Value:       %5.1f\n", m.Value))
	b.WriteString(fmt.Sprintf("  Momentum:    %5.1f\n", m.Momentum))
	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("  Overall:     %5.1f\n", m.Overall()))
	return b.String()
}

// FormatState formats the router's current snapshot.
func FormatState(s *router.State) string {
	refreshed := "never"
	if !s.RefreshedAt.IsZero() {
		refreshed = s.RefreshedAt.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("Mode: %s | Primary tickers: %d | Refreshed: %s\n", s.Mode, s.Known(), refreshed)
}

func orNA(v float64, format string) string {
	if v == 0 {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func compact(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v > 0:
		return fmt.Sprintf("%.0f", v)
	}
	return "n/a"
}
