package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

// YahooBaseURL is the public Yahoo Finance API host.
const YahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker

	limiter *rate.Limiter
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts Options) *YahooFetcher {
	f := &YahooFetcher{
		BaseURL: YahooBaseURL,
		Client:  opts.Client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		limiter: newLimiter(opts.RateLimit),
	}
	if opts.BaseURL != "" {
		f.BaseURL = opts.BaseURL
	}
	if f.Client == nil {
		f.Client = newHTTPClient(opts.Proxy, opts.Timeout)
	}
	return f
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	symbol = model.NormalizeTicker(symbol)
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64     `json:"amount"`
					Date   interface{} `json:"date"`
				} `json:"dividends"`
			} `json:"events"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, from, to time.Time) (*yahooChart, error) {
	if to.IsZero() {
		to = time.Now()
	}
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("events", "div")
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")

	var chart yahooChart
	if err := getJSON(ctx, f.Client, f.limiter, u, header, &chart); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		if chart.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo %s: %w: %s", symbol, model.ErrNotFound, chart.Chart.Error.Description)
		}
		return nil, fmt.Errorf("yahoo %s: %w: %s", symbol, model.ErrUnavailable, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: no data returned: %w", symbol, model.ErrNotFound)
	}
	return &chart, nil
}

// Quotes returns daily closes between from and to. Null closes (holidays) are skipped.
func (f *YahooFetcher) Quotes(ctx context.Context, symbol string, from, to time.Time) ([]model.Quote, error) {
	chart, err := f.fetchChart(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: no quotes: %w", symbol, model.ErrNotFound)
	}
	closes := result.Indicators.Quote[0].Close

	quotes := make([]model.Quote, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		c := toFloat(closes[i])
		if c <= 0 {
			continue
		}
		quotes = append(quotes, model.Quote{Time: time.Unix(ts, 0).UTC(), Close: c})
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Time.Before(quotes[j].Time) })
	return quotes, nil
}

// Dividends returns the raw dividend events Yahoo reports between from and to.
// The map key is used when an event carries no date of its own.
func (f *YahooFetcher) Dividends(ctx context.Context, symbol string, from, to time.Time) ([]model.DividendEvent, error) {
	chart, err := f.fetchChart(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	divs := chart.Chart.Result[0].Events.Dividends
	keys := make([]string, 0, len(divs))
	for k := range divs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	events := make([]model.DividendEvent, 0, len(divs))
	for _, k := range keys {
		d := divs[k]
		if d.Amount < 0 {
			continue
		}
		raw := d.Date
		if raw == nil {
			raw = k
		}
		events = append(events, model.DividendEvent{RawTimestamp: raw, Amount: d.Amount})
	}
	return events, nil
}
