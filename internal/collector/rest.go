package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

// RESTFetcher implements Fetcher against a bearer-authenticated REST
// provider exposing /api/v1/bars/daily and /api/v1/dividends.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter *rate.Limiter
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(opts Options) *RESTFetcher {
	f := &RESTFetcher{
		BaseURL: opts.BaseURL,
		APIKey:  opts.APIKey,
		Client:  opts.Client,
		limiter: newLimiter(opts.RateLimit),
	}
	if f.Client == nil {
		f.Client = newHTTPClient(opts.Proxy, opts.Timeout)
	}
	return f
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape of a daily bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

// restDividend carries the provider's date untouched: it may be a number or a string.
type restDividend struct {
	Date   interface{} `json:"date"`
	Amount float64     `json:"amount"`
}

func (f *RESTFetcher) endpoint(path, symbol string, from, to time.Time) string {
	q := url.Values{}
	q.Set("symbol", model.NormalizeTicker(symbol))
	if !from.IsZero() {
		q.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		q.Set("to", to.Format("2006-01-02"))
	}
	return fmt.Sprintf("%s%s?%s", f.BaseURL, path, q.Encode())
}

func (f *RESTFetcher) header() http.Header {
	h := http.Header{}
	if f.APIKey != "" {
		h.Set("Authorization", "Bearer "+f.APIKey)
	}
	return h
}

// Quotes returns daily closes between from and to.
func (f *RESTFetcher) Quotes(ctx context.Context, symbol string, from, to time.Time) ([]model.Quote, error) {
	var bars []restBar
	if err := getJSON(ctx, f.Client, f.limiter, f.endpoint("/api/v1/bars/daily", symbol, from, to), f.header(), &bars); err != nil {
		return nil, fmt.Errorf("rest bars %s: %w", symbol, err)
	}
	quotes := make([]model.Quote, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		quotes = append(quotes, model.Quote{Time: time.Unix(b.Timestamp, 0).UTC(), Close: b.Close})
	}
	// Ensure chronological order
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Time.Before(quotes[j].Time) })
	return quotes, nil
}

// Dividends returns raw dividend events between from and to.
func (f *RESTFetcher) Dividends(ctx context.Context, symbol string, from, to time.Time) ([]model.DividendEvent, error) {
	var divs []restDividend
	if err := getJSON(ctx, f.Client, f.limiter, f.endpoint("/api/v1/dividends", symbol, from, to), f.header(), &divs); err != nil {
		return nil, fmt.Errorf("rest dividends %s: %w", symbol, err)
	}
	events := make([]model.DividendEvent, 0, len(divs))
	for _, d := range divs {
		if d.Amount < 0 {
			continue
		}
		events = append(events, model.DividendEvent{RawTimestamp: d.Date, Amount: d.Amount})
	}
	return events, nil
}
