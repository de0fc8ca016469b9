package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"MarketLens/internal/model"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// APIError is a non-200 response from a provider.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error: status %d, endpoint: %s, body: %s", e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap classifies the failure: 404 is a permanent miss, anything else is retryable.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return model.ErrNotFound
	}
	return model.ErrUnavailable
}

// Options configure a provider client.
type Options struct {
	BaseURL   string
	APIKey    string
	Proxy     string
	Timeout   time.Duration
	RateLimit int
	Client    *http.Client
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func newLimiter(perSecond int) *rate.Limiter {
	if perSecond <= 0 {
		perSecond = DefaultRateLimit
	}
	return rate.NewLimiter(rate.Limit(perSecond), perSecond)
}

// getJSON waits for the limiter, performs a GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, endpoint string, header http.Header, out any) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w: %v", model.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	log.Debug().Str("url", req.URL.Redacted()).Msg("provider request")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w: %v", model.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w: %v", model.ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: req.URL.Path, Message: truncate(string(body), 256)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w: %v", model.ErrInvalidShape, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
