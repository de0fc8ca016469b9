package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketLens/internal/model"
)

const chartBody = `{"chart":{"result":[{
  "timestamp":[1700000000,1700086400,1700172800],
  "indicators":{"quote":[{"close":[100.5,null,101.25]}]},
  "events":{"dividends":{
    "1700086400":{"amount":0.5,"date":1700086400},
    "1690000000":{"amount":0.45}
  }}
}],"error":null}}`

func TestYahooQuotes(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher(Options{BaseURL: srv.URL, Client: srv.Client()})
	quotes, err := f.Quotes(context.Background(), "spx", time.Unix(1690000000, 0), time.Unix(1700200000, 0))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Contains(t, gotQuery, "events=div")
	assert.Contains(t, gotQuery, "period1=1690000000")
	require.Len(t, quotes, 2)
	assert.Equal(t, 100.5, quotes[0].Close)
	assert.Equal(t, 101.25, quotes[1].Close)
	assert.True(t, quotes[0].Time.Before(quotes[1].Time))
}

func TestYahooDividendsFallsBackToKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher(Options{BaseURL: srv.URL, Client: srv.Client()})
	events, err := f.Dividends(context.Background(), "SCHD", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "1690000000", events[0].RawTimestamp)
	assert.Equal(t, 0.45, events[0].Amount)
	assert.Equal(t, 1700086400.0, events[1].RawTimestamp)
}

func TestYahooChartErrorIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher(Options{BaseURL: srv.URL, Client: srv.Client()})
	_, err := f.Quotes(context.Background(), "ZZZZ", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "SCHD", r.URL.Query().Get("symbol"))
		switch r.URL.Path {
		case "/api/v1/bars/daily":
			_, _ = w.Write([]byte(`[{"timestamp":1700086400,"close":75.2},{"timestamp":1700000000,"close":75.0},{"timestamp":1700172800,"close":0}]`))
		case "/api/v1/dividends":
			_, _ = w.Write([]byte(`[{"date":"2023-09-20","amount":0.66},{"date":1695168000,"amount":-1}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewRESTFetcher(Options{BaseURL: srv.URL, APIKey: "secret", Client: srv.Client()})
	ctx := context.Background()

	quotes, err := f.Quotes(ctx, "schd", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, 75.0, quotes[0].Close)

	events, err := f.Dividends(ctx, "schd", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2023-09-20", events[0].RawTimestamp)
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, model.ErrNotFound},
		{http.StatusInternalServerError, model.ErrUnavailable},
		{http.StatusUnauthorized, model.ErrUnavailable},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(strings.Repeat("x", 400)))
		}))
		f := NewRESTFetcher(Options{BaseURL: srv.URL, Client: srv.Client()})
		_, err := f.Quotes(context.Background(), "SCHD", time.Time{}, time.Time{})
		srv.Close()

		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.LessOrEqual(t, len(apiErr.Message), 259)
	}
}

func TestMalformedBodyIsInvalidShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(Options{BaseURL: srv.URL, Client: srv.Client()})
	_, err := f.Dividends(context.Background(), "SCHD", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, model.ErrInvalidShape)
}

func TestCancelledContextIsUnavailable(t *testing.T) {
	f := NewRESTFetcher(Options{BaseURL: "http://127.0.0.1:0", RateLimit: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Quotes(ctx, "SCHD", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, model.ErrUnavailable)
}
