package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"MarketLens/internal/model"
	"MarketLens/internal/timestamp"
)

// SQLite is the primary relational store.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// SeriesRow is the raw (dates, prices) pair stored for one ticker and period.
// Either column may be nil when the stored value is NULL.
type SeriesRow struct {
	Dates  []byte
	Prices []byte
}

// OpenSQLite opens (or creates) the SQLite database and runs migrations.
func OpenSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so readers are not blocked by the pre-computation writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite store opened")
	return s, nil
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS stock_profiles (
			ticker         TEXT PRIMARY KEY,
			name           TEXT,
			sector         TEXT,
			industry       TEXT,
			description    TEXT,
			price          REAL,
			change         REAL,
			change_percent REAL,
			market_cap     REAL,
			volume         REAL,
			pe_ratio       REAL,
			dividend_yield REAL,
			profit_margin  REAL,
			beta           REAL,
			high_52w       REAL,
			low_52w        REAL,
			updated_at     INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS period_series (
			ticker TEXT NOT NULL,
			period TEXT NOT NULL,
			dates  TEXT,
			prices TEXT,
			PRIMARY KEY (ticker, period)
		)`,

		`CREATE TABLE IF NOT EXISTS stock_history (
			ticker        TEXT PRIMARY KEY,
			dividends     TEXT,
			price_history TEXT
		)`,
	}

	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return fmt.Errorf("exec %q: %w", st[:40], err)
		}
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("sqlite %s: %w: %v", op, model.ErrUnavailable, err)
}

// Tickers enumerates every ticker with a profile in the store.
func (s *SQLite) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ticker FROM stock_profiles ORDER BY ticker`)
	if err != nil {
		return nil, unavailable("tickers", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, unavailable("tickers scan", err)
		}
		tickers = append(tickers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("tickers", err)
	}
	return tickers, nil
}

// Profile returns the stored profile for ticker.
func (s *SQLite) Profile(ctx context.Context, ticker string) (*model.Profile, error) {
	ticker = model.NormalizeTicker(ticker)
	var (
		p                             model.Profile
		name, sector, industry, descr sql.NullString
		updated                       sql.NullInt64
		nums                          [11]sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `SELECT ticker, name, sector, industry, description,
		price, change, change_percent, market_cap, volume, pe_ratio, dividend_yield,
		profit_margin, beta, high_52w, low_52w, updated_at
		FROM stock_profiles WHERE ticker = ?`, ticker).Scan(
		&p.Ticker, &name, &sector, &industry, &descr,
		&nums[0], &nums[1], &nums[2], &nums[3], &nums[4], &nums[5], &nums[6],
		&nums[7], &nums[8], &nums[9], &nums[10], &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite profile %s: %w", ticker, model.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("profile", err)
	}

	p.Name, p.Sector, p.Industry, p.Description = name.String, sector.String, industry.String, descr.String
	p.Price = nums[0].Float64
	p.Change = nums[1].Float64
	p.ChangePercent = nums[2].Float64
	p.MarketCap = nums[3].Float64
	p.Volume = nums[4].Float64
	p.PERatio = nums[5].Float64
	p.DividendYield = nums[6].Float64
	p.ProfitMargin = nums[7].Float64
	p.Beta = nums[8].Float64
	p.High52w = nums[9].Float64
	p.Low52w = nums[10].Float64
	if updated.Valid {
		p.UpdatedAt = time.Unix(updated.Int64, 0).UTC()
	}
	p.Source = model.SourcePrimary
	return &p, nil
}

// SaveProfile inserts or replaces a profile. The pre-computation job owns
// the table; this is for seeding and test fixtures.
func (s *SQLite) SaveProfile(ctx context.Context, p *model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO stock_profiles
		(ticker, name, sector, industry, description,
		 price, change, change_percent, market_cap, volume, pe_ratio, dividend_yield,
		 profit_margin, beta, high_52w, low_52w, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		model.NormalizeTicker(p.Ticker), p.Name, p.Sector, p.Industry, p.Description,
		p.Price, p.Change, p.ChangePercent, p.MarketCap, p.Volume, p.PERatio, p.DividendYield,
		p.ProfitMargin, p.Beta, p.High52w, p.Low52w, updated.Unix(),
	)
	return err
}

// SeriesRow returns the raw series columns for (ticker, lower(period)).
func (s *SQLite) SeriesRow(ctx context.Context, ticker, period string) (*SeriesRow, error) {
	var dates, prices sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT dates, prices FROM period_series WHERE ticker = ? AND period = lower(?)`,
		model.NormalizeTicker(ticker), period,
	).Scan(&dates, &prices)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite series %s/%s: %w", ticker, period, model.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("series", err)
	}
	row := &SeriesRow{}
	if dates.Valid {
		row.Dates = []byte(dates.String)
	}
	if prices.Valid {
		row.Prices = []byte(prices.String)
	}
	return row, nil
}

// SaveSeries stores the JSON encoding of dates and prices for (ticker, lower(period)).
// Used for seeding and test fixtures.
func (s *SQLite) SaveSeries(ctx context.Context, ticker, period string, dates, prices any) error {
	d, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("marshal dates: %w", err)
	}
	p, err := json.Marshal(prices)
	if err != nil {
		return fmt.Errorf("marshal prices: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO period_series (ticker, period, dates, prices)
		VALUES (?, lower(?), ?, ?)`, model.NormalizeTicker(ticker), period, string(d), string(p))
	return err
}

// SaveHistory stores the dividend events and the raw price history for a ticker.
// priceHistory is stored verbatim and may be columnar or an array of objects.
// Used for seeding and test fixtures.
func (s *SQLite) SaveHistory(ctx context.Context, ticker string, dividends []model.DividendEvent, priceHistory json.RawMessage) error {
	d, err := json.Marshal(dividends)
	if err != nil {
		return fmt.Errorf("marshal dividends: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO stock_history (ticker, dividends, price_history)
		VALUES (?, ?, ?)`, model.NormalizeTicker(ticker), string(d), string(priceHistory))
	return err
}

func (s *SQLite) history(ctx context.Context, ticker, column string) ([]byte, error) {
	var v sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT `+column+` FROM stock_history WHERE ticker = ?`, model.NormalizeTicker(ticker)).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) || err == nil && !v.Valid {
		return nil, fmt.Errorf("sqlite %s %s: %w", column, ticker, model.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable(column, err)
	}
	return []byte(v.String), nil
}

// Dividends returns the raw dividend events stored for ticker. The range is
// not applied: raw timestamps are only resolved by the caller.
func (s *SQLite) Dividends(ctx context.Context, ticker string, _, _ time.Time) ([]model.DividendEvent, error) {
	raw, err := s.history(ctx, ticker, "dividends")
	if err != nil {
		return nil, err
	}
	var events []model.DividendEvent
	if err := json.Unmarshal(Sanitize(raw), &events); err != nil {
		return nil, fmt.Errorf("sqlite dividends %s: %w: %v", ticker, model.ErrInvalidShape, err)
	}
	out := events[:0]
	for _, e := range events {
		if e.Amount >= 0 {
			out = append(out, e)
		}
	}
	return out, nil
}

// Quotes decodes the raw price-history column and returns the quotes in [from, to].
func (s *SQLite) Quotes(ctx context.Context, ticker string, from, to time.Time) ([]model.Quote, error) {
	raw, err := s.history(ctx, ticker, "price_history")
	if err != nil {
		return nil, err
	}
	quotes, err := DecodeQuotes(raw)
	if err != nil {
		return nil, fmt.Errorf("sqlite price history %s: %w", ticker, err)
	}
	return clip(quotes, from, to), nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	log.Info().Msg("closing sqlite store")
	return s.db.Close()
}

// DecodeQuotes accepts either a columnar document
// ({"dates": [...], "close": [...]}) or an array of {"date", "close"} objects
// and returns chronologically ordered quotes. Entries whose date or price
// cannot be resolved are skipped.
func DecodeQuotes(raw []byte) ([]model.Quote, error) {
	raw = Sanitize(raw)

	var rows []struct {
		Date  any `json:"date"`
		Close any `json:"close"`
	}
	if err := json.Unmarshal(raw, &rows); err == nil {
		quotes := make([]model.Quote, 0, len(rows))
		for _, r := range rows {
			if q, ok := quoteOf(r.Date, r.Close); ok {
				quotes = append(quotes, q)
			}
		}
		return sorted(quotes), nil
	}

	var cols struct {
		Dates  []any `json:"dates"`
		Close  []any `json:"close"`
		Prices []any `json:"prices"`
	}
	if err := json.Unmarshal(raw, &cols); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidShape, err)
	}
	closes := cols.Close
	if closes == nil {
		closes = cols.Prices
	}
	if len(cols.Dates) != len(closes) {
		return nil, fmt.Errorf("%w: %d dates, %d prices", model.ErrInvalidShape, len(cols.Dates), len(closes))
	}
	quotes := make([]model.Quote, 0, len(closes))
	for i := range closes {
		if q, ok := quoteOf(cols.Dates[i], closes[i]); ok {
			quotes = append(quotes, q)
		}
	}
	return sorted(quotes), nil
}

func quoteOf(date, price any) (model.Quote, bool) {
	t, ok := timestamp.Default.Resolve(date)
	if !ok {
		return model.Quote{}, false
	}
	c, ok := toFloat(price)
	if !ok || c <= 0 {
		return model.Quote{}, false
	}
	return model.Quote{Time: t, Close: c}, true
}

func sorted(q []model.Quote) []model.Quote {
	sort.Slice(q, func(i, j int) bool { return q[i].Time.Before(q[j].Time) })
	return q
}

func clip(q []model.Quote, from, to time.Time) []model.Quote {
	out := q[:0:0]
	for _, x := range q {
		if !from.IsZero() && x.Time.Before(from) {
			continue
		}
		if !to.IsZero() && x.Time.After(to) {
			continue
		}
		out = append(out, x)
	}
	return out
}
