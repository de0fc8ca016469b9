package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MarketLens/internal/model"
)

// FileProfile is the native shape of a secondary-store profile blob.
type FileProfile struct {
	Symbol             string    `json:"symbol"`
	CompanyName        string    `json:"companyName"`
	Sector             string    `json:"sector"`
	Industry           string    `json:"industry"`
	Description        string    `json:"description"`
	CurrentPrice       flexFloat `json:"currentPrice"`
	PriceChange        flexFloat `json:"priceChange"`
	PriceChangePercent flexFloat `json:"priceChangePercent"`
	MarketCap          flexFloat `json:"marketCap"`
	Volume             flexFloat `json:"volume"`
	PERatio            flexFloat `json:"peRatio"`
	DividendYield      flexFloat `json:"dividendYield"`
	ProfitMargins      flexFloat `json:"profitMargins"`
	Beta               flexFloat `json:"beta"`
	FiftyTwoWeekHigh   flexFloat `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    flexFloat `json:"fiftyTwoWeekLow"`
	LastUpdated        string    `json:"lastUpdated"`
}

// FileStore is the secondary store: one JSON blob per ticker in a directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(ticker string) (string, error) {
	ticker = model.NormalizeTicker(ticker)
	if ticker == "" || strings.ContainsAny(ticker, `/\`) || strings.Contains(ticker, "..") {
		return "", fmt.Errorf("file store: bad ticker %q: %w", ticker, model.ErrNotFound)
	}
	return filepath.Join(s.Dir, ticker+".json"), nil
}

// Profile reads and sanitizes the blob for ticker.
func (s *FileStore) Profile(ctx context.Context, ticker string) (*FileProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("file store: %w: %v", model.ErrUnavailable, err)
	}
	p, err := s.path(ticker)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file store %s: %w", model.NormalizeTicker(ticker), model.ErrNotFound)
		}
		return nil, fmt.Errorf("file store read: %w: %v", model.ErrUnavailable, err)
	}
	clean := bytes.TrimSpace(Sanitize(data))
	if len(clean) == 0 || clean[0] != '{' {
		return nil, fmt.Errorf("file store %s: %w: not a JSON object", model.NormalizeTicker(ticker), model.ErrInvalidShape)
	}
	var fp FileProfile
	if err := json.Unmarshal(clean, &fp); err != nil {
		return nil, fmt.Errorf("file store %s: %w: %v", model.NormalizeTicker(ticker), model.ErrInvalidShape, err)
	}
	if fp.empty() {
		return nil, fmt.Errorf("file store %s: %w: no profile fields set", model.NormalizeTicker(ticker), model.ErrInvalidShape)
	}
	if fp.Symbol == "" {
		fp.Symbol = model.NormalizeTicker(ticker)
	}
	return &fp, nil
}

// empty reports whether the blob carries neither a name nor any figure.
func (fp *FileProfile) empty() bool {
	if fp.CompanyName != "" {
		return false
	}
	for _, v := range []flexFloat{
		fp.CurrentPrice, fp.PriceChange, fp.PriceChangePercent, fp.MarketCap, fp.Volume, fp.PERatio,
		fp.DividendYield, fp.ProfitMargins, fp.Beta, fp.FiftyTwoWeekHigh, fp.FiftyTwoWeekLow,
	} {
		if v != 0 {
			return false
		}
	}
	return true
}

// SaveProfile writes a blob for fp.Symbol. Used to seed the directory and by test fixtures.
func (s *FileStore) SaveProfile(fp *FileProfile) error {
	p, err := s.path(fp.Symbol)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// ToProfile maps the native blob field by field onto the canonical profile.
func (fp *FileProfile) ToProfile() *model.Profile {
	p := &model.Profile{
		Ticker:        model.NormalizeTicker(fp.Symbol),
		Name:          fp.CompanyName,
		Sector:        fp.Sector,
		Industry:      fp.Industry,
		Description:   fp.Description,
		Price:         float64(fp.CurrentPrice),
		Change:        float64(fp.PriceChange),
		ChangePercent: float64(fp.PriceChangePercent),
		MarketCap:     float64(fp.MarketCap),
		Volume:        float64(fp.Volume),
		PERatio:       float64(fp.PERatio),
		DividendYield: float64(fp.DividendYield),
		ProfitMargin:  float64(fp.ProfitMargins),
		Beta:          float64(fp.Beta),
		High52w:       float64(fp.FiftyTwoWeekHigh),
		Low52w:        float64(fp.FiftyTwoWeekLow),
		Source:        model.SourceSecondary,
	}
	if fp.LastUpdated != "" {
		if t, err := time.Parse(time.RFC3339, fp.LastUpdated); err == nil {
			p.UpdatedAt = t
		}
	}
	return p
}
