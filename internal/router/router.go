// Package router decides which backing store answers a profile lookup.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"

	"MarketLens/internal/model"
	"MarketLens/internal/store"
)

// DefaultTimeout bounds each downstream store call.
const DefaultTimeout = 5 * time.Second

// PrimaryStore is the preferred, pre-computed relational store.
type PrimaryStore interface {
	Tickers(ctx context.Context) ([]string, error)
	Profile(ctx context.Context, ticker string) (*model.Profile, error)
}

// SecondaryStore is the per-ticker fallback store.
type SecondaryStore interface {
	Profile(ctx context.Context, ticker string) (*store.FileProfile, error)
}

// Router resolves profiles from the primary store when it is preferred and
// known to hold the ticker, and from the secondary store otherwise.
// It never fabricates data.
type Router struct {
	primary   PrimaryStore
	secondary SecondaryStore
	timeout   time.Duration
	stateFile string

	// modeMu orders the mode swap with its write to stateFile.
	modeMu sync.Mutex
	state  atomic.Pointer[State]
}

// Option configures a Router.
type Option func(*Router)

// WithTimeout sets the per-call timeout for store lookups.
func WithTimeout(d time.Duration) Option {
	return func(r *Router) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithMode sets the initial mode. A persisted mode, if any, takes precedence.
func WithMode(m Mode) Option {
	return func(r *Router) {
		r.state.Store(r.state.Load().withMode(m))
	}
}

// WithStateFile persists operator mode changes to path and restores them on New.
func WithStateFile(path string) Option {
	return func(r *Router) { r.stateFile = path }
}

// New creates a Router in primary mode with an empty known-available set.
// Call Refresh to populate the set.
func New(primary PrimaryStore, secondary SecondaryStore, opts ...Option) *Router {
	r := &Router{primary: primary, secondary: secondary, timeout: DefaultTimeout}
	r.state.Store(&State{Mode: ModePrimary, known: map[string]struct{}{}})
	for _, opt := range opts {
		opt(r)
	}
	if r.stateFile != "" {
		m, err := loadMode(r.stateFile)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("file", r.stateFile).Msg("router state unreadable, keeping configured mode")
		case m != "":
			r.state.Store(r.state.Load().withMode(m))
		}
	}
	return r
}

// Snapshot returns the current state. The snapshot is immutable.
func (r *Router) Snapshot() *State { return r.state.Load() }

// IsPrimary reports whether the router currently prefers the primary store.
func (r *Router) IsPrimary() bool { return r.state.Load().Mode == ModePrimary }

// SetMode switches the preferred store. Lookups started after SetMode
// returns observe the new mode.
func (r *Router) SetMode(m Mode) error {
	if m != ModePrimary && m != ModeSecondary {
		return fmt.Errorf("unknown mode %q", m)
	}
	r.modeMu.Lock()
	defer r.modeMu.Unlock()

	r.update(func(s *State) *State { return s.withMode(m) })
	log.Info().Str("mode", string(m)).Msg("data source mode changed")

	if r.stateFile != "" {
		if err := saveMode(r.stateFile, m); err != nil {
			return fmt.Errorf("persist mode: %w", err)
		}
	}
	return nil
}

// Refresh re-enumerates the primary store's tickers and publishes them as
// the new known-available set in one swap.
func (r *Router) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tickers, err := r.primary.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("refresh known tickers: %w", err)
	}
	known := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		known[model.NormalizeTicker(t)] = struct{}{}
	}
	now := time.Now()
	r.update(func(s *State) *State { return s.withKnown(known, now) })
	log.Info().Int("tickers", len(known)).Msg("primary availability refreshed")
	return nil
}

// update applies fn to the current state until the swap succeeds, so a
// concurrent mode toggle and refresh never overwrite each other.
func (r *Router) update(fn func(*State) *State) {
	for {
		old := r.state.Load()
		if r.state.CompareAndSwap(old, fn(old)) {
			return
		}
	}
}

func (r *Router) forget(ticker string) {
	r.update(func(s *State) *State {
		if !s.Has(ticker) {
			return s
		}
		return s.without(ticker)
	})
}

// GetStockData returns the profile for ticker. The error wraps
// model.ErrNotFound when neither store has the ticker, and
// model.ErrUnavailable when a store could not be reached and the other had
// nothing to offer.
func (r *Router) GetStockData(ctx context.Context, ticker string) (*model.Profile, error) {
	ticker = model.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker: %w", model.ErrNotFound)
	}

	var primaryErr error
	snap := r.state.Load()
	if snap.Mode == ModePrimary && snap.Has(ticker) {
		p, err := r.fromPrimary(ctx, ticker)
		if err == nil {
			return p, nil
		}
		primaryErr = err
	}

	fp, err := r.fromSecondary(ctx, ticker)
	if err == nil {
		return fp.ToProfile(), nil
	}
	if model.IsAbsent(err) && errors.Is(primaryErr, model.ErrUnavailable) {
		return nil, primaryErr
	}
	return nil, err
}

func (r *Router) fromPrimary(ctx context.Context, ticker string) (*model.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	p, err := r.primary.Profile(ctx, ticker)
	switch {
	case err == nil:
		p.Source = model.SourcePrimary
		return p, nil
	case model.IsAbsent(err):
		// A miss in the primary store means the availability set was stale.
		r.forget(ticker)
		log.Debug().Str("ticker", ticker).Err(err).Msg("primary miss, falling back")
		return nil, err
	default:
		if !errors.Is(err, model.ErrUnavailable) {
			err = fmt.Errorf("primary %s: %w: %v", ticker, model.ErrUnavailable, err)
		}
		log.Warn().Str("ticker", ticker).Err(err).Msg("primary unavailable, falling back")
		return nil, err
	}
}

func (r *Router) fromSecondary(ctx context.Context, ticker string) (*store.FileProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fp, err := r.secondary.Profile(ctx, ticker)
	switch {
	case err == nil:
		return fp, nil
	case errors.Is(err, model.ErrInvalidShape):
		log.Warn().Str("ticker", ticker).Err(err).Msg("secondary profile rejected")
	case errors.Is(err, model.ErrNotFound):
		log.Debug().Str("ticker", ticker).Msg("no profile in secondary store")
	case !errors.Is(err, model.ErrUnavailable):
		err = fmt.Errorf("secondary %s: %w: %v", ticker, model.ErrUnavailable, err)
	}
	return nil, err
}
