package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Refresher re-enumerates which tickers the primary store can answer.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs the periodic availability refresh.
type Scheduler struct {
	Cron    *cron.Cron
	Router  Refresher
	Ctx     context.Context
	Timeout time.Duration

	runs     atomic.Int64
	failures atomic.Int64
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r Refresher, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Router:  r,
		Ctx:     ctx,
		Timeout: timeout,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RefreshNow runs the refresh task immediately (startup and the console's refresh command).
func (s *Scheduler) RefreshNow() error {
	return s.refresh()
}

// Stats reports how many refreshes ran and how many failed.
func (s *Scheduler) Stats() (runs, failures int64) {
	return s.runs.Load(), s.failures.Load()
}

func (s *Scheduler) refreshTask() {
	_ = s.refresh()
}

func (s *Scheduler) refresh() error {
	ctx, cancel := context.WithTimeout(s.Ctx, s.Timeout)
	defer cancel()

	s.runs.Add(1)
	start := time.Now()
	if err := s.Router.Refresh(ctx); err != nil {
		s.failures.Add(1)
		log.Error().Err(err).Msg("availability refresh failed")
		return err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Msg("availability refresh done")
	return nil
}
