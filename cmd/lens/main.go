package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phuslu/log"

	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/console"
	"MarketLens/internal/dividend"
	"MarketLens/internal/router"
	"MarketLens/internal/scheduler"
	"MarketLens/internal/series"
	"MarketLens/internal/store"
)

// primaryStore is what the SQLite database and its no-op stand-in both provide.
type primaryStore interface {
	router.PrimaryStore
	series.RowReader
	dividend.Source
	Close() error
}

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	log.DefaultLogger = log.Logger{
		Level:  log.ParseLevel(cfg.LogLevel),
		Caller: 1,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}
	log.Info().Str("config", cfgPath).Msg("MarketLens starting...")

	// Init primary store
	var primary primaryStore
	if cfg.Database.SQLitePath != "" {
		db, err := store.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("open sqlite store failed, serving secondary only")
			primary = store.NewNoop()
		} else {
			primary = db
		}
	} else {
		primary = store.NewNoop()
	}
	defer primary.Close()

	secondary := store.NewFileStore(cfg.Secondary.Dir)

	// Init market-data source
	var source dividend.Source
	opts := collector.Options{
		BaseURL:   cfg.DataSource.BaseURL,
		APIKey:    cfg.DataSource.APIKey,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.DataSource.Timeout,
		RateLimit: cfg.DataSource.RateLimit,
	}
	switch cfg.DataSource.Provider {
	case config.ProviderREST:
		source = collector.NewRESTFetcher(opts)
	case config.ProviderPrimary:
		source = primary
	default:
		source = collector.NewYahooFetcher(opts)
	}
	log.Info().Str("provider", cfg.DataSource.Provider).Msg("data source selected")

	mode, err := router.ParseMode(cfg.Router.Mode)
	if err != nil {
		log.Fatal().Err(err).Msg("router mode")
	}
	rt := router.New(primary, secondary,
		router.WithMode(mode),
		router.WithTimeout(cfg.Router.Timeout),
		router.WithStateFile(cfg.Router.StateFile),
	)
	ss := series.New(primary, cfg.Series.Timeout)
	agg := dividend.New(source, dividend.WithTimeout(cfg.Compare.Timeout))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, rt, cfg.Router.Timeout)
	if err := sched.RefreshNow(); err != nil {
		log.Warn().Err(err).Msg("initial availability refresh failed")
	}

	con := console.New(rt, ss, agg, sched, cfg.Benchmark)

	// One-shot: run the command given on the command line and exit.
	if len(os.Args) > 1 {
		fmt.Println(con.HandleCommand(ctx, strings.Join(os.Args[1:], " ")))
		return
	}

	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	done := make(chan struct{})
	go func() {
		err := con.Run(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, io.EOF) {
			log.Info().Msg("console input closed, running scheduler only")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("console input")
		}
		close(done)
	}()

	log.Info().Msg("MarketLens is running. Type help, or press Ctrl+C to stop.")

	// Wait for shutdown signal or quit
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-done:
	}
	cancel()
	log.Info().Msg("MarketLens stopped")
}
