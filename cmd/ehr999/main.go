package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"EHR999/internal/collector"
	"EHR999/internal/config"
	"EHR999/internal/logging"
	"EHR999/internal/metrics"
	"EHR999/internal/report"
	"EHR999/internal/runner"
	"EHR999/internal/scheduler"
)

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
	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatal().Err(err).Msg("init logging")
	}
	log.Info().Str("symbol", cfg.DataSource.Symbol).Msg("EHR999 starting")

	start, err := cfg.StartTime()
	if err != nil {
		log.Fatal().Err(err).Msg("parse start date")
	}

	fetcher := collector.NewBinanceFetcher(collector.BinanceOptions{
		BaseURL:           cfg.DataSource.BaseURL,
		Proxy:             cfg.Proxy,
		Timeout:           cfg.DataSource.Timeout,
		RequestsPerSecond: cfg.DataSource.RequestsPerSecond,
		MaxRetries:        cfg.DataSource.MaxRetries,
	})
	log.Info().Str("source", fetcher.Name()).Str("base_url", cfg.DataSource.BaseURL).Msg("data source ready")

	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Interval, cfg.DataSource.Limit, start)
	em := report.NewEmitter(cfg.Report.OutputPath)
	rec := metrics.NewRecorder(cfg.Metrics.TextfilePath, cfg.DataSource.Symbol)
	run := runner.New(cfg.DataSource.Symbol, col, em, rec)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.Scheduled() {
		// A failed run has already been logged; the process still exits cleanly.
		_, _ = run.Run(ctx)
		return
	}

	sched := scheduler.NewScheduler(ctx, run)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()

	if *cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing pipeline now")
		go sched.RunNow()
	}

	log.Info().Msg("EHR999 is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping...")
	sched.Stop()
	log.Info().Msg("EHR999 stopped")
}
