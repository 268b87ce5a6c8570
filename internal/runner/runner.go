// Package runner executes one acquire, compute, classify and emit pass.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"EHR999/internal/calculator"
	"EHR999/internal/collector"
	"EHR999/internal/metrics"
	"EHR999/internal/report"
	"EHR999/internal/strategy"
)

// Collector acquires the full series for one symbol.
type Collector interface {
	Collect(ctx context.Context) (*collector.Acquisition, error)
}

// Emitter writes the report artifact.
type Emitter interface {
	Emit(snap *report.Snapshot) (string, error)
}

// Runner wires the pipeline stages together.
type Runner struct {
	Symbol    string
	Collector Collector
	Emitter   Emitter
	Metrics   *metrics.Recorder
	Out       io.Writer
}

// New creates a Runner printing its summary to stdout.
func New(symbol string, col Collector, em Emitter, rec *metrics.Recorder) *Runner {
	return &Runner{
		Symbol:    symbol,
		Collector: col,
		Emitter:   em,
		Metrics:   rec,
		Out:       os.Stdout,
	}
}

// Run executes the pipeline once. Every error is terminal; no report is written on failure.
func (r *Runner) Run(ctx context.Context) (*report.Snapshot, error) {
	started := time.Now()
	logger := log.With().Str("run_id", uuid.NewString()).Str("symbol", r.Symbol).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Msg("run started")
	snap, err := r.run(ctx)
	took := time.Since(started)

	if err != nil {
		r.Metrics.ObserveFailure(took)
		logger.Error().Err(err).Dur("took", took).Msg("run failed, no report written")
	} else {
		r.Metrics.ObserveSuccess(snap.LatestValue, snap.Band.Index, snap.LatestClose, snap.Bars, took)
		logger.Info().Float64("ehr999", snap.LatestValue).Str("band", snap.Band.Label).
			Dur("took", took).Msg("run finished")
	}
	if ferr := r.Metrics.Flush(); ferr != nil {
		logger.Warn().Err(ferr).Msg("write metrics textfile")
	}
	return snap, err
}

func (r *Runner) run(ctx context.Context) (*report.Snapshot, error) {
	logger := log.Ctx(ctx)

	acq, err := r.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	r.Metrics.ObservePages(acq.Pages)

	points, windows, err := calculator.ComputeEHR(acq.Series)
	if err != nil {
		return nil, fmt.Errorf("compute EHR999: %w", err)
	}
	logger.Info().Int("short_window", windows.Short).Int("long_window", windows.Long).
		Int("points", len(points)).Msg("EHR999 computed")

	latest := points[len(points)-1]
	band, err := strategy.Classify(latest.Value)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	first, last := acq.Series.Span()
	snap := &report.Snapshot{
		Symbol:      r.Symbol,
		Points:      points,
		Windows:     windows,
		Bars:        len(acq.Series),
		Band:        band,
		LatestClose: latest.Close,
		LatestValue: latest.Value,
		LatestTime:  latest.Time,
		From:        first,
		To:          last,
		GeneratedAt: time.Now(),
	}

	path, err := r.Emitter.Emit(snap)
	if err != nil {
		return nil, fmt.Errorf("emit report: %w", err)
	}
	logger.Info().Str("path", path).Msg("report written")

	if r.Out != nil {
		fmt.Fprint(r.Out, report.FormatSummary(snap))
	}
	return snap, nil
}
