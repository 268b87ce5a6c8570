// Package scheduler repeats the pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"EHR999/internal/config"
	"EHR999/internal/report"
)

// Job is one pipeline pass.
type Job interface {
	Run(ctx context.Context) (*report.Snapshot, error)
}

// Scheduler manages the cron entry driving the pipeline.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Ctx  context.Context

	running sync.Mutex
}

// cronLogger routes cron's internal messages through zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// NewScheduler creates a Scheduler. Overlapping runs are skipped.
func NewScheduler(ctx context.Context, job Job) *Scheduler {
	var l cron.Logger = cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithParser(cron.NewParser(config.CronSpec)),
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		Job: job,
		Ctx: ctx,
	}
}

// Register adds the pipeline job under spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register pipeline task: %w", err)
	}
	log.Info().Str("cron", spec).Msg("pipeline task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.running.Lock()
	defer s.running.Unlock()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the pipeline once unless a run is already in progress.
// Failures are logged by the job and the schedule continues.
func (s *Scheduler) RunNow() {
	if s.Ctx.Err() != nil {
		return
	}
	if !s.running.TryLock() {
		log.Warn().Msg("previous run still in progress, skipping")
		return
	}
	defer s.running.Unlock()
	_, _ = s.Job.Run(s.Ctx)
}
