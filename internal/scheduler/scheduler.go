package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/MHamoud95/Berlin-weather-pipeline/internal/weather"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context) (weather.Run, error)
}

// Stats summarises the runs triggered through a Scheduler.
type Stats struct {
	Succeeded int64        `json:"succeeded"`
	Failed    int64        `json:"failed"`
	LastRun   *weather.Run `json:"lastRun,omitempty"`
}

// Scheduler triggers pipeline runs on a cron schedule. Runs are not
// serialized: a manual trigger may overlap a scheduled one.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	runner     Runner
	schedule   string
	runTimeout time.Duration
	log        logrus.FieldLogger

	succeeded atomic.Int64
	failed    atomic.Int64
	lastRun   atomic.Value
}

// New creates a new Scheduler.
func New(schedule string, runTimeout time.Duration, runner Runner, log logrus.FieldLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		runner:     runner,
		schedule:   schedule,
		runTimeout: runTimeout,
		log:        log.WithField("component", "scheduler"),
	}
}

// Start registers the job and starts the underlying scheduler. Missed
// runs are not caught up; the first run happens at the next scheduled time.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Cron(s.schedule).Do(func() {
		s.log.Info("running scheduled weather run")
		// Trigger logs failures itself.
		_, _ = s.Trigger(context.Background())
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", s.schedule, err)
	}

	s.scheduler.StartAsync()
	s.log.WithField("schedule", s.schedule).Info("scheduler started")
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// NextRun reports when the scheduled job fires next.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Trigger performs one run bounded by the run timeout and records its outcome.
func (s *Scheduler) Trigger(ctx context.Context) (weather.Run, error) {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	run, err := s.runner.Run(ctx)
	if err != nil {
		s.failed.Inc()
		s.log.WithField("run_id", run.ID).WithError(err).Warn("weather run failed")
	} else {
		s.succeeded.Inc()
	}
	s.lastRun.Store(run)

	return run, err
}

// Stats returns counters for the runs triggered so far.
func (s *Scheduler) Stats() Stats {
	stats := Stats{
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
	}
	if run, ok := s.lastRun.Load().(weather.Run); ok {
		stats.LastRun = &run
	}
	return stats
}
