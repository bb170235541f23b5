// Package scheduler runs the engine's periodic jobs on cron expressions.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/linemonitor"
	"github.com/yourusername/matchup-engine/internal/metrics"
)

// Job names
const (
	JobLineMonitor    = "line_monitor"
	JobRatingsRefresh = "ratings_refresh"
)

// Sweeper runs one line movement sweep.
type Sweeper interface {
	MonitorOddsMovement(ctx context.Context, sports []string, th linemonitor.Thresholds) (linemonitor.MonitoringResult, error)
}

// Refresher reloads cached opponent ratings.
type Refresher interface {
	Run(ctx context.Context) error
}

// Scheduler manages scheduled engine jobs
type Scheduler struct {
	cron            *cron.Cron
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          map[string]cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:          logger,
		jobIDs:          make(map[string]cron.EntryID),
		gracefulTimeout: 30 * time.Second,
	}
}

// ValidateExpression reports whether expr parses as a standard cron spec or
// descriptor such as "@every 5m".
func ValidateExpression(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// ScheduleLineMonitor schedules line movement sweeps over sports.
func (s *Scheduler) ScheduleLineMonitor(cronExpression string, sweeper Sweeper, sports []string, th linemonitor.Thresholds, timeout time.Duration) error {
	return s.addJob(JobLineMonitor, cronExpression, timeout, func(ctx context.Context) error {
		result, err := sweeper.MonitorOddsMovement(ctx, sports, th)
		if err != nil {
			return err
		}
		if len(result.Errors) > 0 && len(result.Errors) >= len(sports) {
			return fmt.Errorf("every sport failed (%d errors)", len(result.Errors))
		}
		return nil
	})
}

// ScheduleRatingsRefresh schedules opponent rating cache refreshes.
func (s *Scheduler) ScheduleRatingsRefresh(cronExpression string, refresher Refresher, timeout time.Duration) error {
	return s.addJob(JobRatingsRefresh, cronExpression, timeout, refresher.Run)
}

func (s *Scheduler) addJob(name, cronExpression string, timeout time.Duration, run func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobIDs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.runJob(ctx, name, run)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobIDs[name] = entryID
	s.logger.WithFields(logrus.Fields{"job": name, "schedule": cronExpression}).Info("Scheduled job")
	return nil
}

func (s *Scheduler) runJob(ctx context.Context, name string, run func(context.Context) error) {
	start := time.Now()
	log := s.logger.WithField("job", name)
	if err := run(ctx); err != nil {
		metrics.RecordScheduledJob(name, "failure")
		log.WithError(err).Error("Scheduled job failed")
		return
	}
	metrics.RecordScheduledJob(name, "success")
	log.WithField("duration", time.Since(start)).Debug("Scheduled job completed")
}

// RunNow executes a scheduled job immediately, outside the cron cadence.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	id, ok := s.jobIDs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %s not scheduled", name)
	}
	entry := s.cron.Entry(id)
	if !entry.Valid() {
		return fmt.Errorf("job %s has no valid entry", name)
	}
	done := make(chan struct{})
	go func() {
		entry.Job.Run()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting up to the graceful timeout
// for running jobs.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
