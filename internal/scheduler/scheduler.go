// Package scheduler runs periodic cache maintenance.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/metrics"
)

// DefaultSweepSchedule runs the sweep every ten minutes.
const DefaultSweepSchedule = "@every 10m"

// CacheMaintainer is the cache surface the sweep job needs.
type CacheMaintainer interface {
	Sweep(ctx context.Context) (int64, error)
	Stats() (hits, misses uint64, ratio float64)
}

// Scheduler manages scheduled cache jobs
type Scheduler struct {
	cron      *cron.Cron
	cache     CacheMaintainer
	logger    *logrus.Entry
	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
	timeout   time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(cache CacheMaintainer, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		cache:   cache,
		logger:  logger.WithField("component", "scheduler"),
		jobIDs:  make([]cron.EntryID, 0),
		timeout: time.Minute,
	}
}

// ScheduleCacheSweep schedules removal of expired secondary cache entries.
// Each run also publishes the current hit ratio.
func (s *Scheduler) ScheduleCacheSweep(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if cronExpression == "" {
		cronExpression = DefaultSweepSchedule
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled cache sweep")
	return nil
}

// RunSweep performs one sweep immediately and returns the number of rows removed.
func (s *Scheduler) RunSweep(ctx context.Context) int64 {
	removed, err := s.cache.Sweep(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Cache sweep failed")
	}

	hits, misses, ratio := s.cache.Stats()
	metrics.UpdateCacheHitRatio(ratio)

	s.logger.WithFields(logrus.Fields{
		"removed":   removed,
		"hits":      hits,
		"misses":    misses,
		"hit_ratio": ratio,
	}).Debug("Cache sweep completed")
	return removed
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

// Stop waits for running jobs and stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
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

	if !s.isRunning {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}
