// Package scheduler runs periodic jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookshelf/internal/logger"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// ReconcileEnqueuer queues a shelf counter reconciliation. An empty owner means every owner.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, ownerID string) (string, error)
}

// ReconcileScheduler periodically enqueues the all-owners counter reconciliation.
type ReconcileScheduler struct {
	enqueuer ReconcileEnqueuer
	schedule string
	log      *logger.Logger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewReconcileScheduler creates a new scheduler instance.
func NewReconcileScheduler(enqueuer ReconcileEnqueuer, schedule string, log *logger.Logger) *ReconcileScheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ReconcileScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		log:      log.With("component", "reconcile_scheduler"),
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the job and stops it again when ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(context.Background()); err != nil {
			s.log.Error("scheduled reconciliation failed to enqueue", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	s.log.Info("reconcile scheduler started", "schedule", s.schedule, "next_run", s.cron.Entry(entryID).Next)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.log.Info("reconcile scheduler stopped")
}

// RunNow enqueues a reconciliation immediately and returns the task id.
func (s *ReconcileScheduler) RunNow(ctx context.Context) (string, error) {
	id, err := s.enqueuer.EnqueueReconcile(ctx, "")
	if err != nil {
		return "", err
	}
	s.log.Info("counter reconciliation enqueued", "task", id)
	return id, nil
}

func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the next scheduled run, or the zero time when stopped.
func (s *ReconcileScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
