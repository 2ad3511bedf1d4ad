package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookshelf/internal/library"
	"github.com/mrlokans/bookshelf/internal/logger"
)

// CounterReconciler recomputes shelf counters from the shelf entries.
type CounterReconciler interface {
	ReconcileCounters(ctx context.Context, ownerID string) ([]library.CounterDrift, error)
}

// ReconcileShelfCountersTask reconciles the counters of one owner, or every owner when OwnerID is empty.
type ReconcileShelfCountersTask struct {
	OwnerID string `json:"owner_id,omitempty"`
}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileShelfCountersTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_shelf_counters",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileShelfCountersProcessor creates a processor function for ReconcileShelfCountersTask.
func ReconcileShelfCountersProcessor(reconciler CounterReconciler, log *logger.Logger) backlite.QueueProcessor[ReconcileShelfCountersTask] {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx context.Context, task ReconcileShelfCountersTask) error {
		if reconciler == nil {
			return fmt.Errorf("counter reconciler not configured")
		}

		drifts, err := reconciler.ReconcileCounters(ctx, task.OwnerID)
		if err != nil {
			return fmt.Errorf("reconcile shelf counters: %w", err)
		}

		for _, d := range drifts {
			log.Warn("shelf counter drift corrected", "owner", d.OwnerID, "shelf", d.Shelf, "stored", d.Stored, "actual", d.Actual)
		}
		return nil
	}
}

// NewReconcileShelfCountersQueue creates a backlite queue for reconciliation tasks.
func NewReconcileShelfCountersQueue(reconciler CounterReconciler, log *logger.Logger) backlite.Queue {
	return backlite.NewQueue(ReconcileShelfCountersProcessor(reconciler, log))
}
