package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nanna-memorial/backend/pkg/queue"
)

// Reconciler periodically re-enqueues gallery videos stuck in processing,
// covering lost jobs and worker downtime. Re-enqueueing an already
// published record is harmless: the publisher skips processed records.
type Reconciler struct {
	store    Store
	queue    JobQueue
	interval time.Duration
	minAge   time.Duration
	logger   *zap.Logger
}

// NewReconciler creates a reconciler. interval and minAge guard how often
// the scan runs and how old a processing record must be before it is
// considered stuck.
func NewReconciler(store Store, q JobQueue, interval, minAge time.Duration, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, queue: q, interval: interval, minAge: minAge, logger: logger}
}

// Run scans on the configured interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopping")
			return
		case <-ticker.C:
			if err := r.Reconcile(ctx); err != nil {
				r.logger.Warn("reconcile pass failed", zap.Error(err))
			}
		}
	}
}

// Reconcile runs one scan pass.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	cutoff := time.Now().Add(-r.minAge)
	stuck, err := r.store.ListProcessingBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	for _, record := range stuck {
		if record.StorageKey == "" {
			continue
		}
		err := r.queue.EnqueueVideoPublish(ctx, queue.VideoPublishPayload{
			ContentID:  record.ID,
			StorageKey: record.StorageKey,
		})
		if err != nil {
			return err
		}
		r.logger.Info("re-enqueued stuck video", zap.String("id", record.ID), zap.String("key", record.StorageKey))
	}
	return nil
}
