package workers

import (
	"context"
	"time"

	"studyzone_backend/internal/logger"
)

const resetTokenWorkerName = "reset_token_sweeper"

// ResetTokenStore is the part of the user repository the sweeper needs.
type ResetTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ResetTokenWorker periodically drops reset windows that have expired, so a stored
// token hash never outlives its usefulness.
type ResetTokenWorker struct {
	store    ResetTokenStore
	interval time.Duration
	now      func() time.Time
}

func NewResetTokenWorker(store ResetTokenStore, interval time.Duration) *ResetTokenWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ResetTokenWorker{store: store, interval: interval, now: time.Now}
}

// Start runs the sweeper in the background until ctx is cancelled.
func (w *ResetTokenWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ResetTokenWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker stopped", "worker", resetTokenWorkerName)
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs one pass and returns how many windows were cleared.
func (w *ResetTokenWorker) Sweep(ctx context.Context) int64 {
	cleared, err := w.store.ClearExpiredResetTokens(ctx, w.now())
	if err != nil {
		logger.WorkerLog(resetTokenWorkerName, "clear_expired", err)
		return 0
	}
	if cleared > 0 {
		logger.WorkerLog(resetTokenWorkerName, "clear_expired", nil, "cleared", cleared)
	}
	return cleared
}
