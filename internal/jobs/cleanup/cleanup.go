package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job prunes aged purchase audit records. The audit trail is best-effort
// history, not a ledger, so dropping old rows is safe.
type Job struct {
	purchases purchasePruner
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

type purchasePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func New(purchases purchasePruner, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		purchases: purchases,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.purchases == nil {
		return nil
	}

	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.purchases.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune purchase records: %w", err)
	}
	if deleted > 0 {
		j.logger.Info("purchase record cleanup completed",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}

	return nil
}

// Start runs the job on a ticker until ctx is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("purchase record cleanup failed", zap.Error(err))
			}
		}
	}
}
