package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Job periodically deactivates blacklist entries whose end date has passed.
// Expiry is also checked at read time, the sweep only keeps the table tidy.
type Job struct {
	blacklist expiredBlacklistCleaner
	now       func() time.Time
	logger    *zap.Logger
}

type expiredBlacklistCleaner interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

func NewBlacklistExpiryJob(blacklist expiredBlacklistCleaner, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		blacklist: blacklist,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.blacklist == nil {
		return nil
	}

	rows, err := j.blacklist.DeactivateExpired(ctx, j.now())
	if err != nil {
		return fmt.Errorf("deactivate expired blacklist entries: %w", err)
	}
	if rows > 0 {
		j.logger.Info("expired blacklist entries deactivated", zap.Int64("count", rows))
	}

	return nil
}

// Start runs the sweep on a fixed interval until the context is cancelled.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("blacklist expiry sweep failed", zap.Error(err))
			}
		}
	}
}
