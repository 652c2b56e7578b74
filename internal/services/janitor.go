package services

import (
	"context"
	"log/slog"
	"time"

	"rebuyrnot/internal/models"

	"gorm.io/gorm"
)

// RateLimitJanitor 定期清理窗口外的投票频率记录.
// TableLimiter only prunes a voter's rows when that voter comes back.
type RateLimitJanitor struct {
	db       *gorm.DB
	window   time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewRateLimitJanitor(db *gorm.DB, window, interval time.Duration) *RateLimitJanitor {
	return &RateLimitJanitor{db: db, window: window, interval: interval, now: time.Now}
}

// Run sweeps every interval until ctx is done.
func (j *RateLimitJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.Error("rate limit sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes attempts older than the window and returns how many went.
func (j *RateLimitJanitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.window)
	res := j.db.WithContext(ctx).Where("created_at <= ?", cutoff).Delete(&models.VoteRateLimit{})
	if res.Error != nil {
		return 0, backendErr("sweep rate limits", res.Error)
	}
	if res.RowsAffected > 0 {
		slog.Debug("rate limit rows swept", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
