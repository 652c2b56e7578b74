package services

import (
	"context"
	"fmt"
	"time"

	"rebuyrnot/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RateLimiter records one attempt for key and reports whether it is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NoopLimiter allows everything. Used when VOTE_RATE_LIMIT <= 0.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// TableLimiter keeps attempts in vote_rate_limits and counts them over a sliding window.
type TableLimiter struct {
	db     *gorm.DB
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewTableLimiter(db *gorm.DB, limit int, window time.Duration) *TableLimiter {
	return &TableLimiter{db: db, limit: limit, window: window, now: time.Now}
}

func (l *TableLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	windowStart := now.Add(-l.window)
	allowed := false

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 顺手清理窗口外的旧记录
		if err := tx.Where("voter_id = ? AND created_at <= ?", key, windowStart).
			Delete(&models.VoteRateLimit{}).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.VoteRateLimit{}).
			Where("voter_id = ? AND created_at > ?", key, windowStart).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(l.limit) {
			return nil
		}

		allowed = true
		return tx.Create(&models.VoteRateLimit{VoterID: key, CreatedAt: now}).Error
	})
	if err != nil {
		return false, backendErr("rate limit", err)
	}
	return allowed, nil
}

// slidingWindowScript trims the window, counts it and records the attempt
// atomically. Returns 1 when allowed, 0 otherwise.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	if current >= limit then
		return 0
	end

	local counter = redis.call('INCR', key .. ':seq')
	redis.call('ZADD', key, now, now .. ':' .. counter)
	local ttl = math.ceil(window_ms / 1000)
	redis.call('EXPIRE', key, ttl)
	redis.call('EXPIRE', key .. ':seq', ttl)
	return 1
`)

// RedisLimiter shares the sliding window across instances through Redis sorted sets.
type RedisLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewRedisLimiter(client *redis.Client, keyPrefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, keyPrefix: keyPrefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.keyPrefix + key},
		now.UnixMilli(), now.Add(-l.window).UnixMilli(), l.limit, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, backendErr("rate limit", fmt.Errorf("redis script: %w", err))
	}
	return res == 1, nil
}

// Reset clears the window for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.keyPrefix+key, l.keyPrefix+key+":seq").Err()
}
