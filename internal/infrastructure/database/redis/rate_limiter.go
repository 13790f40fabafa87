// internal/infrastructure/database/redis/rate_limiter.go
package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimitResult is the outcome of one counted request
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	client *Client
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a limiter with the given window
func NewRateLimiter(client *Client, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		window: window,
		now:    time.Now,
	}
}

// Allow counts one request against key and reports whether it is within limit
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int) (*RateLimitResult, error) {
	now := l.now()
	windowStart := now.Truncate(l.window)
	redisKey := fmt.Sprintf("rate_limit:%s:%d", key, windowStart.Unix())

	pipe := l.client.Redis.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to count request: %w", err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   windowStart.Add(l.window),
	}, nil
}
