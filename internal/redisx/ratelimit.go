package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per client id.
type RateLimiter struct {
	RDB    redis.Cmdable
	Max    int
	Window time.Duration
	Now    func() time.Time
}

func (l *RateLimiter) Allow(ctx context.Context, client string) (bool, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	window := l.Window
	if window <= 0 {
		window = time.Minute
	}
	k := fmt.Sprintf(KeyRateLimit, client, now().UnixNano()/int64(window))

	pipe := l.RDB.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.Max), nil
}
