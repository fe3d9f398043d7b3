package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// RedisLimiter shares counters between instances: INCR the key and set the
// expiry on the first hit of a window.
type RedisLimiter struct {
	client redisCounter
	prefix string
	limit  int
	period time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client redisCounter, prefix string, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		period: period,
		now:    time.Now,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := "rate_limit:" + r.prefix + ":" + key

	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr: %w", err)
	}

	ttl := r.period
	if count == 1 {
		if err := r.client.PExpire(ctx, k, r.period).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: expire: %w", err)
		}
	} else if left, err := r.client.PTTL(ctx, k).Result(); err == nil && left > 0 {
		ttl = left
	} else if err == nil && left < 0 {
		// key lost its expiry, start a new window
		_ = r.client.PExpire(ctx, k, r.period).Err()
	}

	return decide(count, r.limit, r.now().Add(ttl)), nil
}
