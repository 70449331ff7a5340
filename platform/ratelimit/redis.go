package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Limiter backed by a shared Redis instance, so the window is
// enforced consistently across replicas. INCR is atomic in Redis, which
// gives the required increment-and-compare semantics without a lock.
type Redis struct {
	client *redis.Client
	limit  int
	period time.Duration
	prefix string
}

// NewRedis creates a Redis-backed limiter allowing limit requests per period.
func NewRedis(client *redis.Client, limit int, period time.Duration) *Redis {
	return &Redis{
		client: client,
		limit:  limit,
		period: period,
		prefix: "ratelimit:",
	}
}

// Allow increments the counter for key and reports whether the request fits
// within the window. The key expires with the window, resetting the bucket.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr %s: %w", key, err)
	}

	// First hit in the window owns setting the expiry.
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.period).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire %s: %w", key, err)
		}
	}

	return count <= int64(r.limit), nil
}

// Compile-time check that Redis implements Limiter.
var _ Limiter = (*Redis)(nil)
