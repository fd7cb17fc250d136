package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another action is allowed for a key
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config is a fixed-window rule: at most Max actions per Window
type Config struct {
	Prefix string
	Max    int
	Window time.Duration
}

// RedisLimiter counts actions per key in Redis with INCR and EXPIRE.
// The window starts at the first hit and is re-armed whenever the key has no TTL.
type RedisLimiter struct {
	rdb *redis.Client
	cfg Config
}

func NewRedisLimiter(rdb *redis.Client, cfg Config) *RedisLimiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "rate"
	}
	return &RedisLimiter{rdb: rdb, cfg: cfg}
}

func (rl *RedisLimiter) key(k string) string {
	return fmt.Sprintf("%s:%s", rl.cfg.Prefix, k)
}

// Allow records one action and reports whether it fits the window
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if rl == nil || rl.rdb == nil {
		return false, fmt.Errorf("Redis client not available")
	}

	k := rl.key(key)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rl.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.TTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, err
	}

	// -1 on the first hit, and on any key whose EXPIRE never landed
	if ttl.Val() < 0 {
		if err := rl.rdb.Expire(ctx, k, rl.cfg.Window).Err(); err != nil {
			return false, err
		}
	}

	return incr.Val() <= int64(rl.cfg.Max), nil
}

// NoopLimiter allows everything. It is used when Redis is disabled.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
