package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(ctx context.Context, redisURL string) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Decision is the outcome of one counted request.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key in a fixed window. A key that exceeds the
// limit is blocked for Block.
type RateLimiter struct {
	redis  *RedisClient
	Limit  int
	Window time.Duration
	Block  time.Duration
}

func NewRateLimiter(r *RedisClient, limit int, window, block time.Duration) *RateLimiter {
	return &RateLimiter{redis: r, Limit: limit, Window: window, Block: block}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	rdb := l.redis.client
	key = "ratelimit:" + key
	blockKey := key + ":blocked"
	d := Decision{Limit: l.Limit}

	blocked, err := rdb.Get(ctx, blockKey).Result()
	if err != nil && err != redis.Nil {
		return d, err
	}
	if blocked == "1" {
		ttl, _ := rdb.TTL(ctx, blockKey).Result()
		d.RetryAfter = ttl
		return d, nil
	}

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return d, err
	}
	if count == 1 {
		rdb.Expire(ctx, key, l.Window)
	}

	if count > int64(l.Limit) {
		rdb.Set(ctx, blockKey, "1", l.Block)
		d.RetryAfter = l.Block
		return d, nil
	}

	d.Allowed = true
	d.Remaining = l.Limit - int(count)
	d.RetryAfter, _ = rdb.TTL(ctx, key).Result()
	return d, nil
}
