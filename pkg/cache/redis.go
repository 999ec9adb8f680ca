package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in redis under a common key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures [NewRedisCache].
type RedisOptions struct {
	// Addr is host:port, or a redis:// URL.
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, "kinship:" if empty.
	Prefix string
}

// NewRedisCache connects to redis and pings it, retrying transient
// network failures.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	ro := &redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
	if u, err := redis.ParseURL(opts.Addr); err == nil {
		ro = u
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "kinship:"
	}

	c := &RedisCache{client: redis.NewClient(ro), prefix: prefix}
	err := RetryWithBackoff(ctx, func() error {
		return c.classify(c.client.Ping(ctx).Err())
	})
	if err != nil {
		c.client.Close()
		return nil, fmt.Errorf("redis %s: %w", ro.Addr, err)
	}
	return c, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if err != nil {
			return c.classify(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return RetryWithBackoff(ctx, func() error {
		return c.classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return c.classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Clear deletes every key under the cache prefix using SCAN, so it never
// blocks the server the way KEYS would.
func (c *RedisCache) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 256).Result()
		if err != nil {
			return c.classify(err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return c.classify(err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks connection-level failures as retryable network errors.
// redis.Nil and command errors pass through untouched.
func (c *RedisCache) classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return networkError(err)
}

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
