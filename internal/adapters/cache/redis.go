// Package cache provides a Redis-backed ports.Cache and a read-through quote
// repository decorator built on it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/idusortus/quotes-service/internal/domain"
)

// RedisConfig holds connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache implements ports.Cache on a single Redis node.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a client. No connection is made until the first command.
func NewRedisCache(cfg RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns the value stored at key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NewNotFoundError("cache entry", key)
	}

	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return b, nil
}

// Set stores value at key.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (c *RedisCache) Name() string {
	return "redis"
}

// Check pings the server.
func (c *RedisCache) Check(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return domain.NewUnavailableError("redis", "ping", err)
	}

	return nil
}

// Optional implements ports.OptionalChecker. Quotes are still served from
// storage while Redis is down.
func (c *RedisCache) Optional() bool {
	return true
}

// Close closes the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
