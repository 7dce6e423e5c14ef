package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/konverge-api/internal/observability"
)

// Cache stores derived read models with an explicit TTL and invalidation hook.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache builds a redis backed cache. A nil client disables caching.
func NewRedisCache(client *redis.Client) Cache {
	if client == nil {
		return NoopCache()
	}
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.CacheLookups().WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		observability.CacheLookups().WithLabelValues("error").Inc()
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		observability.CacheLookups().WithLabelValues("error").Inc()
		return false, err
	}
	observability.CacheLookups().WithLabelValues("hit").Inc()
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type noopCache struct{}

// NoopCache never stores anything.
func NoopCache() Cache {
	return noopCache{}
}

func (noopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Invalidate(context.Context, ...string) error { return nil }
