// Package cache provides a Redis-backed namespaced JSON cache, used by the
// server as the Optimize API's response cache, adapted from the teacher's
// pkg/cache/optimization_cache.go.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache is a namespaced JSON-blob cache over a shared redis client.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisCache wraps an existing redis client.
func NewRedisCache(client *redis.Client, logger *logrus.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

// SetJSON marshals value and stores it under namespace:key with the given
// expiration.
func (c *RedisCache) SetJSON(ctx context.Context, namespace, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s:%s: %w", namespace, key, err)
	}

	fullKey := fmt.Sprintf("%s:%s", namespace, key)
	if err := c.client.Set(ctx, fullKey, data, expiration).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", fullKey, err)
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": expiration,
	}).Debug("cache: stored entry")
	return nil
}

// GetJSON retrieves and unmarshals the value stored under namespace:key
// into dest. Returns ErrCacheMiss when absent.
func (c *RedisCache) GetJSON(ctx context.Context, namespace, key string, dest interface{}) error {
	fullKey := fmt.Sprintf("%s:%s", namespace, key)
	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache: get %s: %w", fullKey, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache: unmarshal %s: %w", fullKey, err)
	}

	c.logger.WithField("cache_key", fullKey).Debug("cache: hit")
	return nil
}

// Delete removes namespace:key, dropping the entry before its TTL.
func (c *RedisCache) Delete(ctx context.Context, namespace, key string) error {
	fullKey := fmt.Sprintf("%s:%s", namespace, key)
	if err := c.client.Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("cache: delete %s: %w", fullKey, err)
	}
	return nil
}
