// Package cache wraps Redis with fail-open semantics: when the backing store
// is missing or failing, reads miss and writes are dropped.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cubis-academy-api/internal/observability"
)

// TTL presets shared by callers.
const (
	TTLShort  = time.Minute
	TTLMedium = 5 * time.Minute
	TTLLong   = time.Hour
	TTLDay    = 24 * time.Hour
)

const scanBatch = 200

// Cache is a nil-safe Redis facade. A Cache with no client behaves as a permanent miss.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
}

// New builds a cache on top of client. A nil client yields a disabled cache.
func New(client *redis.Client, logger zerolog.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

// Enabled reports whether a backing store is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Client exposes the underlying Redis client, which may be nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}

// Get returns the raw value stored under key and whether it was found.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.Enabled() {
		record("get", "disabled")
		return "", false
	}

	value, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		record("get", "hit")
		return value, true
	case errors.Is(err, redis.Nil):
		record("get", "miss")
	default:
		record("get", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	return "", false
}

// GetJSON decodes the value stored under key into dest. It reports false on a miss
// or when the payload cannot be decoded.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		c.Del(ctx, key)
		return false
	}
	return true
}

// Set stores value under key with the given expiry.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		record("set", "disabled")
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		record("set", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}
	record("set", "ok")
}

// SetJSON encodes value as JSON and stores it under key.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !c.Enabled() {
		record("set", "disabled")
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache payload encoding failed")
		return
	}
	c.Set(ctx, key, payload, ttl)
}

// Del removes the given keys.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		record("del", "error")
		c.logger.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
		return
	}
	record("del", "ok")
}

// DelPattern removes every key matching the glob pattern and returns how many were deleted.
func (c *Cache) DelPattern(ctx context.Context, pattern string) int {
	if !c.Enabled() {
		return 0
	}

	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			record("del_pattern", "error")
			c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
			return deleted
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				record("del_pattern", "error")
				c.logger.Warn().Err(err).Str("pattern", pattern).Msg("cache pattern delete failed")
				return deleted
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	record("del_pattern", "ok")
	return deleted
}

// Exists reports whether key is present.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	if !c.Enabled() {
		return false
	}
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		record("exists", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache exists check failed")
		return false
	}
	return n > 0
}

// TTL returns the remaining lifetime of key. Missing keys and disabled caches return zero.
func (c *Cache) TTL(ctx context.Context, key string) time.Duration {
	if !c.Enabled() {
		return 0
	}
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		record("ttl", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache ttl lookup failed")
		return 0
	}
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Incr atomically increments the counter at key. It returns zero when the cache is unavailable.
func (c *Cache) Incr(ctx context.Context, key string) int64 {
	if !c.Enabled() {
		return 0
	}
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		record("incr", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache increment failed")
		return 0
	}
	return n
}

// Expire sets the lifetime of an existing key.
func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	if !c.Enabled() {
		return false
	}
	ok, err := c.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		record("expire", "error")
		c.logger.Warn().Err(err).Str("key", key).Msg("cache expire failed")
		return false
	}
	return ok
}

// Remember returns the cached value for key, or calls load and caches its result.
// The boolean reports whether the value came from the cache.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, bool, error) {
	var cached T
	if c.GetJSON(ctx, key, &cached) {
		return cached, true, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}

	c.SetJSON(ctx, key, value, ttl)
	return value, false, nil
}

func record(operation, result string) {
	observability.CacheOperations().WithLabelValues(operation, result).Inc()
}
