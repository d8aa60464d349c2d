// Package cache provides a Redis-backed cache for external lookup results
// (property listings, places). The cache is optional: a nil *Cache is valid
// and every operation on it is a no-op, so lookups simply go straight
// through when Redis is not configured.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = time.Hour

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Cache{rdb: rdb, ttl: defaultTTL}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Key derives a deterministic cache key from a prefix and a parameter
// struct. Struct fields marshal in declaration order, so equal params always
// hash to the same key.
func Key(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return prefix + ":unhashable"
	}
	sum := sha256.Sum256(data)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// GetJSON loads a cached value into out. Returns false on a miss, on any
// Redis error, or when the cache is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) bool {
	if c == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON stores a value with the default TTL. Errors are swallowed: caching
// is best-effort and never fails the lookup it serves.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, key, data, c.ttl)
}
