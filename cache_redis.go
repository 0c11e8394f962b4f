package tembang

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache backed by Redis, for deployments where several
// processes share one MusicBrainz budget and should also share the
// response cache. Entries are stored as JSON with a per-key redis TTL;
// expiry is therefore handled by the server and Get never observes a
// stale entry.
//
// Cache-layer failures are never fatal: a Redis error degrades to a miss
// on Get and a no-op on Set, logged at warn level.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
	logger  Logger
}

// NewRedisCache wraps client as a Cache. Keys are namespaced with prefix
// ("tembang" when empty).
func NewRedisCache(client *redis.Client, prefix string, logger Logger) *RedisCache {
	if prefix == "" {
		prefix = "tembang"
	}
	if logger == nil {
		logger = NopLogger{}
	}
	return &RedisCache{
		client:  client,
		prefix:  prefix,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *RedisCache) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Get retrieves the entry for key. Redis errors and decode failures are
// treated as misses.
func (c *RedisCache) Get(key string) (*CacheEntry, bool) {
	ctx, cancel := c.ctx()
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis get failed, treating as miss", "key", key, "error", err)
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("corrupt cache entry, evicting", "key", key, "error", err)
		c.Delete(key)
		return nil, false
	}
	return &entry, true
}

// Set stores entry under key for ttl. Non-positive TTLs remove the key.
func (c *RedisCache) Set(key string, entry *CacheEntry, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(key)
		return
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(ttl)

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache entry encode failed, skipping store", "key", key, "error", err)
		return
	}

	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.client.Set(ctx, c.key(key), raw, ttl).Err(); err != nil {
		c.logger.Warn("redis set failed, skipping store", "key", key, "error", err)
	}
}

// Delete removes the entry for key.
func (c *RedisCache) Delete(key string) {
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.client.Del(ctx, c.key(key)).Err(); err != nil {
		c.logger.Warn("redis delete failed", "key", key, "error", err)
	}
}

// Clear removes every entry under the cache prefix.
func (c *RedisCache) Clear() {
	ctx, cancel := c.ctx()
	defer cancel()

	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("redis delete failed during clear", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("redis scan failed during clear", "error", err)
	}
}

// Len returns the number of entries under the cache prefix, or 0 when
// Redis cannot be reached.
func (c *RedisCache) Len() int {
	ctx, cancel := c.ctx()
	defer cancel()

	var n int
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n
}
