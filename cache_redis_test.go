package tembang

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// unreachableRedis returns a client pointed at a port nothing listens on,
// with aggressive timeouts so degradation paths return quickly.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            "127.0.0.1:1",
		DialTimeout:     50 * time.Millisecond,
		ReadTimeout:     50 * time.Millisecond,
		WriteTimeout:    50 * time.Millisecond,
		MaxRetries:      -1,
		PoolTimeout:     50 * time.Millisecond,
		MinRetryBackoff: -1,
		MaxRetryBackoff: -1,
	})
}

func TestRedisCacheDefaultPrefix(t *testing.T) {
	c := NewRedisCache(unreachableRedis(), "", nil)
	if got := c.key("abc"); got != "tembang:abc" {
		t.Errorf("Expected default prefix, got %q", got)
	}

	c = NewRedisCache(unreachableRedis(), "custom", nil)
	if got := c.key("abc"); got != "custom:abc" {
		t.Errorf("Expected custom prefix, got %q", got)
	}
}

func TestRedisCacheDegradesToMiss(t *testing.T) {
	c := NewRedisCache(unreachableRedis(), "", NopLogger{})

	if _, ok := c.Get("k"); ok {
		t.Error("Unreachable Redis must read as a miss")
	}

	// None of these may panic or block past their timeouts.
	c.Set("k", &CacheEntry{Payload: []byte("v"), StatusCode: 200}, time.Minute)
	c.Delete("k")
	c.Clear()
	if n := c.Len(); n != 0 {
		t.Errorf("Expected Len 0 on unreachable Redis, got %d", n)
	}
}

func TestRedisCacheZeroTTLDeletes(t *testing.T) {
	c := NewRedisCache(unreachableRedis(), "", NopLogger{})
	// Must take the delete path without error even though the backend is
	// down.
	c.Set("k", &CacheEntry{Payload: []byte("v")}, 0)
}
