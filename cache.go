package tembang

import (
	"container/list"
	"sync"
	"time"
)

// CacheEntry is a cached upstream result. Entries are owned by the cache
// and expire when now passes ExpiresAt.
type CacheEntry struct {
	Payload    []byte
	StatusCode int
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Expired reports whether the entry is past its TTL at the given moment.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Cache stores classified-successful responses keyed by fingerprint.
type Cache interface {
	Get(key string) (*CacheEntry, bool)
	Set(key string, entry *CacheEntry, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
}

// InMemoryCache is a bounded LRU cache with lazy expiry: an expired entry
// behaves as a miss on Get and is evicted on the spot, no background
// sweep. A single mutex serializes all mutations, which keeps the LRU
// order and "last writer wins" exact.
type InMemoryCache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
}

type lruItem struct {
	key   string
	entry *CacheEntry
}

// DefaultCacheCapacity bounds the in-memory cache when no capacity is
// configured.
const DefaultCacheCapacity = 1000

// NewInMemoryCache creates a cache holding at most maxEntries entries.
// Non-positive capacities fall back to DefaultCacheCapacity.
func NewInMemoryCache(maxEntries int) *InMemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheCapacity
	}
	return &InMemoryCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

// Get returns the entry for key. Expired entries are evicted and reported
// as a miss.
func (c *InMemoryCache) Get(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	item := el.Value.(*lruItem)
	if item.entry.Expired(time.Now()) {
		c.removeElement(el)
		return nil, false
	}
	c.ll.MoveToFront(el)
	return item.entry, true
}

// Set stores entry under key for ttl. A non-positive ttl removes any
// existing entry instead of retaining one that is already dead. When the
// capacity bound is reached the least-recently-used entry is evicted.
func (c *InMemoryCache) Set(key string, entry *CacheEntry, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		if el, ok := c.items[key]; ok {
			c.removeElement(el)
		}
		return
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.ExpiresAt = now.Add(ttl)

	if el, ok := c.items[key]; ok {
		el.Value.(*lruItem).entry = entry
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&lruItem{key: key, entry: entry})
	c.items[key] = el

	if c.ll.Len() > c.maxEntries {
		if oldest := c.ll.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Delete removes the entry for key, if present.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
}

// Clear removes all entries.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Len returns the number of entries currently stored, including any not
// yet lazily evicted.
func (c *InMemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *InMemoryCache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruItem).key)
}
