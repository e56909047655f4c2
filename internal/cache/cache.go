// Package cache is a small keyed in-memory cache with explicit TTL and size
// bounds. Entries expire after the TTL; inserting beyond the size bound
// evicts the entry closest to expiry. Safe for concurrent use.
package cache

import (
	"sync"
	"time"
)

// Cache holds up to maxEntries values for at most ttl each.
type Cache[K comparable, V any] struct {
	mu         sync.Mutex
	entries    map[K]entry[V]
	ttl        time.Duration
	maxEntries int

	now func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// New creates a cache. Non-positive ttl or maxEntries fall back to 15 minutes
// and 100 entries.
func New[K comparable, V any](ttl time.Duration, maxEntries int) *Cache[K, V] {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Cache[K, V]{
		entries:    make(map[K]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the cached value and whether a live entry exists. Expired
// entries are removed on access.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value, evicting the entry closest to expiry when the cache is
// at capacity.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		var oldest K
		var oldestAt time.Time
		first := true
		for k, e := range c.entries {
			if first || e.expiresAt.Before(oldestAt) {
				oldest, oldestAt = k, e.expiresAt
				first = false
			}
		}
		delete(c.entries, oldest)
	}

	c.entries[key] = entry[V]{value: value, expiresAt: now.Add(c.ttl)}
}

// Delete removes a key if present.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of entries, including any not yet swept.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
