// Package cache provides the process-wide in-memory TTL store shared by the
// fetch, analysis and AI layers. One instance is constructed at startup and
// injected into every consumer.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache is an in-memory key/value store with per-entry expiry.
// Expired entries are deleted lazily on the read that discovers them;
// there is no background sweep and no size bound. Last set wins.
type Cache struct {
	mu    sync.Mutex
	items map[string]entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		items: make(map[string]entry),
	}
}

// Get returns the value for key if present and not expired.
// An expired entry is removed on discovery and never comes back.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

// Set inserts or overwrites key with the given time-to-live.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

// Size returns the current number of entries, expired ones included.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
