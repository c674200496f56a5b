// Package cache provides a small TTL cache for computed snapshots.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time; injectable so tests control expiry.
type Clock func() time.Time

// entry is one cached value with its write timestamp.
type entry[V any] struct {
	value   V
	written time.Time
}

// TTL is a key -> (value, timestamp) cache with a fixed time-to-live.
// Expired entries are dropped lazily on read. Safe for concurrent use.
type TTL[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]entry[V]
}

// NewTTL creates a cache with the given time-to-live. A nil clock uses
// time.Now.
func NewTTL[V any](ttl time.Duration, clock Clock) *TTL[V] {
	if clock == nil {
		clock = time.Now
	}
	return &TTL[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.clock().Sub(e.written) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key, stamping it with the current clock time.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, written: c.clock()}
	c.mu.Unlock()
}

// Invalidate removes every entry whose key has the given prefix. Used to drop
// a user's memoized snapshots when a new trade is written.
func (c *TTL[V]) Invalidate(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not.
func (c *TTL[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
