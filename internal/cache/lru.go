// Package cache provides a small LRU cache for resolved queries.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a fixed-capacity least-recently-used cache with hit and miss counters. It is
// safe for concurrent use. A capacity of zero or less disables caching.
type LRU[K comparable, V any] struct {
	entries *lru.Cache[K, V]
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// New creates a cache holding at most capacity entries.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	c := &LRU[K, V]{}
	if capacity > 0 {
		// lru.New only fails for a non-positive size.
		c.entries, _ = lru.New[K, V](capacity)
	}
	return c
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if c.entries != nil {
		if v, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return v, true
		}
	}
	c.misses.Add(1)
	var zero V
	return zero, false
}

// Set stores value for key, evicting the least recently used entry if at capacity.
func (c *LRU[K, V]) Set(key K, value V) {
	if c.entries == nil {
		return
	}
	c.entries.Add(key, value)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Stats returns the hit and miss counts since creation or the last Purge.
func (c *LRU[K, V]) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Purge removes every entry and resets the counters.
func (c *LRU[K, V]) Purge() {
	if c.entries != nil {
		c.entries.Purge()
	}
	c.hits.Store(0)
	c.misses.Store(0)
}
