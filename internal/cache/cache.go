// Package cache provides a small concurrent TTL cache used to shield
// the store from repeated identical reads on the hot API paths.
package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type entry[V any] struct {
	value   V
	fetched time.Time
}

// TTL is a concurrent map whose entries expire after a fixed duration.
// Expired entries are dropped lazily on access.
type TTL[V any] struct {
	entries *xsync.Map[string, entry[V]]
	maxAge  time.Duration
}

// New creates a TTL cache whose entries expire after maxAge.
func New[V any](maxAge time.Duration) *TTL[V] {
	return &TTL[V]{
		entries: xsync.NewMap[string, entry[V]](),
		maxAge:  maxAge,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	e, ok := c.entries.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Since(e.fetched) > c.maxAge {
		c.entries.Delete(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key, resetting its age.
func (c *TTL[V]) Set(key string, value V) {
	c.entries.Store(key, entry[V]{value: value, fetched: time.Now()})
}

// Invalidate drops a single entry.
func (c *TTL[V]) Invalidate(key string) {
	c.entries.Delete(key)
}

// Clear drops every entry.
func (c *TTL[V]) Clear() {
	c.entries.Clear()
}
