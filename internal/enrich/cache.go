// Package enrich computes per-track derived data in the background under a
// bounded number of concurrent tasks, storing successes in path-keyed caches.
package enrich

import (
	"maps"
	"sync"
)

// Cache is a concurrency-safe path-keyed result store.
// Absence means "not computed yet or failed".
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	onStore func(path string, v V)
}

// NewCache creates an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]V)}
}

// Get returns the cached value for path.
func (c *Cache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[path]
	return v, ok
}

// Has reports whether path has a cached value.
func (c *Cache[V]) Has(path string) bool {
	_, ok := c.Get(path)
	return ok
}

// Store records a successful result and notifies the OnStore hook.
func (c *Cache[V]) Store(path string, v V) {
	c.mu.Lock()
	c.entries[path] = v
	hook := c.onStore
	c.mu.Unlock()

	if hook != nil {
		hook(path, v)
	}
}

// Preload inserts entries without calling the OnStore hook.
func (c *Cache[V]) Preload(entries map[string]V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	maps.Copy(c.entries, entries)
}

// OnStore sets a hook called after every Store, outside the lock.
func (c *Cache[V]) OnStore(fn func(path string, v V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStore = fn
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of all entries.
func (c *Cache[V]) Snapshot() map[string]V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.entries)
}
