// Package cache provides a thread-safe LRU cache for parsed expressions.
//
// The cache is used by the gotdop Compiler. It avoids re-parsing the same
// source text on every call, which pays off when the same expression is
// evaluated against many environments. Parsed trees are immutable, so a cached
// value may be shared by any number of goroutines.
//
// # Example
//
//	c := cache.New[arith.Expr](1024)
//	expr, err := c.GetOrParse("x + 1", func() (arith.Expr, error) { return arith.Parse("x + 1") })
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// Cache is an LRU (Least Recently Used) cache keyed by source text.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache[V any] struct {
	capacity int
	lru      *lru.Cache[string, V]
	group    singleflight.Group
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, DefaultCapacity is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[string, V](capacity)
	if err != nil {
		// Only returned for a non-positive size, ruled out above.
		panic(err)
	}
	return &Cache[V]{capacity: capacity, lru: l}
}

// Get retrieves a value from the cache and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set inserts or replaces a value. If at capacity, the least recently used
// entry is evicted first.
func (c *Cache[V]) Set(key string, v V) {
	c.lru.Add(key, v)
}

// GetOrParse retrieves the value for key from the cache, or calls parse to
// create it, caches the result, and returns it. Concurrent callers asking for
// the same missing key share a single parse call. Errors are not cached.
func (c *Cache[V]) GetOrParse(key string, parse func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := parse()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ := res.(V)
	return v, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.lru.Remove(key)
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.lru.Purge()
}
