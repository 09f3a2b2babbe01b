// Package memo provides a size-bounded memoization cache.
//
// Entries are evicted least-recently-used first once the configured size is
// reached, so callers that rebuild inputs frequently (for example trees
// decoded from literals on every render) cannot grow the cache without bound.
package memo

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 64

// Stats reports cache effectiveness.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Len       int    `json:"len"`
	Size      int    `json:"size"`
}

// Cache memoizes values of type V under comparable keys of type K.
// It is safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries   *lru.Cache[K, V]
	size      int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most size entries.
func New[K comparable, V any](size int) *Cache[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	c := &Cache[K, V]{size: size}
	entries, err := lru.NewWithEvict[K, V](size, func(K, V) {
		c.evictions.Add(1)
	})
	if err != nil {
		// Only returned for non-positive sizes, excluded above.
		panic(err)
	}
	c.entries = entries
	return c
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Add stores value under key, evicting the oldest entry if the cache is full.
func (c *Cache[K, V]) Add(key K, value V) {
	c.entries.Add(key, value)
}

// GetOrCompute returns the cached value for key, or calls compute and caches
// its result. Errors are returned to the caller and never cached.
func (c *Cache[K, V]) GetOrCompute(key K, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Add(key, v)
	return v, nil
}

// Purge empties the cache. Stats counters are kept.
func (c *Cache[K, V]) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return c.entries.Len()
}

// Size returns the configured capacity.
func (c *Cache[K, V]) Size() int {
	return c.size
}

// Stats returns a snapshot of the hit, miss and eviction counters with the
// current length and capacity.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.entries.Len(),
		Size:      c.Size(),
	}
}
