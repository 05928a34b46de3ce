package memo

import (
	"sync"
	"time"
)

// Cache holds exactly one result together with the dependency key that
// produced it. It recomputes only when the key changes.
//
// A Cache belongs to one call site and lives as long as its owner; there is
// no eviction. The producer runs while the cache's lock is held, so it must
// not call back into the same Cache.
type Cache[T any] struct {
	cfg config

	mu    sync.Mutex
	key   Deps
	value T
	valid bool
	stats Stats
}

// NewCache creates an empty cache.
func NewCache[T any](opts ...Option) *Cache[T] {
	return &Cache[T]{
		cfg: newConfig("cache", opts),
	}
}

// GetOrCompute returns the cached value when key matches the stored key,
// and otherwise runs producer exactly once, stores the result with a copy
// of key, and returns it.
//
// The first call always runs producer. An empty key therefore means
// "compute once, never again".
func (c *Cache[T]) GetOrCompute(key Deps, producer func() T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid {
		if len(c.key) != len(key) {
			c.cfg.logger.Warn("memo: dependency count changed between calls",
				"cache", c.cfg.name,
				"previous", len(c.key),
				"current", len(key),
			)
		} else if c.cfg.comparator.Compare(c.key, key) == Match {
			c.stats.Hits++
			if c.cfg.observer != nil {
				c.cfg.observer.OnHit(c.cfg.name)
			}
			return c.value
		}
	}

	start := time.Now()
	value := producer()
	took := time.Since(start)

	c.key = append(Deps(nil), key...)
	c.value = value
	c.valid = true
	c.stats.Misses++

	if c.cfg.observer != nil {
		c.cfg.observer.OnMiss(c.cfg.name, took)
	}
	return value
}

// Peek returns the stored value without comparing keys. The boolean is
// false before the first computation or after Invalidate.
func (c *Cache[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.valid
}

// Invalidate drops the stored entry so the next GetOrCompute runs the
// producer regardless of its key.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.key = nil
	c.value = zero
	c.valid = false
}

// Stats returns hit and miss counts.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Name returns the cache's name.
func (c *Cache[T]) Name() string {
	return c.cfg.name
}
