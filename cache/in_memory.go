// Package cache provides the in-process implementation of the core.Cache
// port: a key/value store with per-entry TTL used to memoize embeddings and
// agent outputs. Entries are evicted lazily on read and by an optional
// background sweep.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryCache is a volatile core.Cache implementation storing entries in a
// process local map. It is safe for concurrent access and best suited for
// tests, demos and single-node deployments.
type InMemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

// Options configure an InMemoryCache.
type Options struct {
	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL time.Duration
	// Clock overrides the time source, used by tests to control expiry.
	Clock func() time.Time
}

// NewInMemoryCache constructs an empty in-memory cache.
func NewInMemoryCache(optFns ...func(o *Options)) *InMemoryCache {
	opts := Options{DefaultTTL: time.Hour, Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryCache{
		entries:    make(map[string]entry),
		defaultTTL: opts.DefaultTTL,
		now:        opts.Clock,
	}
}

// Get returns the live value for key. Expired entries are removed and
// reported as absent.
func (c *InMemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, still := c.entries[key]; still && cur.expired(c.now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A non-positive ttl falls back to the default.
func (c *InMemoryCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Invalidate removes key if present.
func (c *InMemoryCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including not-yet-swept expired ones.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes all expired entries and returns how many were evicted.
func (c *InMemoryCache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	evicted := 0
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
			evicted++
		}
	}
	return evicted
}
