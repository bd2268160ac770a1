package embedding

import (
	"context"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// DefaultTTL is how long memoized vectors stay valid.
const DefaultTTL = 24 * time.Hour

// Observer receives cache lookup outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	CacheHit()
	CacheMiss()
}

// Cached memoizes vectors produced by an inner core.Embedder in a core.Cache,
// keyed by the normalized text. A cache hit returns immediately and never
// reaches the inner embedder, which keeps retry and circuit breaker overhead
// off the hot path entirely.
type Cached struct {
	inner    core.Embedder
	cache    core.Cache
	ttl      time.Duration
	observer Observer
}

// NewCached constructs a memoizing embedder. A non-positive ttl falls back to
// DefaultTTL.
func NewCached(inner core.Embedder, cache core.Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{inner: inner, cache: cache, ttl: ttl}
}

// WithObserver attaches a lookup observer and returns the receiver for
// chaining.
func (c *Cached) WithObserver(o Observer) *Cached {
	c.observer = o
	return c
}

// Key returns the cache key used for a given text.
func Key(text string) string { return "embedding:" + core.NormalizeConcept(text) }

// Encode implements core.Embedder.
func (c *Cached) Encode(ctx context.Context, text string) ([]float64, error) {
	key := Key(text)
	if v, ok := c.cache.Get(key); ok {
		if vec, ok := v.([]float64); ok {
			if c.observer != nil {
				c.observer.CacheHit()
			}
			return vec, nil
		}
	}
	if c.observer != nil {
		c.observer.CacheMiss()
	}

	vec, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, vec, c.ttl)
	return vec, nil
}
