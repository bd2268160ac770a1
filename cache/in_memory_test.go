package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/conceptmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.Cache = (*InMemoryCache)(nil)

func TestInMemoryCache_SetGet(t *testing.T) {
	c := NewInMemoryCache()
	c.Set("k", []float64{0.1, 0.2}, time.Minute)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []float64{0.1, 0.2}, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	now := time.Now()
	c := NewInMemoryCache(func(o *Options) {
		o.Clock = func() time.Time { return now }
	})
	c.Set("k", "v", 10*time.Second)

	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(11 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestInMemoryCache_DefaultTTL(t *testing.T) {
	now := time.Now()
	c := NewInMemoryCache(func(o *Options) {
		o.DefaultTTL = 5 * time.Second
		o.Clock = func() time.Time { return now }
	})
	c.Set("k", "v", 0)

	now = now.Add(6 * time.Second)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInMemoryCache_Invalidate(t *testing.T) {
	c := NewInMemoryCache()
	c.Set("k", "v", time.Minute)
	c.Invalidate("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInMemoryCache_Sweep(t *testing.T) {
	now := time.Now()
	c := NewInMemoryCache(func(o *Options) {
		o.Clock = func() time.Time { return now }
	})
	c.Set("a", 1, 5*time.Second)
	c.Set("b", 2, time.Minute)

	now = now.Add(10 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
}
