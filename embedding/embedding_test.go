package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh/cache"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/resilience"
)

// Interface compliance (compile-time assertions)
var (
	_ core.Embedder = (*Local)(nil)
	_ core.Embedder = (*Cached)(nil)
	_ core.Embedder = (*Resilient)(nil)
)

// countingEmbedder records how often Encode reaches it.
type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Encode(_ context.Context, text string) ([]float64, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float64{float64(len(text)), 1}, nil
}

func TestLocal_Deterministic(t *testing.T) {
	l := NewLocal()
	a, err := l.Encode(context.Background(), "Quantum Computing")
	require.NoError(t, err)
	b, err := l.Encode(context.Background(), "quantum computing")
	require.NoError(t, err)

	assert.Len(t, a, LocalDimensions)
	assert.Equal(t, a, b, "case differences must not change the vector")

	c, err := l.Encode(context.Background(), "something else")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestCached_HitSkipsInner(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCached(inner, cache.NewInMemoryCache(), time.Minute)

	_, err := c.Encode(context.Background(), "quantum computing")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	// Same normalized text within TTL: the inner embedder is not consulted.
	_, err = c.Encode(context.Background(), "  Quantum   Computing ")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit()  { o.hits++ }
func (o *countingObserver) CacheMiss() { o.misses++ }

func TestCached_ObserverCountsLookups(t *testing.T) {
	obs := &countingObserver{}
	c := NewCached(&countingEmbedder{}, cache.NewInMemoryCache(), time.Minute).WithObserver(obs)

	_, err := c.Encode(context.Background(), "quantum computing")
	require.NoError(t, err)
	_, err = c.Encode(context.Background(), "quantum computing")
	require.NoError(t, err)

	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 1, obs.hits)
}

func TestCached_ExpiredEntryRefetches(t *testing.T) {
	now := time.Now()
	store := cache.NewInMemoryCache(func(o *cache.Options) {
		o.Clock = func() time.Time { return now }
	})
	inner := &countingEmbedder{}
	c := NewCached(inner, store, 10*time.Second)

	_, err := c.Encode(context.Background(), "ai")
	require.NoError(t, err)

	now = now.Add(11 * time.Second)
	_, err = c.Encode(context.Background(), "ai")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestResilient_ConvertsFailures(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("provider down")}
	exec := resilience.NewExecutor(func(o *resilience.Options) {
		o.Policy = resilience.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, ExponentialBase: 2, MaxDelay: 5 * time.Millisecond}
	})
	r := NewResilient(inner, exec)

	_, err := r.Encode(context.Background(), "ai")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmbeddingUnavailable)
	assert.Equal(t, 2, inner.calls)
}

func TestResilient_PassThroughSuccess(t *testing.T) {
	inner := &countingEmbedder{}
	r := NewResilient(inner, resilience.NewExecutor())

	vec, err := r.Encode(context.Background(), "ai")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, vec)
}
