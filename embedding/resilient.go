package embedding

import (
	"context"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/resilience"
)

// OperationName is the circuit breaker operation guarding embedding calls.
const OperationName = "embedding"

// Resilient wraps an inner core.Embedder with the resilience executor. Any
// terminal failure (retries exhausted, circuit open) is converted into a
// core.EmbeddingError so callers can branch on core.ErrEmbeddingUnavailable
// and degrade to lexical matching.
type Resilient struct {
	inner core.Embedder
	exec  *resilience.Executor
}

// NewResilient constructs a guarded embedder. A nil executor means calls pass
// through unguarded.
func NewResilient(inner core.Embedder, exec *resilience.Executor) *Resilient {
	return &Resilient{inner: inner, exec: exec}
}

// Encode implements core.Embedder.
func (r *Resilient) Encode(ctx context.Context, text string) ([]float64, error) {
	if r.exec == nil {
		vec, err := r.inner.Encode(ctx, text)
		if err != nil {
			return nil, &core.EmbeddingError{Text: text, Err: err}
		}
		return vec, nil
	}

	v, err := r.exec.DoValue(ctx, OperationName, func(ctx context.Context) (any, error) {
		return r.inner.Encode(ctx, text)
	})
	if err != nil {
		return nil, &core.EmbeddingError{Text: text, Err: err}
	}
	vec, ok := v.([]float64)
	if !ok {
		return nil, &core.EmbeddingError{Text: text, Err: core.ErrEmbeddingUnavailable}
	}
	return vec, nil
}
