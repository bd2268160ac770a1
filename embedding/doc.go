// Package embedding provides implementations and decorators for the
// core.Embedder port:
//
//   - Local: a deterministic hash-based encoder for development and tests
//   - Resilient: routes Encode through the resilience executor (retry +
//     circuit breaker) and converts failures into core.EmbeddingError
//   - Cached: memoizes vectors in a core.Cache keyed by normalized text; a
//     cache hit never enters the resilience layer
//
// Production deployments compose Cached(Resilient(provider)); see the openai
// subpackage for a provider adapter.
package embedding
