// Package resilience wraps calls to external collaborators (LLM, search,
// embedding and image providers) with retry-with-backoff and a per-operation
// circuit breaker. The package contains pure decision logic and performs no
// I/O of its own; callers pass the operation closure to execute.
//
// Two layers compose:
//
//  1. Breaker — a named three-state circuit (closed / open / half-open) that
//     fast-fails while a collaborator is known to be down.
//  2. Retry — exponential backoff with jitter around each guarded call,
//     skipping failures classified as permanent.
//
// The Executor ties both together and is the single entry point used by the
// agent capabilities and the graph engine.
package resilience
