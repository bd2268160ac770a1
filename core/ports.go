package core

import (
	"context"
	"time"
)

// Embedder turns text into a fixed-length vector. Implementations may fail;
// consumers must tolerate absence and degrade to lexical matching.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float64, error)
}

// GenerateOptions tune a single text generation call.
type GenerateOptions struct {
	System      string
	Temperature float64
	MaxTokens   int
}

// Generator produces text from a prompt. Used by the connection, content,
// visual, multimedia and validation capabilities.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// Document is one retrieved search result.
type Document struct {
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Source  string `json:"source,omitempty"` // "academic", "encyclopedia", "web"
}

// Searcher retrieves documents for a query. Used by the research capability.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Document, error)
}

// Cache is a key/value store with per-entry TTL, used to memoize embeddings
// and agent outputs keyed by normalized concept text. A cache hit must
// short-circuit the resilience layer entirely.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Invalidate(key string)
}

// Store is the optional persistence port. When wired, nodes, edges and
// exploration records are durably stored; the in-memory engine behaves
// identically whether or not a Store is present.
type Store interface {
	SaveNode(ctx context.Context, node ConceptNode) error
	SaveEdge(ctx context.Context, edge GraphEdge) error
	SaveExploration(ctx context.Context, exploration Exploration) error
	LoadNodes(ctx context.Context) ([]ConceptNode, error)
	LoadEdges(ctx context.Context) ([]GraphEdge, error)
	Close() error
}
