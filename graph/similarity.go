package graph

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/hupe1980/conceptmesh/core"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Mismatched dimensions or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// LexicalScore is the deterministic fallback similarity used when either side
// has no embedding: Jaccard token overlap on the normalized strings, raised
// to a floor of 0.8 when one normalized string contains the other.
func LexicalScore(query, concept string) float64 {
	q := core.NormalizeConcept(query)
	c := core.NormalizeConcept(concept)
	if q == "" || c == "" {
		return 0
	}
	if q == c {
		return 1
	}

	qTokens := strings.Fields(q)
	cTokens := strings.Fields(c)
	qSet := make(map[string]struct{}, len(qTokens))
	for _, t := range qTokens {
		qSet[t] = struct{}{}
	}
	cSet := make(map[string]struct{}, len(cTokens))
	for _, t := range cTokens {
		cSet[t] = struct{}{}
	}

	intersection := 0
	for t := range qSet {
		if _, ok := cSet[t]; ok {
			intersection++
		}
	}
	union := len(qSet) + len(cSet) - intersection
	score := 0.0
	if union > 0 {
		score = float64(intersection) / float64(union)
	}

	if strings.Contains(q, c) || strings.Contains(c, q) {
		if score < 0.8 {
			score = 0.8
		}
	}
	return score
}

// FindSimilar ranks stored nodes against a text query. The query embedding is
// computed through the configured embedder; if it is unavailable every node
// is scored lexically. Nodes without embeddings are scored lexically even
// when the query vector exists, keeping ranking deterministic for identical
// inputs.
func (e *Engine) FindSimilar(ctx context.Context, query string, limit int, minScore float64) ([]core.ScoredNode, error) {
	var queryVec []float64
	if e.embedder != nil {
		vec, err := e.embedder.Encode(ctx, query)
		if err == nil {
			queryVec = vec
		} else if !errors.Is(err, core.ErrEmbeddingUnavailable) {
			e.logger.Warn("query embedding failed, falling back to lexical ranking", "error", err.Error())
		}
	}
	return e.rank(query, queryVec, limit, minScore), nil
}

// FindSimilarVector ranks stored nodes against a caller-supplied vector.
// Nodes without embeddings score 0 since no query text is available for the
// lexical fallback.
func (e *Engine) FindSimilarVector(_ context.Context, queryVec []float64, limit int, minScore float64) []core.ScoredNode {
	return e.rank("", queryVec, limit, minScore)
}

func (e *Engine) rank(query string, queryVec []float64, limit int, minScore float64) []core.ScoredNode {
	if limit <= 0 {
		limit = 10
	}

	e.mu.RLock()
	scored := make([]core.ScoredNode, 0, len(e.nodes))
	for _, node := range e.nodes {
		var score float64
		switch {
		case queryVec != nil && node.Embedding != nil:
			score = CosineSimilarity(queryVec, node.Embedding)
		case query != "":
			score = LexicalScore(query, node.Concept)
		}
		if score >= minScore {
			scored = append(scored, core.ScoredNode{Node: node, Score: score})
		}
	}
	e.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Node.CreatedAt.Equal(scored[j].Node.CreatedAt) {
			return scored[i].Node.CreatedAt.After(scored[j].Node.CreatedAt)
		}
		return scored[i].Node.ID < scored[j].Node.ID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
