package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/conceptmesh/core"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
		{name: "dimension mismatch", a: []float64{1, 2}, b: []float64{1, 2, 3}, want: 0},
		{name: "empty", a: nil, b: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestLexicalScore(t *testing.T) {
	tests := []struct {
		name           string
		query, concept string
		want           float64
	}{
		{name: "exact after normalization", query: "Quantum  Computing", concept: "quantum computing", want: 1},
		{name: "substring floor", query: "quantum", concept: "quantum computing", want: 0.8},
		{name: "partial overlap", query: "quantum error correction", concept: "quantum computing", want: 0.25},
		{name: "disjoint", query: "gastronomy", concept: "quantum computing", want: 0},
		{name: "empty query", query: "", concept: "quantum computing", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, LexicalScore(tt.query, tt.concept), 1e-9)
		})
	}
}

func TestEngine_FindSimilar_RanksByCosine(t *testing.T) {
	emb := &vectorEmbedder{vectors: map[string][]float64{
		"quantum computing": {1, 0, 0},
		"qubits":            {0.9, 0.1, 0},
		"baking bread":      {0, 0, 1},
	}}
	eng := NewEngine(func(o *Options) { o.Embedder = emb })
	ctx := context.Background()

	require.True(t, eng.AddNode(ctx, core.NewConceptNode("qubits", "", "research_agent", 0.5)))
	require.True(t, eng.AddNode(ctx, core.NewConceptNode("baking bread", "", "research_agent", 0.5)))

	scored, err := eng.FindSimilar(ctx, "quantum computing", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "qubits", scored[0].Node.Concept)
	assert.Greater(t, scored[0].Score, 0.9)
}

func TestEngine_FindSimilar_LexicalFallbackForDegradedNodes(t *testing.T) {
	// Query embedding succeeds but the node's did not: the node is still
	// reachable via lexical scoring.
	emb := &vectorEmbedder{vectors: map[string][]float64{
		"quantum computing": {1, 0, 0},
	}}
	eng := NewEngine(func(o *Options) { o.Embedder = emb })
	ctx := context.Background()

	degraded := core.NewConceptNode("quantum computing hardware", "", "research_agent", 0.5)
	require.True(t, eng.AddNode(ctx, degraded))
	stored, err := eng.Node(degraded.ID)
	require.NoError(t, err)
	require.True(t, stored.LexicalOnly)

	scored, err := eng.FindSimilar(ctx, "quantum computing", 10, 0.5)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, degraded.ID, scored[0].Node.ID)
	assert.InDelta(t, 0.8, scored[0].Score, 1e-9) // substring floor
}

func TestEngine_FindSimilar_EmbedderDownRanksEverythingLexically(t *testing.T) {
	emb := &vectorEmbedder{} // all Encode calls fail
	eng := NewEngine(func(o *Options) { o.Embedder = emb })
	ctx := context.Background()

	require.True(t, eng.AddNode(ctx, core.NewConceptNode("quantum computing", "", "research_agent", 0.5)))
	require.True(t, eng.AddNode(ctx, core.NewConceptNode("classical mechanics", "", "research_agent", 0.5)))

	scored, err := eng.FindSimilar(ctx, "quantum computing", 10, 0.1)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	assert.Equal(t, "quantum computing", scored[0].Node.Concept)
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
}

func TestEngine_FindSimilar_MinScoreAndLimit(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	concepts := []string{"quantum computing", "quantum entanglement", "quantum error correction", "sourdough starter"}
	for _, c := range concepts {
		n := core.NewConceptNode(c, "", "research_agent", 0.5)
		n.LexicalOnly = true
		require.True(t, eng.AddNode(ctx, n))
	}

	scored, err := eng.FindSimilar(ctx, "quantum", 2, 0.3)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, s := range scored {
		assert.GreaterOrEqual(t, s.Score, 0.3)
		assert.Contains(t, s.Node.Concept, "quantum")
	}
}

func TestEngine_FindSimilar_DeterministicTieBreak(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := core.ConceptNode{ID: "node-a", Concept: "graph theory", CreatedAt: base, LexicalOnly: true, QualityScore: 0.5}
	newer := core.ConceptNode{ID: "node-b", Concept: "graph theory basics", CreatedAt: base.Add(time.Hour), LexicalOnly: true, QualityScore: 0.5}
	require.True(t, eng.AddNode(ctx, older))
	require.True(t, eng.AddNode(ctx, newer))

	// Both score 0.8 via the substring floor; the newer node wins the tie.
	for i := 0; i < 5; i++ {
		scored, err := eng.FindSimilar(ctx, "graph", 10, 0)
		require.NoError(t, err)
		require.Len(t, scored, 2)
		assert.Equal(t, "node-b", scored[0].Node.ID)
		assert.Equal(t, "node-a", scored[1].Node.ID)
	}
}

func TestEngine_FindSimilarVector(t *testing.T) {
	eng := NewEngine()
	ctx := context.Background()

	withVec := core.ConceptNode{ID: "vec", Concept: "alpha", Embedding: []float64{1, 0}, CreatedAt: time.Now().UTC()}
	noVec := core.ConceptNode{ID: "novec", Concept: "beta", LexicalOnly: true, CreatedAt: time.Now().UTC()}
	require.True(t, eng.AddNode(ctx, withVec))
	require.True(t, eng.AddNode(ctx, noVec))

	scored := eng.FindSimilarVector(ctx, []float64{1, 0}, 10, 0.5)
	require.Len(t, scored, 1)
	assert.Equal(t, "vec", scored[0].Node.ID)
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
}
