package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
)

// Options configure an Engine.
type Options struct {
	// Embedder computes vectors for nodes inserted without one. Nil disables
	// embedding entirely; all similarity scoring falls back to lexical.
	Embedder core.Embedder
	// Store receives best-effort write-through of inserted nodes and edges.
	// The engine behaves identically with or without it.
	Store core.Store
	// Logger receives diagnostics.
	Logger logging.Logger
}

// Engine is the in-memory knowledge graph. All access goes through its
// methods; internal maps are never exposed.
type Engine struct {
	embedder core.Embedder
	store    core.Store
	logger   logging.Logger

	mu        sync.RWMutex
	nodes     map[string]core.ConceptNode
	edges     map[string]core.GraphEdge
	adjacency map[string][]string // node id -> touching edge ids
	byConcept map[string]string   // normalized concept -> best node id
	edgeKeys  map[string]string   // source|target|type -> edge id
}

// NewEngine constructs an empty Engine with optional overrides.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Engine{
		embedder:  opts.Embedder,
		store:     opts.Store,
		logger:    opts.Logger,
		nodes:     make(map[string]core.ConceptNode),
		edges:     make(map[string]core.GraphEdge),
		adjacency: make(map[string][]string),
		byConcept: make(map[string]string),
		edgeKeys:  make(map[string]string),
	}
}

// Load seeds the engine from the configured store. Call before concurrent use.
func (e *Engine) Load(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	nodes, err := e.store.LoadNodes(ctx)
	if err != nil {
		return fmt.Errorf("load nodes: %w", err)
	}
	edges, err := e.store.LoadEdges(ctx)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, n := range nodes {
		e.insertNodeLocked(n)
	}
	for _, edge := range edges {
		if _, ok := e.nodes[edge.SourceID]; !ok {
			continue
		}
		if _, ok := e.nodes[edge.TargetID]; !ok {
			continue
		}
		e.insertEdgeLocked(edge)
	}
	return nil
}

// AddNode inserts a node unless one with the same normalized concept already
// exists with equal-or-higher quality, in which case it is a no-op returning
// false. When the node carries no embedding it is computed lazily through the
// configured embedder; on embedding failure the node is still inserted and
// flagged for lexical-only matching.
func (e *Engine) AddNode(ctx context.Context, node core.ConceptNode) bool {
	normalized := core.NormalizeConcept(node.Concept)
	if normalized == "" {
		return false
	}

	if e.duplicateWithBetterQuality(normalized, node.QualityScore) {
		return false
	}

	if node.Embedding == nil && !node.LexicalOnly && e.embedder != nil {
		vec, err := e.embedder.Encode(ctx, node.Concept)
		switch {
		case err == nil:
			node.Embedding = vec
		case errors.Is(err, core.ErrEmbeddingUnavailable):
			node.LexicalOnly = true
			e.logger.Warn("embedding unavailable, node degraded to lexical matching", "concept", node.Concept)
		default:
			node.LexicalOnly = true
			e.logger.Warn("embedding failed", "concept", node.Concept, "error", err.Error())
		}
	}

	e.mu.Lock()
	// Re-check under the write lock; a concurrent insert may have won.
	if e.betterQualityLocked(normalized, node.QualityScore) {
		e.mu.Unlock()
		return false
	}
	e.insertNodeLocked(node)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SaveNode(ctx, node); err != nil {
			e.logger.Warn("node write-through failed", "node_id", node.ID, "error", err.Error())
		}
	}
	return true
}

// duplicateWithBetterQuality takes a read lock for the cheap pre-check done
// before any embedding work.
func (e *Engine) duplicateWithBetterQuality(normalized string, quality float64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.betterQualityLocked(normalized, quality)
}

func (e *Engine) betterQualityLocked(normalized string, quality float64) bool {
	id, ok := e.byConcept[normalized]
	if !ok {
		return false
	}
	existing, ok := e.nodes[id]
	return ok && existing.QualityScore >= quality
}

func (e *Engine) insertNodeLocked(node core.ConceptNode) {
	e.nodes[node.ID] = node
	normalized := core.NormalizeConcept(node.Concept)
	if cur, ok := e.byConcept[normalized]; !ok || e.nodes[cur].QualityScore < node.QualityScore {
		e.byConcept[normalized] = node.ID
	}
}

func edgeKey(edge core.GraphEdge) string {
	return edge.SourceID + "|" + edge.TargetID + "|" + edge.RelationshipType
}

// AddEdge inserts an edge. Both endpoints must exist: a missing endpoint
// yields a GraphError (dangling reference) and leaves the edge set unchanged.
// A duplicate edge (same source, target and relationship type) is an
// idempotent no-op returning false.
func (e *Engine) AddEdge(ctx context.Context, edge core.GraphEdge) (bool, error) {
	e.mu.Lock()
	if _, ok := e.nodes[edge.SourceID]; !ok {
		e.mu.Unlock()
		return false, core.NewDanglingReferenceError(edge.SourceID)
	}
	if _, ok := e.nodes[edge.TargetID]; !ok {
		e.mu.Unlock()
		return false, core.NewDanglingReferenceError(edge.TargetID)
	}
	if _, dup := e.edgeKeys[edgeKey(edge)]; dup {
		e.mu.Unlock()
		return false, nil
	}
	e.insertEdgeLocked(edge)
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SaveEdge(ctx, edge); err != nil {
			e.logger.Warn("edge write-through failed", "edge_id", edge.ID, "error", err.Error())
		}
	}
	return true, nil
}

func (e *Engine) insertEdgeLocked(edge core.GraphEdge) {
	e.edges[edge.ID] = edge
	e.edgeKeys[edgeKey(edge)] = edge.ID
	e.adjacency[edge.SourceID] = append(e.adjacency[edge.SourceID], edge.ID)
	if edge.TargetID != edge.SourceID {
		e.adjacency[edge.TargetID] = append(e.adjacency[edge.TargetID], edge.ID)
	}
}

// Node returns the node with the given id.
func (e *Engine) Node(id string) (core.ConceptNode, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	node, ok := e.nodes[id]
	if !ok {
		return core.ConceptNode{}, core.NewNotFoundError("node", id)
	}
	return node, nil
}

// NodeByConcept returns the best node registered for the normalized concept.
func (e *Engine) NodeByConcept(concept string) (core.ConceptNode, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	id, ok := e.byConcept[core.NormalizeConcept(concept)]
	if !ok {
		return core.ConceptNode{}, false
	}
	node, ok := e.nodes[id]
	return node, ok
}

// GetNeighbors returns all nodes connected to nodeID by any edge, regardless
// of direction.
func (e *Engine) GetNeighbors(nodeID string) ([]core.ConceptNode, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.nodes[nodeID]; !ok {
		return nil, core.NewNotFoundError("node", nodeID)
	}

	seen := make(map[string]struct{})
	var neighbors []core.ConceptNode
	for _, edgeID := range e.adjacency[nodeID] {
		edge := e.edges[edgeID]
		otherID := edge.TargetID
		if otherID == nodeID {
			otherID = edge.SourceID
		}
		if otherID == nodeID {
			continue // self-loop
		}
		if _, dup := seen[otherID]; dup {
			continue
		}
		seen[otherID] = struct{}{}
		neighbors = append(neighbors, e.nodes[otherID])
	}

	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].ID < neighbors[j].ID })
	return neighbors, nil
}

// GetSubgraph expands breadth-first from centerID up to depth hops and
// returns the induced subgraph: every visited node plus every edge whose both
// endpoints were visited. Cycle-safe; a node is never visited twice.
func (e *Engine) GetSubgraph(centerID string, depth int) (core.Subgraph, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	center, ok := e.nodes[centerID]
	if !ok {
		return core.Subgraph{}, core.NewNotFoundError("node", centerID)
	}

	visited := map[string]struct{}{centerID: {}}
	nodes := []core.ConceptNode{center}
	frontier := []string{centerID}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, edgeID := range e.adjacency[id] {
				edge := e.edges[edgeID]
				otherID := edge.TargetID
				if otherID == id {
					otherID = edge.SourceID
				}
				if _, dup := visited[otherID]; dup {
					continue
				}
				visited[otherID] = struct{}{}
				nodes = append(nodes, e.nodes[otherID])
				next = append(next, otherID)
			}
		}
		frontier = next
	}

	var edges []core.GraphEdge
	for _, edge := range e.edges {
		if _, ok := visited[edge.SourceID]; !ok {
			continue
		}
		if _, ok := visited[edge.TargetID]; !ok {
			continue
		}
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return core.Subgraph{Nodes: nodes, Edges: edges}, nil
}

// NodeCount reports the number of stored nodes.
func (e *Engine) NodeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.nodes)
}

// EdgeCount reports the number of stored edges.
func (e *Engine) EdgeCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.edges)
}
