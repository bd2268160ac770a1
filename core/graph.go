package core

import "time"

// ConceptNode is a unit of discovered knowledge in the graph. Identity is the
// ID; the normalized concept string is a uniqueness hint used for dedupe, not
// a hard key.
type ConceptNode struct {
	ID           string    `json:"id"`
	Concept      string    `json:"concept"`
	Content      string    `json:"content"`
	Embedding    []float64 `json:"embedding,omitempty"`
	QualityScore float64   `json:"quality_score"`
	CreatedAt    time.Time `json:"created_at"`
	SourceAgent  string    `json:"source_agent,omitempty"`
	// LexicalOnly marks nodes whose embedding could not be computed; similarity
	// scoring falls back to token overlap for these nodes only.
	LexicalOnly bool `json:"lexical_only,omitempty"`
}

// NewConceptNode creates a node with a fresh ID and UTC creation timestamp.
func NewConceptNode(concept, content, sourceAgent string, quality float64) ConceptNode {
	return ConceptNode{
		ID:           NewID(),
		Concept:      concept,
		Content:      content,
		QualityScore: quality,
		CreatedAt:    time.Now().UTC(),
		SourceAgent:  sourceAgent,
	}
}

// GraphEdge is a typed, weighted relationship between two concept nodes. Both
// endpoints must exist at insertion time; dangling edges are rejected by the
// graph engine.
type GraphEdge struct {
	ID               string    `json:"id"`
	SourceID         string    `json:"source_id"`
	TargetID         string    `json:"target_id"`
	RelationshipType string    `json:"relationship_type"`
	Weight           float64   `json:"weight"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGraphEdge creates an edge with a fresh ID and UTC creation timestamp.
func NewGraphEdge(sourceID, targetID, relationshipType string, weight float64) GraphEdge {
	return GraphEdge{
		ID:               NewID(),
		SourceID:         sourceID,
		TargetID:         targetID,
		RelationshipType: relationshipType,
		Weight:           weight,
		CreatedAt:        time.Now().UTC(),
	}
}

// ScoredNode pairs a node with its similarity score for ranked retrieval.
type ScoredNode struct {
	Node  ConceptNode `json:"node"`
	Score float64     `json:"score"`
}

// Subgraph is the induced subgraph returned by breadth-first expansion: the
// visited node set plus every edge whose both endpoints were visited.
type Subgraph struct {
	Nodes []ConceptNode `json:"nodes"`
	Edges []GraphEdge   `json:"edges"`
}
