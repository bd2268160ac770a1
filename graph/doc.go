// Package graph implements the knowledge graph engine: the single owner of
// the node/edge collections accumulated across explorations, with
// embedding-based similarity search and breadth-first subgraph extraction.
//
// Consistency model: one RWMutex guards the node map, edge map and adjacency
// index, so no reader ever observes a half-inserted edge and no edge ever
// references a missing node (enforced at insertion time, not by cleanup).
// Embedding lookups happen outside the lock; suspension never occurs inside a
// graph mutation.
package graph
