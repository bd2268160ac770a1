// Package core provides the foundational domain types, ports and error
// taxonomy used by ConceptMesh. It defines the core abstractions for:
//
//   - Explorations (stateful end-to-end runs of the expansion pipeline)
//   - ExplorationTasks (per-capability units of work inside an exploration)
//   - AgentResponses (failure-as-data results crossing the agent boundary)
//   - ConceptNodes / GraphEdges (accumulated knowledge graph records)
//   - Pluggable ports for embeddings, text generation, search, caching and
//     durable persistence
//
// The package intentionally keeps implementation concerns (graph storage,
// orchestration, concrete agents, provider SDKs) out of scope, exposing small
// interfaces so that backends can be swapped without touching the pipeline.
package core
