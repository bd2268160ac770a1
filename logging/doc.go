// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a richer ConceptMeshLogger with contextual
// helpers (exploration, task, component) and domain specific helpers for agent
// calls, embedding lookups and exploration runs.
package logging
