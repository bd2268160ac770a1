// Package orchestrator owns the exploration lifecycle: it accepts requests,
// derives one task per capability per concept, dispatches them through the
// six fixed stages (research, connection, content, visual, multimedia,
// validation), merges successful findings into the knowledge graph and
// exposes status/result queries.
//
// Each exploration runs as one goroutine. Within a stage, tasks for sibling
// concepts run concurrently behind a WaitGroup barrier; stages execute
// strictly in order so later agents can consume earlier output. A failed task
// never fails the exploration: the orchestrator proceeds with partial results
// and annotates the failure on the task outcome.
package orchestrator
