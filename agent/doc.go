// Package agent implements the six capability agents dispatched by the
// orchestrator: research, connection, content, visual, multimedia and
// validation. A capability never returns an error across its boundary;
// failures are contained as data on the core.AgentResponse so a single broken
// collaborator degrades one task instead of aborting the exploration.
//
// All external calls (search, text generation) go through a
// resilience.Executor, so every capability inherits retry and circuit
// breaking without implementing either.
package agent
