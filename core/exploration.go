package core

import (
	"strings"
	"time"
)

// State is the lifecycle state of an Exploration.
type State string

const (
	// StatePending marks an accepted exploration that has not started executing.
	StatePending State = "pending"
	// StateExecuting marks an exploration whose task pipeline is running.
	StateExecuting State = "executing"
	// StatePaused marks an executing exploration whose next stage is gated.
	StatePaused State = "paused"
	// StateCompleted is terminal; results are available.
	StateCompleted State = "completed"
	// StateFailed is terminal; reached only when up-front validation fails.
	StateFailed State = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool { return s == StateCompleted || s == StateFailed }

// CanTransition reports whether the lifecycle allows moving from s to next.
// Valid transitions: pending→executing, pending→failed, executing→paused,
// paused→executing, executing→completed, executing→failed.
func (s State) CanTransition(next State) bool {
	switch s {
	case StatePending:
		return next == StateExecuting || next == StateFailed
	case StateExecuting:
		return next == StatePaused || next == StateCompleted || next == StateFailed
	case StatePaused:
		return next == StateExecuting
	default:
		return false
	}
}

// ExplorationRequest is the immutable input submitted by a caller.
type ExplorationRequest struct {
	// Concept seeds the exploration. Must be non-empty after trimming.
	Concept string `json:"concept" validate:"required"`
	// Context optionally narrows or flavors the exploration.
	Context string `json:"context,omitempty"`
	// MaxDepth bounds recursive expansion of discovered concepts. Values
	// below 1 are normalized to the default of 3.
	MaxDepth int `json:"max_depth,omitempty" validate:"omitempty,gte=1,lte=10"`
}

// DefaultMaxDepth applies when a request leaves MaxDepth unset.
const DefaultMaxDepth = 3

// Depth returns the effective expansion depth for the request.
func (r ExplorationRequest) Depth() int {
	if r.MaxDepth < 1 {
		return DefaultMaxDepth
	}
	return r.MaxDepth
}

// Exploration tracks one end-to-end run of the pipeline for a seed concept.
// It is owned exclusively by the orchestrator and mutated only through the
// transitions encoded in State.CanTransition.
type Exploration struct {
	ID            string     `json:"id"`
	Concept       string     `json:"concept"`
	Context       string     `json:"context,omitempty"`
	MaxDepth      int        `json:"max_depth"`
	State         State      `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	TaskIDs       []string   `json:"task_ids"`
	ResultSummary string     `json:"result_summary,omitempty"`
}

// Clone returns a deep copy so stored explorations can be handed out without
// exposing internal state to mutation.
func (e *Exploration) Clone() *Exploration {
	cp := *e
	cp.TaskIDs = append([]string(nil), e.TaskIDs...)
	if e.CompletedAt != nil {
		t := *e.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}

// TaskType identifies which agent capability a task is bound to.
type TaskType string

// The six fixed capabilities, in dispatch order. Later stages consume the
// output of earlier ones (content generation builds on research facts).
const (
	TaskResearch   TaskType = "research"
	TaskConnection TaskType = "connection"
	TaskContent    TaskType = "content"
	TaskVisual     TaskType = "visual"
	TaskMultimedia TaskType = "multimedia"
	TaskValidation TaskType = "validation"
)

// StageOrder is the fixed dispatch order of the capability pipeline.
func StageOrder() []TaskType {
	return []TaskType{TaskResearch, TaskConnection, TaskContent, TaskVisual, TaskMultimedia, TaskValidation}
}

// TaskStatus is the per-task lifecycle within an exploration.
type TaskStatus string

const (
	// TaskPending marks a created but not yet dispatched task.
	TaskPending TaskStatus = "pending"
	// TaskRunning marks a dispatched task awaiting its agent.
	TaskRunning TaskStatus = "running"
	// TaskDone is terminal; the agent produced a successful response.
	TaskDone TaskStatus = "done"
	// TaskFailed is terminal; the agent exhausted its attempts.
	TaskFailed TaskStatus = "failed"
)

// Terminal reports whether the task status is final.
func (s TaskStatus) Terminal() bool { return s == TaskDone || s == TaskFailed }

// ExplorationTask is a unit of work dispatched to a single agent capability.
// Tasks are created when an exploration enters the executing state and never
// outlive or cross explorations.
type ExplorationTask struct {
	ID            string     `json:"id"`
	ExplorationID string     `json:"exploration_id"`
	Concept       string     `json:"concept"`
	Context       string     `json:"context,omitempty"`
	Type          TaskType   `json:"type"`
	Priority      int        `json:"priority"`
	Depth         int        `json:"depth"`
	Status        TaskStatus `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewExplorationTask creates a pending task for the given capability.
func NewExplorationTask(explorationID, concept, context string, taskType TaskType, priority, depth int) *ExplorationTask {
	return &ExplorationTask{
		ID:            NewID(),
		ExplorationID: explorationID,
		Concept:       concept,
		Context:       context,
		Type:          taskType,
		Priority:      priority,
		Depth:         depth,
		Status:        TaskPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// StageConcepts groups the concepts discovered by one capability stage.
type StageConcepts struct {
	Stage    TaskType      `json:"stage"`
	Concepts []ConceptNode `json:"concepts"`
}

// TaskOutcome annotates a task's terminal status and, for failures, the
// error kind captured from its agent. Failures never abort an exploration;
// callers inspect outcomes to see what degraded.
type TaskOutcome struct {
	TaskID  string     `json:"task_id"`
	Type    TaskType   `json:"type"`
	Status  TaskStatus `json:"status"`
	Agent   string     `json:"agent,omitempty"`
	Error   ErrorKind  `json:"error,omitempty"`
	Elapsed string     `json:"elapsed,omitempty"`
}

// ExplorationResult is the fan-in of a completed exploration. Stages always
// appear in the fixed dispatch order regardless of actual completion timing.
type ExplorationResult struct {
	ExplorationID string          `json:"exploration_id"`
	Concept       string          `json:"concept"`
	Stages        []StageConcepts `json:"stages"`
	Outcomes      []TaskOutcome   `json:"outcomes"`
	NodeCount     int             `json:"node_count"`
	EdgeCount     int             `json:"edge_count"`
	PartialReason string          `json:"partial_reason,omitempty"`
}

// NormalizeConcept canonicalizes a concept string for dedupe hints, visited
// sets and cache keys: lowercased with runs of whitespace collapsed to one
// space.
func NormalizeConcept(concept string) string {
	return strings.Join(strings.Fields(strings.ToLower(concept)), " ")
}
