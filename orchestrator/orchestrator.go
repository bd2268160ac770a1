package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/conceptmesh/agent"
	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/graph"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/metrics"
)

// DefaultExpansionLimit bounds how many newly discovered concepts per depth
// level are promoted to the next level's fan-out. Unbounded promotion would
// grow the task count geometrically with depth.
const DefaultExpansionLimit = 3

// Options configure an Orchestrator.
type Options struct {
	// Capabilities maps task types to agents. All six stages should be
	// covered; a missing capability fails its tasks with ErrorKindProvider.
	Capabilities agent.Set
	// Graph receives merged discoveries.
	Graph *graph.Engine
	// Store, when set, durably records finished explorations (best effort).
	Store core.Store
	// Logger receives lifecycle diagnostics.
	Logger logging.Logger
	// Metrics, when set, receives pipeline counters. Nil drops them.
	Metrics *metrics.Metrics
	// TaskTimeout bounds one task dispatch end to end, including retries.
	// Zero disables the bound.
	TaskTimeout time.Duration
	// ExplorationTimeout bounds a whole exploration. On expiry the
	// exploration completes with whatever partial results exist. Zero
	// disables the bound.
	ExplorationTimeout time.Duration
	// ExpansionLimit bounds per-level promotion of discovered concepts.
	ExpansionLimit int
}

// Orchestrator is the top-level state machine over explorations. All exported
// methods are safe for concurrent use.
type Orchestrator struct {
	caps               agent.Set
	graph              *graph.Engine
	store              core.Store
	logger             logging.Logger
	metrics            *metrics.Metrics
	taskTimeout        time.Duration
	explorationTimeout time.Duration
	expansionLimit     int

	mu           sync.RWMutex
	explorations map[string]*core.Exploration
	tasks        map[string]*core.ExplorationTask
	results      map[string]*core.ExplorationResult
	gates        map[string]*pauseGate
	done         map[string]chan struct{}
}

// New constructs an Orchestrator. A nil graph is replaced with an empty
// in-memory engine so the orchestrator is usable with zero configuration.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		ExpansionLimit: DefaultExpansionLimit,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Graph == nil {
		opts.Graph = graph.NewEngine()
	}
	if opts.ExpansionLimit < 1 {
		opts.ExpansionLimit = DefaultExpansionLimit
	}

	return &Orchestrator{
		caps:               opts.Capabilities,
		graph:              opts.Graph,
		store:              opts.Store,
		logger:             opts.Logger,
		metrics:            opts.Metrics,
		taskTimeout:        opts.TaskTimeout,
		explorationTimeout: opts.ExplorationTimeout,
		expansionLimit:     opts.ExpansionLimit,
		explorations:       make(map[string]*core.Exploration),
		tasks:              make(map[string]*core.ExplorationTask),
		results:            make(map[string]*core.ExplorationResult),
		gates:              make(map[string]*pauseGate),
		done:               make(map[string]chan struct{}),
	}
}

// Submit validates the request, registers a pending exploration and schedules
// its asynchronous execution. It returns the exploration id immediately.
func (o *Orchestrator) Submit(req core.ExplorationRequest) (string, error) {
	if strings.TrimSpace(req.Concept) == "" {
		return "", &core.ValidationError{Field: "concept", Message: "must be non-empty"}
	}

	exp := &core.Exploration{
		ID:        core.NewID(),
		Concept:   strings.TrimSpace(req.Concept),
		Context:   req.Context,
		MaxDepth:  req.Depth(),
		State:     core.StatePending,
		CreatedAt: time.Now().UTC(),
	}

	o.mu.Lock()
	o.explorations[exp.ID] = exp
	o.gates[exp.ID] = newPauseGate()
	o.done[exp.ID] = make(chan struct{})
	o.mu.Unlock()

	o.metrics.ExplorationStarted()
	o.logger.Info("exploration submitted", "exploration_id", exp.ID, "concept", exp.Concept, "max_depth", exp.MaxDepth)

	go o.run(exp.ID)
	return exp.ID, nil
}

// Status returns a copy of the exploration record.
func (o *Orchestrator) Status(id string) (*core.Exploration, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	exp, ok := o.explorations[id]
	if !ok {
		return nil, core.NewNotFoundError("exploration", id)
	}
	return exp.Clone(), nil
}

// Pause gates the exploration before its next stage. Valid only while
// executing; in-flight tasks run to completion.
func (o *Orchestrator) Pause(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	exp, ok := o.explorations[id]
	if !ok {
		return core.NewNotFoundError("exploration", id)
	}
	if !exp.State.CanTransition(core.StatePaused) {
		return &core.InvalidStateError{Op: "pause", Current: exp.State}
	}
	exp.State = core.StatePaused
	o.gates[id].pause()
	o.logger.Info("exploration paused", "exploration_id", id)
	return nil
}

// Resume reopens a paused exploration's stage gate.
func (o *Orchestrator) Resume(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	exp, ok := o.explorations[id]
	if !ok {
		return core.NewNotFoundError("exploration", id)
	}
	if exp.State != core.StatePaused {
		return &core.InvalidStateError{Op: "resume", Current: exp.State}
	}
	exp.State = core.StateExecuting
	o.gates[id].resume()
	o.logger.Info("exploration resumed", "exploration_id", id)
	return nil
}

// Results returns the fan-in of a completed exploration. Non-terminal
// explorations yield an InvalidStateError.
func (o *Orchestrator) Results(id string) (*core.ExplorationResult, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	exp, ok := o.explorations[id]
	if !ok {
		return nil, core.NewNotFoundError("exploration", id)
	}
	if !exp.State.Terminal() {
		return nil, &core.InvalidStateError{Op: "results", Current: exp.State}
	}
	result, ok := o.results[id]
	if !ok {
		return nil, core.NewNotFoundError("results", id)
	}
	cp := *result
	cp.Stages = append([]core.StageConcepts(nil), result.Stages...)
	cp.Outcomes = append([]core.TaskOutcome(nil), result.Outcomes...)
	return &cp, nil
}

// Task returns a copy of one task record.
func (o *Orchestrator) Task(id string) (*core.ExplorationTask, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	task, ok := o.tasks[id]
	if !ok {
		return nil, core.NewNotFoundError("task", id)
	}
	cp := *task
	return &cp, nil
}

// Wait blocks until the exploration reaches a terminal state or the context
// expires.
func (o *Orchestrator) Wait(ctx context.Context, id string) error {
	o.mu.RLock()
	ch, ok := o.done[id]
	o.mu.RUnlock()
	if !ok {
		return core.NewNotFoundError("exploration", id)
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transition applies a lifecycle transition, dropping illegal ones (the
// runner may race a concurrent pause).
func (o *Orchestrator) transition(id string, next core.State) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	exp, ok := o.explorations[id]
	if !ok || !exp.State.CanTransition(next) {
		return false
	}
	exp.State = next
	return true
}
