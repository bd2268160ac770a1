package agent

import (
	"context"
	"errors"
	"time"

	"github.com/hupe1980/conceptmesh/core"
	"github.com/hupe1980/conceptmesh/logging"
	"github.com/hupe1980/conceptmesh/resilience"
)

// Capability is one agent in the pipeline. Process is invoked exactly once per
// task attempt by the orchestrator and must not return an error: failures are
// reported on the response with an ErrorKind.
type Capability interface {
	// Name is the agent's stable identifier (e.g. "research_agent").
	Name() string
	// Type is the task type this capability serves.
	Type() core.TaskType
	// Process executes the task. The context carries the per-attempt deadline.
	Process(ctx context.Context, task *core.ExplorationTask) core.AgentResponse
}

// Set maps task types to their capability. The orchestrator dispatches
// through it; a missing entry fails the task with ErrorKindProvider.
type Set map[core.TaskType]Capability

// NewSet indexes capabilities by task type. Later entries win on collision.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c.Type()] = c
	}
	return s
}

// Options carry the collaborators shared by every capability constructor.
type Options struct {
	// Executor guards external calls. Nil means unguarded direct calls.
	Executor *resilience.Executor
	// Logger receives per-call diagnostics.
	Logger logging.Logger
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return opts
}

// guard routes fn through the executor when one is configured.
func guard(ctx context.Context, exec *resilience.Executor, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	if exec == nil {
		return fn(ctx)
	}
	return exec.DoValue(ctx, operation, fn)
}

// errEmptyCompletion marks a blank model completion, treated as malformed.
var errEmptyCompletion = errors.New("empty completion")

// classifyError maps a guarded-call error to the contained ErrorKind carried
// on a failed response.
func classifyError(err error) core.ErrorKind {
	var open *resilience.CircuitOpenError
	if errors.As(err, &open) {
		return core.ErrorKindCircuitOpen
	}
	var exhausted *resilience.RetryExhaustedError
	if errors.As(err, &exhausted) {
		if errors.Is(exhausted.Err, context.DeadlineExceeded) {
			return core.ErrorKindTimeout
		}
		return core.ErrorKindRetryExhausted
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return core.ErrorKindTimeout
	}
	return core.ErrorKindProvider
}

// logCall emits one diagnostic line per capability invocation.
func logCall(logger logging.Logger, agent, taskID string, start time.Time, resp core.AgentResponse) {
	if resp.Success {
		logger.Debug("agent call completed",
			"agent", agent, "task_id", taskID, "duration", time.Since(start).String())
		return
	}
	logger.Warn("agent call failed",
		"agent", agent, "task_id", taskID, "duration", time.Since(start).String(),
		"error_kind", string(resp.Error), "error", resp.ErrorMsg)
}
