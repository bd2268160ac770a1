package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/conceptmesh/core"
)

// seed is one concept queued for fan-out at a given depth.
type seed struct {
	concept string
	context string
	depth   int
}

// stageResult collects one stage's responses across all sibling seeds.
type stageResult struct {
	stage     core.TaskType
	responses []core.AgentResponse
}

// run drives one exploration end to end. It is the only writer of the
// exploration's state after submission (Pause/Resume excepted).
func (o *Orchestrator) run(id string) {
	start := time.Now()

	o.mu.RLock()
	exp := o.explorations[id]
	gate := o.gates[id]
	o.mu.RUnlock()

	ctx := context.Background()
	if o.explorationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.explorationTimeout)
		defer cancel()
	}

	if !o.transition(id, core.StateExecuting) {
		return
	}

	result := &core.ExplorationResult{ExplorationID: id, Concept: exp.Concept}
	stageConcepts := make(map[core.TaskType][]core.ConceptNode)
	visited := map[string]struct{}{core.NormalizeConcept(exp.Concept): {}}
	partialReason := ""

	frontier := []seed{{concept: exp.Concept, context: exp.Context, depth: 1}}
	for len(frontier) > 0 {
		depth := frontier[0].depth
		var discovered []core.DiscoveredConcept

		for _, stage := range core.StageOrder() {
			if err := gate.wait(ctx); err != nil {
				partialReason = "exploration timeout"
				frontier = nil
				break
			}

			sr := o.runStage(ctx, id, stage, frontier, result)
			for _, resp := range sr.responses {
				if !resp.Success {
					continue
				}
				nodes, found := o.merge(ctx, resp)
				stageConcepts[stage] = append(stageConcepts[stage], nodes...)
				discovered = append(discovered, found...)
			}
		}

		if frontier == nil {
			break
		}
		frontier = promote(discovered, visited, depth, exp.MaxDepth, o.expansionLimit)
	}

	// Group by the fixed stage order regardless of completion timing.
	for _, stage := range core.StageOrder() {
		result.Stages = append(result.Stages, core.StageConcepts{Stage: stage, Concepts: stageConcepts[stage]})
	}
	result.NodeCount = o.graph.NodeCount()
	result.EdgeCount = o.graph.EdgeCount()
	result.PartialReason = partialReason

	o.finish(id, result, start)
}

// runStage fans one stage out over all sibling seeds concurrently and blocks
// until every task in the stage is terminal.
func (o *Orchestrator) runStage(ctx context.Context, explorationID string, stage core.TaskType, seeds []seed, result *core.ExplorationResult) stageResult {
	tasks := make([]*core.ExplorationTask, len(seeds))
	o.mu.Lock()
	exp := o.explorations[explorationID]
	for i, s := range seeds {
		task := core.NewExplorationTask(explorationID, s.concept, s.context, stage, len(core.StageOrder())-stageIndex(stage), s.depth)
		tasks[i] = task
		o.tasks[task.ID] = task
		exp.TaskIDs = append(exp.TaskIDs, task.ID)
	}
	o.mu.Unlock()

	responses := make([]core.AgentResponse, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task *core.ExplorationTask) {
			defer wg.Done()
			responses[i] = o.dispatch(ctx, task)
		}(i, task)
	}
	wg.Wait()

	o.mu.Lock()
	for i, task := range tasks {
		outcome := core.TaskOutcome{
			TaskID: task.ID,
			Type:   task.Type,
			Status: task.Status,
			Agent:  responses[i].AgentName,
			Error:  responses[i].Error,
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	o.mu.Unlock()

	return stageResult{stage: stage, responses: responses}
}

// dispatch runs one task through its capability, containing every failure as
// response data.
func (o *Orchestrator) dispatch(ctx context.Context, task *core.ExplorationTask) core.AgentResponse {
	o.setTaskStatus(task, core.TaskRunning)

	capability, ok := o.caps[task.Type]
	if !ok {
		resp := core.NewAgentFailure(task.ID, string(task.Type), core.ErrorKindProvider,
			fmt.Errorf("no capability registered for %s", task.Type))
		o.finishTask(task, resp)
		return resp
	}

	taskCtx := ctx
	if o.taskTimeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, o.taskTimeout)
		defer cancel()
	}

	resp := capability.Process(taskCtx, task)
	if !resp.Success && resp.Error == core.ErrorKindProvider && errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
		resp.Error = core.ErrorKindTimeout
	}
	o.finishTask(task, resp)
	return resp
}

func (o *Orchestrator) setTaskStatus(task *core.ExplorationTask, status core.TaskStatus) {
	o.mu.Lock()
	task.Status = status
	o.mu.Unlock()
}

func (o *Orchestrator) finishTask(task *core.ExplorationTask, resp core.AgentResponse) {
	status := core.TaskDone
	if !resp.Success {
		status = core.TaskFailed
	}
	o.setTaskStatus(task, status)

	o.metrics.TaskCompleted(string(task.Type), string(status))
	if !resp.Success {
		o.metrics.TaskFailed(string(task.Type), string(resp.Error))
		o.logger.Warn("task failed",
			"exploration_id", task.ExplorationID, "task_id", task.ID,
			"task_type", string(task.Type), "error_kind", string(resp.Error), "error", resp.ErrorMsg)
	}
}

// merge folds one successful response into the graph: the seed concept's node
// is ensured, each discovered concept becomes a node, and a typed edge links
// it to the seed. Returns the nodes touched by this response and the raw
// discoveries for recursive expansion.
func (o *Orchestrator) merge(ctx context.Context, resp core.AgentResponse) ([]core.ConceptNode, []core.DiscoveredConcept) {
	seedNode := core.NewConceptNode(resp.Data.Concept, resp.Data.Summary, resp.AgentName, resp.Confidence)
	o.graph.AddNode(ctx, seedNode)
	seedNode, ok := o.graph.NodeByConcept(resp.Data.Concept)
	if !ok {
		return nil, nil
	}

	touched := []core.ConceptNode{seedNode}
	for _, dc := range resp.Data.Concepts {
		node := core.NewConceptNode(dc.Concept, dc.Content, resp.AgentName, dc.Weight)
		o.graph.AddNode(ctx, node)
		stored, ok := o.graph.NodeByConcept(dc.Concept)
		if !ok {
			continue
		}
		touched = append(touched, stored)

		relationship := dc.Relationship
		if relationship == "" {
			relationship = "related_to"
		}
		edge := core.NewGraphEdge(seedNode.ID, stored.ID, relationship, dc.Weight)
		if _, err := o.graph.AddEdge(ctx, edge); err != nil {
			o.logger.Warn("edge merge rejected", "error", err.Error())
		}
	}

	o.metrics.GraphSize(o.graph.NodeCount(), o.graph.EdgeCount())
	return touched, resp.Data.Concepts
}

func stageIndex(stage core.TaskType) int {
	for i, s := range core.StageOrder() {
		if s == stage {
			return i
		}
	}
	return 0
}

// promote picks up to limit unvisited concepts, strongest weight first, for
// depth+1, unless that would exceed maxDepth.
func promote(discovered []core.DiscoveredConcept, visited map[string]struct{}, depth, maxDepth, limit int) []seed {
	if depth >= maxDepth {
		return nil
	}

	sort.SliceStable(discovered, func(i, j int) bool { return discovered[i].Weight > discovered[j].Weight })

	var next []seed
	for _, dc := range discovered {
		key := core.NormalizeConcept(dc.Concept)
		if key == "" {
			continue
		}
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}
		next = append(next, seed{concept: dc.Concept, context: dc.Relationship, depth: depth + 1})
		if len(next) == limit {
			break
		}
	}
	return next
}

// finish records the terminal state, result and summary for an exploration.
func (o *Orchestrator) finish(id string, result *core.ExplorationResult, start time.Time) {
	now := time.Now().UTC()
	summary := fmt.Sprintf("explored %q: %d nodes, %d edges", result.Concept, result.NodeCount, result.EdgeCount)
	if result.PartialReason != "" {
		summary += " (partial: " + result.PartialReason + ")"
	}

	o.mu.Lock()
	exp := o.explorations[id]
	// A timeout may land while paused; completion always wins over the
	// paused gate.
	exp.State = core.StateCompleted
	exp.CompletedAt = &now
	exp.ResultSummary = summary
	o.results[id] = result
	ch := o.done[id]
	record := *exp.Clone()
	o.mu.Unlock()

	if o.store != nil {
		if err := o.store.SaveExploration(context.Background(), record); err != nil {
			o.logger.Warn("exploration write-through failed", "exploration_id", id, "error", err.Error())
		}
	}

	o.metrics.ExplorationCompleted()

	failed := 0
	for _, oc := range result.Outcomes {
		if oc.Status == core.TaskFailed {
			failed++
		}
	}
	// Loggers carrying the aggregate helper get the structured record; the
	// minimal interface gets a plain info line.
	if rl, ok := o.logger.(explorationRunLogger); ok {
		rl.LogExplorationRun(result.Concept, len(result.Outcomes), failed, result.NodeCount, time.Since(start))
	} else {
		o.logger.Info("exploration completed",
			"exploration_id", id, "concept", result.Concept,
			"task_count", len(result.Outcomes), "failed_tasks", failed,
			"node_count", result.NodeCount, "duration", time.Since(start).String())
	}

	close(ch)
}

// explorationRunLogger is the optional logger upgrade for aggregate
// per-exploration records. *logging.ConceptMeshLogger satisfies it.
type explorationRunLogger interface {
	LogExplorationRun(concept string, tasks, failedTasks, nodes int, dur time.Duration)
}
