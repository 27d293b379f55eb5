// Package engine implements the execution engine: it advances a
// WorkflowExecution through a Workflow's graph one node at a time,
// consulting package condition at DECISION/CONDITION nodes, running
// TASK/ACTION node logic, and enforcing the step cap and per-step
// timeout spec.md §4.3 and §5 require.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/condition"
	"github.com/smilemakc/telemetryflow/pkg/models"
)

// Engine drives executions for many workflows concurrently. One Engine
// instance may serve many executions at once; an individual
// WorkflowExecution is only ever advanced by one worker at a time, via
// the per-execution lock obtained from locks.
type Engine struct {
	opts    ExecutionOptions
	actions *actionCache
	locks   sync.Map // models.ExecutionID -> *sync.Mutex
	clock   func() time.Time
}

// New constructs an Engine. A nil clock defaults to time.Now; supplying
// one is how tests keep Execute deterministic.
func New(opts ExecutionOptions, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		opts:    opts,
		actions: newActionCache(opts.ActionCacheCapacity),
		clock:   clock,
	}
}

func (e *Engine) now() time.Time { return e.clock() }

func (e *Engine) lockFor(id models.ExecutionID) *sync.Mutex {
	actual, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

var emptyTelemetry = &models.TelemetryData{Metrics: map[string]models.MetricValue{}}

// Execute starts a new execution at the workflow's first start node and
// steps it to a terminal status, honoring MaxNodeSteps and the
// per-execution lock. If the workflow is not ACTIVE, the execution is
// created and immediately failed, per spec.md §4.3.
func (e *Engine) Execute(workflow *models.Workflow, triggerData *models.TelemetryData) *models.WorkflowExecution {
	now := e.now()

	var startNode models.NodeID
	if starts := workflow.StartNodes(); len(starts) > 0 {
		startNode = starts[0].ID
	}

	exec := models.NewWorkflowExecution(models.NewExecutionID(), workflow.ID(), workflow.OrganizationID(), startNode, triggerData, now)

	if workflow.Status() != models.WorkflowStatusActive {
		_ = exec.Fail("workflow not active", e.now())
		return exec
	}

	mu := e.lockFor(exec.ID())
	mu.Lock()
	defer mu.Unlock()

	for e.CanContinue(workflow, exec) {
		e.executeStepLocked(workflow, exec, triggerData)
	}
	if exec.Status() == models.ExecutionStatusRunning && exec.StepCount() >= e.opts.maxSteps() {
		_ = exec.Fail("step limit exceeded", e.now())
	}
	return exec
}

// CanContinue reports whether exec may take another step: it must be
// RUNNING, sitting at a current node, and under the step cap.
func (e *Engine) CanContinue(workflow *models.Workflow, exec *models.WorkflowExecution) bool {
	if exec.Status() != models.ExecutionStatusRunning {
		return false
	}
	if _, ok := exec.CurrentNodeID(); !ok {
		return false
	}
	return exec.StepCount() < e.opts.maxSteps()
}

// ExecuteStep performs exactly one node transition on exec, locking out
// concurrent steppers of the same execution. Failures (missing
// conditions, condition evaluation errors, step timeouts, step-limit
// exhaustion) are recorded on exec itself via Fail, never returned as a
// Go error — the mutated execution is always the contract's result.
//
// This is the public single-step entry point; it acquires the
// per-execution lock itself. Execute's own stepping loop already holds
// that lock for the lifetime of the run, so it calls executeStepLocked
// directly instead of this, to avoid re-locking the same mutex from the
// same goroutine.
func (e *Engine) ExecuteStep(workflow *models.Workflow, exec *models.WorkflowExecution, triggerData *models.TelemetryData) *models.WorkflowExecution {
	mu := e.lockFor(exec.ID())
	mu.Lock()
	defer mu.Unlock()

	return e.executeStepLocked(workflow, exec, triggerData)
}

// executeStepLocked is ExecuteStep's body, assuming the caller already
// holds exec's per-execution lock.
func (e *Engine) executeStepLocked(workflow *models.Workflow, exec *models.WorkflowExecution, triggerData *models.TelemetryData) *models.WorkflowExecution {
	if exec.Status() != models.ExecutionStatusRunning {
		return exec
	}
	nodeID, ok := exec.CurrentNodeID()
	if !ok {
		_ = exec.Complete(e.now())
		return exec
	}
	if exec.StepCount() >= e.opts.maxSteps() {
		_ = exec.Fail("step limit exceeded", e.now())
		return exec
	}

	node, found := workflow.FindNode(nodeID)
	if !found {
		_ = exec.Fail(fmt.Sprintf("node %s not found", nodeID), e.now())
		return exec
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.opts.stepTimeout())
	defer cancel()

	enteredAt := e.now()
	next, stepErr := e.stepNode(ctx, workflow, node, exec, triggerData)
	exitedAt := e.now()

	if ctx.Err() == context.DeadlineExceeded {
		exec.AdvanceTo(nodeID, enteredAt, exitedAt, "step timeout")
		_ = exec.Fail("step timeout", exitedAt)
		return exec
	}

	if stepErr != nil {
		exec.AdvanceTo(nodeID, enteredAt, exitedAt, stepErr.Error())
		_ = exec.Fail(fmt.Sprintf("%s: %s", nodeID, stepErr.Error()), exitedAt)
		return exec
	}

	if next == nil {
		exec.AdvanceTo(nodeID, enteredAt, exitedAt, "")
		_ = exec.Complete(exitedAt)
		return exec
	}

	exec.AdvanceTo(*next, enteredAt, exitedAt, "")
	return exec
}

// stepNode dispatches per spec.md §4.3's node-type table, returning the
// next node id, or (nil, nil) when the node has no successor (the
// caller completes the execution), or a non-nil error when the step
// itself failed.
func (e *Engine) stepNode(ctx context.Context, workflow *models.Workflow, node models.WorkflowNode, exec *models.WorkflowExecution, triggerData *models.TelemetryData) (*models.NodeID, error) {
	switch node.Type {
	case models.NodeTypeEnd:
		return nil, nil

	case models.NodeTypeTask:
		if err := runTask(node, exec); err != nil {
			return nil, err
		}
		return firstOrNil(workflow.OutgoingEdges(node.ID)), nil

	case models.NodeTypeAction:
		if err := e.runAction(node, exec); err != nil {
			return nil, err
		}
		return firstOrNil(workflow.OutgoingEdges(node.ID)), nil

	case models.NodeTypeDecision, models.NodeTypeCondition:
		return e.stepDecision(node, workflow, exec, triggerData)

	default: // START, INPUT, OUTPUT, and any future pass-through type
		return firstOrNil(workflow.OutgoingEdges(node.ID)), nil
	}
}

func firstOrNil(edges []models.WorkflowEdge) *models.NodeID {
	target, ok := firstTarget(edges)
	if !ok {
		return nil
	}
	return &target
}

func (e *Engine) stepDecision(node models.WorkflowNode, workflow *models.Workflow, exec *models.WorkflowExecution, triggerData *models.TelemetryData) (*models.NodeID, error) {
	if !node.HasConditions() {
		return nil, fmt.Errorf("Decision node %s has no conditions", node.ID)
	}
	raw := node.Configuration["conditions"]

	data := triggerData
	if data == nil {
		data = exec.TriggerData()
	}
	if data == nil {
		data = emptyTelemetry
	}

	result, err := condition.Evaluate(raw, data)
	if err != nil {
		return nil, err
	}

	ctxMap := exec.Context()
	ctxMap[fmt.Sprintf("condition_result_%s", node.ID)] = result
	ctxMap["condition_evaluation_time"] = e.now()

	label := "FALSE"
	if result {
		label = "TRUE"
	}

	edges := workflow.OutgoingEdges(node.ID)
	target, ok := route(edges, result)
	if !ok {
		ctxMap["routing_decision"] = fmt.Sprintf("Condition %s -> COMPLETE", label)
		return nil, nil
	}
	ctxMap["routing_decision"] = fmt.Sprintf("Condition %s -> Node %s", label, target)
	return &target, nil
}

// PossibleNextNodes predicts the successor(s) of currentNodeID without
// mutating any execution state: for a DECISION/CONDITION node with
// triggerData available, it returns the single predicted successor;
// otherwise it returns every successor.
func (e *Engine) PossibleNextNodes(workflow *models.Workflow, currentNodeID models.NodeID, triggerData *models.TelemetryData) []models.WorkflowNode {
	node, ok := workflow.FindNode(currentNodeID)
	if !ok {
		return nil
	}

	if node.Type.IsBranching() && node.HasConditions() && triggerData != nil {
		if raw, ok := node.Configuration["conditions"]; ok {
			if result, err := condition.Evaluate(raw, triggerData); err == nil {
				if target, ok := route(workflow.OutgoingEdges(currentNodeID), result); ok {
					if n, found := workflow.FindNode(target); found {
						return []models.WorkflowNode{n}
					}
				}
			}
		}
	}

	return workflow.NextNodes(currentNodeID)
}
