package models

import "time"

// ExecutionStatus is the lifecycle state of a WorkflowExecution.
type ExecutionStatus string

const (
	ExecutionStatusRunning   ExecutionStatus = "RUNNING"
	ExecutionStatusWaiting   ExecutionStatus = "WAITING"
	ExecutionStatusPaused    ExecutionStatus = "PAUSED"
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
	ExecutionStatusCancelled ExecutionStatus = "CANCELLED"
)

// IsTerminal reports whether no further status transition is permitted.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusCompleted || s == ExecutionStatusFailed || s == ExecutionStatusCancelled
}

// NodeVisit records one step of an execution's walk through the graph.
type NodeVisit struct {
	NodeID    NodeID
	EnteredAt time.Time
	ExitedAt  time.Time
	Error     string
}

// WorkflowExecution tracks one run of a Workflow: the node currently
// being visited, the path taken to reach it, the data that triggered it,
// a scratch context map populated by TASK/ACTION/DECISION steps, and
// terminal outcome. It holds workflowID and triggerData by reference
// (weak, by id/value) rather than owning the Workflow or the telemetry
// record, per spec.md §3's ownership rule.
type WorkflowExecution struct {
	id             ExecutionID
	workflowID     WorkflowID
	organizationID string
	status         ExecutionStatus
	currentNodeID  *NodeID
	path           []NodeVisit
	stepCount      int
	triggerData    *TelemetryData
	context        map[string]interface{}
	startedAt      time.Time
	completedAt    time.Time
	errorMessage   string
}

// NewWorkflowExecution creates a RUNNING execution bound to a workflow
// and its start node. triggerData is optional (nil for a manually
// started execution with no originating telemetry record).
func NewWorkflowExecution(id ExecutionID, workflowID WorkflowID, organizationID string, startNode NodeID, triggerData *TelemetryData, now time.Time) *WorkflowExecution {
	node := startNode
	return &WorkflowExecution{
		id:             id,
		workflowID:     workflowID,
		organizationID: organizationID,
		status:         ExecutionStatusRunning,
		currentNodeID:  &node,
		triggerData:    triggerData,
		context:        make(map[string]interface{}),
		startedAt:      now,
	}
}

func (e *WorkflowExecution) ID() ExecutionID             { return e.id }
func (e *WorkflowExecution) WorkflowID() WorkflowID       { return e.workflowID }
func (e *WorkflowExecution) OrganizationID() string       { return e.organizationID }
func (e *WorkflowExecution) Status() ExecutionStatus      { return e.status }
func (e *WorkflowExecution) StepCount() int               { return e.stepCount }
func (e *WorkflowExecution) TriggerData() *TelemetryData  { return e.triggerData }
func (e *WorkflowExecution) StartedAt() time.Time         { return e.startedAt }
func (e *WorkflowExecution) CompletedAt() time.Time       { return e.completedAt }
func (e *WorkflowExecution) ErrorMessage() string         { return e.errorMessage }

// CurrentNodeID returns the node the execution is sitting at, and false
// once a terminal transition has cleared it (no current node).
func (e *WorkflowExecution) CurrentNodeID() (NodeID, bool) {
	if e.currentNodeID == nil {
		return "", false
	}
	return *e.currentNodeID, true
}

// Context returns the live, mutable scratch map owned by this execution.
// Callers within a single worker (the only one ever allowed to touch one
// execution at a time, per spec.md §5) may read and write it directly.
func (e *WorkflowExecution) Context() map[string]interface{} {
	return e.context
}

// Path returns a defensive copy of the visited-node history, in order.
func (e *WorkflowExecution) Path() []NodeVisit {
	out := make([]NodeVisit, len(e.path))
	copy(out, e.path)
	return out
}

// Duration returns the elapsed time between start and completion. For a
// still-active execution, completion is measured against now.
func (e *WorkflowExecution) Duration(now time.Time) time.Duration {
	if e.status.IsTerminal() {
		return e.completedAt.Sub(e.startedAt)
	}
	return now.Sub(e.startedAt)
}

func (e *WorkflowExecution) transition(to ExecutionStatus) error {
	if e.status.IsTerminal() {
		return &InvalidStateError{Entity: "execution", From: string(e.status), To: string(to)}
	}
	ok := false
	switch {
	case e.status == ExecutionStatusRunning && to == ExecutionStatusWaiting:
		ok = true
	case e.status == ExecutionStatusWaiting && to == ExecutionStatusRunning:
		ok = true
	case e.status == ExecutionStatusRunning && to == ExecutionStatusPaused:
		ok = true
	case e.status == ExecutionStatusPaused && to == ExecutionStatusRunning:
		ok = true
	case (e.status == ExecutionStatusRunning || e.status == ExecutionStatusPaused || e.status == ExecutionStatusWaiting) &&
		(to == ExecutionStatusCompleted || to == ExecutionStatusFailed || to == ExecutionStatusCancelled):
		ok = true
	}
	if !ok {
		return &InvalidStateError{Entity: "execution", From: string(e.status), To: string(to)}
	}
	e.status = to
	return nil
}

// Wait moves a RUNNING execution to WAITING (suspended on external
// input, e.g. awaiting the next triggering telemetry record).
func (e *WorkflowExecution) Wait() error { return e.transition(ExecutionStatusWaiting) }

// Resume moves a WAITING or PAUSED execution back to RUNNING.
func (e *WorkflowExecution) Resume() error { return e.transition(ExecutionStatusRunning) }

// Pause moves a RUNNING execution to PAUSED.
func (e *WorkflowExecution) Pause() error { return e.transition(ExecutionStatusPaused) }

// Complete moves a non-terminal execution to COMPLETED.
func (e *WorkflowExecution) Complete(now time.Time) error {
	if err := e.transition(ExecutionStatusCompleted); err != nil {
		return err
	}
	e.currentNodeID = nil
	e.completedAt = now
	return nil
}

// Fail moves a non-terminal execution to FAILED, recording the
// human-readable reason spec.md §7 requires.
func (e *WorkflowExecution) Fail(reason string, now time.Time) error {
	if err := e.transition(ExecutionStatusFailed); err != nil {
		return err
	}
	e.errorMessage = reason
	e.completedAt = now
	return nil
}

// Cancel moves a non-terminal execution to CANCELLED.
func (e *WorkflowExecution) Cancel(now time.Time) error {
	if err := e.transition(ExecutionStatusCancelled); err != nil {
		return err
	}
	e.completedAt = now
	return nil
}

// AdvanceTo records a completed visit to the current node and moves the
// cursor to next, incrementing stepCount. The caller (engine) is
// responsible for enforcing MAX_NODE_STEPS and RUNNING status.
func (e *WorkflowExecution) AdvanceTo(next NodeID, enteredAt, exitedAt time.Time, stepErr string) {
	if e.currentNodeID != nil {
		e.path = append(e.path, NodeVisit{
			NodeID:    *e.currentNodeID,
			EnteredAt: enteredAt,
			ExitedAt:  exitedAt,
			Error:     stepErr,
		})
	}
	e.stepCount++
	node := next
	e.currentNodeID = &node
}
