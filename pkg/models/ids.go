package models

import "github.com/google/uuid"

// WorkflowID uniquely identifies a Workflow aggregate.
type WorkflowID string

// NodeID uniquely identifies a WorkflowNode within its owning Workflow.
type NodeID string

// EdgeID uniquely identifies a WorkflowEdge within its owning Workflow.
type EdgeID string

// ExecutionID uniquely identifies a WorkflowExecution.
type ExecutionID string

// DeviceID identifies the physical or virtual device a TelemetryData
// record originated from.
type DeviceID string

// TelemetryID uniquely identifies a single TelemetryData record.
type TelemetryID string

// NewWorkflowID generates a fresh random WorkflowID.
func NewWorkflowID() WorkflowID { return WorkflowID("wf-" + uuid.NewString()) }

// NewNodeID generates a fresh random NodeID.
func NewNodeID() NodeID { return NodeID("node-" + uuid.NewString()) }

// NewEdgeID generates a fresh random EdgeID.
func NewEdgeID() EdgeID { return EdgeID("edge-" + uuid.NewString()) }

// NewExecutionID generates a fresh random ExecutionID.
func NewExecutionID() ExecutionID { return ExecutionID("exec-" + uuid.NewString()) }

// NewTelemetryID generates a fresh random TelemetryID.
func NewTelemetryID() TelemetryID { return TelemetryID("tel-" + uuid.NewString()) }

// ValidateID rejects the empty identifier. The New* domain constructors
// do not call it: NewWorkflow, NewWorkflowExecution and NewTelemetryData
// accept an empty id as given.
func ValidateID(kind, value string) error {
	if value == "" {
		return &ValidationError{Field: kind, Message: "must not be empty"}
	}
	return nil
}
