// Package validator produces diagnostic results for workflows, edge
// connections, and execution readiness, without ever failing outright:
// every function here returns a result value, not an error (spec.md §4.1
// testable property "validator totality").
package validator

import (
	"fmt"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// ValidationResult collects structural errors and advisory warnings
// found while checking a workflow or an edge connection.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (r *ValidationResult) addError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationResult) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func newResult() *ValidationResult {
	return &ValidationResult{Valid: true}
}

// Validate re-runs the workflow's structural invariants (spec.md §3,
// items 1-5) and reports DECISION/CONDITION nodes missing a `conditions`
// configuration entry as warnings rather than errors — a workflow may be
// a DRAFT in progress, and only ExecutionReadiness treats it as fatal.
func Validate(w *models.Workflow) *ValidationResult {
	result := newResult()

	nodes := w.Nodes()
	edges := w.Edges()

	if len(nodes) == 0 {
		result.addError("workflow has no nodes")
	}

	nodeSet := make(map[models.NodeID]bool, len(nodes))
	for _, n := range nodes {
		if nodeSet[n.ID] {
			result.addError("duplicate node id %q", n.ID)
			continue
		}
		nodeSet[n.ID] = true
	}

	incoming := make(map[models.NodeID]bool, len(nodes))
	for _, e := range edges {
		if e.Source == e.Target {
			result.addError("edge %q is a self-loop on node %q", e.ID, e.Source)
		}
		if !nodeSet[e.Source] {
			result.addError("edge %q references unknown source node %q", e.ID, e.Source)
		}
		if !nodeSet[e.Target] {
			result.addError("edge %q references unknown target node %q", e.ID, e.Target)
		}
		incoming[e.Target] = true
	}

	hasStart := false
	for _, n := range nodes {
		if !incoming[n.ID] {
			hasStart = true
		}
		if n.Type.IsBranching() && !n.HasConditions() {
			result.addWarning("node %q (%s) has no conditions configured", n.ID, n.Type)
		}
	}
	if len(nodes) > 0 && !hasStart {
		result.addError("workflow has no start node (every node has an incoming edge)")
	}

	if w.Name() == "" {
		result.addError("workflow name must not be empty")
	}

	return result
}

// ConnectionResult is the outcome of ValidateConnection.
type ConnectionResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateConnection checks whether an edge of edgeType from source to
// target would be legal, per spec.md §4.1: errors if source == target,
// target is START, or source is END; warns if source is DECISION or
// CONDITION and edgeType is DEFAULT (such a node should route on a
// CONDITIONAL_TRUE/CONDITIONAL_FALSE edge, not fall through to DEFAULT).
func ValidateConnection(source, target models.WorkflowNode, edgeType models.EdgeType) *ConnectionResult {
	result := &ConnectionResult{Valid: true}

	if source.ID == target.ID {
		result.Valid = false
		result.Errors = append(result.Errors, "source and target must not be the same node")
	}
	if target.Type == models.NodeTypeStart {
		result.Valid = false
		result.Errors = append(result.Errors, "target node must not be a START node")
	}
	if source.Type == models.NodeTypeEnd {
		result.Valid = false
		result.Errors = append(result.Errors, "source node must not be an END node")
	}
	if source.Type.IsBranching() && edgeType == models.EdgeTypeDefault {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"edge from %s node %q uses DEFAULT; CONDITIONAL_TRUE/CONDITIONAL_FALSE is expected", source.Type, source.ID))
	}

	return result
}

// ReadinessResult is the outcome of ValidateExecutionReadiness.
type ReadinessResult struct {
	Ready    bool
	Errors   []string
	Warnings []string
}

// ValidateExecutionReadiness checks whether a workflow may be executed
// right now: it must be ACTIVE, and every DECISION/CONDITION node must
// carry a `conditions` entry. A DECISION node lacking both a
// CONDITIONAL_TRUE and a CONDITIONAL_FALSE outgoing edge is reported as
// a warning (the fallback-to-first-edge rule in spec.md §4.4 still makes
// it executable, just less predictable).
func ValidateExecutionReadiness(w *models.Workflow) *ReadinessResult {
	result := &ReadinessResult{Ready: true}

	if w.Status() != models.WorkflowStatusActive {
		result.Ready = false
		result.Errors = append(result.Errors, fmt.Sprintf("workflow status is %s, not ACTIVE", w.Status()))
	}

	for _, n := range w.Nodes() {
		if !n.Type.IsBranching() {
			continue
		}
		if !n.HasConditions() {
			result.Ready = false
			result.Errors = append(result.Errors, fmt.Sprintf("node %q (%s) has no conditions configured", n.ID, n.Type))
			continue
		}
		if n.Type == models.NodeTypeDecision {
			hasTrue, hasFalse := false, false
			for _, e := range w.OutgoingEdges(n.ID) {
				switch e.Type {
				case models.EdgeTypeConditionalTrue:
					hasTrue = true
				case models.EdgeTypeConditionalFalse:
					hasFalse = true
				}
			}
			if !hasTrue && !hasFalse {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"DECISION node %q has neither a CONDITIONAL_TRUE nor CONDITIONAL_FALSE outgoing edge", n.ID))
			}
		}
	}

	return result
}
