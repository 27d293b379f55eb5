package builder

import (
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// WorkflowBuilder accumulates nodes and edges and defers to
// models.NewWorkflow to enforce invariants on Build.
type WorkflowBuilder struct {
	id             models.WorkflowID
	name           string
	organizationID string
	nodes          []models.WorkflowNode
	edges          []models.WorkflowEdge
	err            error
}

// NewWorkflow creates a workflow builder. id may be the empty string, in
// which case Build generates a fresh one.
func NewWorkflow(id models.WorkflowID, name, organizationID string) *WorkflowBuilder {
	return &WorkflowBuilder{id: id, name: name, organizationID: organizationID}
}

// AddNode appends a node built via NewNode.
func (wb *WorkflowBuilder) AddNode(node models.WorkflowNode, err error) *WorkflowBuilder {
	if err != nil && wb.err == nil {
		wb.err = err
		return wb
	}
	wb.nodes = append(wb.nodes, node)
	return wb
}

// AddEdge appends an edge built via NewEdge.
func (wb *WorkflowBuilder) AddEdge(edge models.WorkflowEdge, err error) *WorkflowBuilder {
	if err != nil && wb.err == nil {
		wb.err = err
		return wb
	}
	wb.edges = append(wb.edges, edge)
	return wb
}

// Build constructs the Workflow aggregate, running the full set of
// structural invariants via models.NewWorkflow.
func (wb *WorkflowBuilder) Build(now time.Time) (*models.Workflow, error) {
	if wb.err != nil {
		return nil, wb.err
	}
	id := wb.id
	if id == "" {
		id = models.NewWorkflowID()
	}
	return models.NewWorkflow(id, wb.name, wb.organizationID, wb.nodes, wb.edges, now)
}
