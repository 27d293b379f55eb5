// Package builder provides fluent construction helpers for assembling a
// models.Workflow: a NodeBuilder and EdgeBuilder for individual graph
// elements, and a WorkflowBuilder that wires them together and defers to
// models.NewWorkflow for invariant enforcement.
package builder

import (
	"fmt"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// NodeBuilder builds a models.WorkflowNode.
type NodeBuilder struct {
	id       models.NodeID
	nodeType models.NodeType
	label    string
	config   map[string]interface{}
	position models.Position
	err      error
}

// NodeOption configures a NodeBuilder.
type NodeOption func(*NodeBuilder) error

// NewNode creates a node builder for a node of the given type.
func NewNode(id models.NodeID, nodeType models.NodeType, label string, opts ...NodeOption) *NodeBuilder {
	nb := &NodeBuilder{
		id:       id,
		nodeType: nodeType,
		label:    label,
		config:   make(map[string]interface{}),
	}
	for _, opt := range opts {
		if err := opt(nb); err != nil {
			nb.err = err
			return nb
		}
	}
	return nb
}

// Build constructs the final WorkflowNode. Whether a DECISION node
// carries conditions is not checked here, nor by models.NewWorkflow;
// pkg/validator reports it.
func (nb *NodeBuilder) Build() (models.WorkflowNode, error) {
	if nb.err != nil {
		return models.WorkflowNode{}, nb.err
	}
	if nb.id == "" {
		return models.WorkflowNode{}, fmt.Errorf("node id must not be empty")
	}
	return models.WorkflowNode{
		ID:            nb.id,
		Type:          nb.nodeType,
		Label:         nb.label,
		Position:      nb.position,
		Configuration: nb.config,
	}, nil
}

// WithPosition sets the node's absolute visual coordinates.
func WithPosition(x, y float64) NodeOption {
	return func(nb *NodeBuilder) error {
		nb.position = models.Position{X: x, Y: y}
		return nil
	}
}

// GridPosition places the node on a 200-unit grid, matching the layout
// convention a workflow editor would use to lay out an auto-generated
// graph.
func GridPosition(row, col int) NodeOption {
	return func(nb *NodeBuilder) error {
		if row < 0 || col < 0 {
			return fmt.Errorf("grid position row and col must be non-negative")
		}
		nb.position = models.Position{X: float64(col * 200), Y: float64(row * 200)}
		return nil
	}
}

// WithConfigValue sets a single configuration entry.
func WithConfigValue(key string, value interface{}) NodeOption {
	return func(nb *NodeBuilder) error {
		if key == "" {
			return fmt.Errorf("config key must not be empty")
		}
		nb.config[key] = value
		return nil
	}
}

// WithConditions sets the `conditions` configuration entry required on
// DECISION and CONDITION nodes; raw follows the surface forms accepted
// by package condition (composite map, implicit-AND list, string form).
func WithConditions(raw interface{}) NodeOption {
	return WithConfigValue("conditions", raw)
}

// WithTask sets the `task` configuration entry consulted by a TASK node
// (evaluated via gojq against the execution context).
func WithTask(filter string) NodeOption {
	return WithConfigValue("task", filter)
}

// WithAction sets the `action` configuration entry consulted by an
// ACTION node (evaluated via expr-lang against the execution context).
func WithAction(expression string) NodeOption {
	return WithConfigValue("action", expression)
}
