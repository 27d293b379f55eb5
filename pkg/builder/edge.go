package builder

import (
	"fmt"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// EdgeBuilder builds a models.WorkflowEdge.
type EdgeBuilder struct {
	id       models.EdgeID
	source   models.NodeID
	target   models.NodeID
	label    string
	edgeType models.EdgeType
	err      error
}

// EdgeOption configures an EdgeBuilder.
type EdgeOption func(*EdgeBuilder) error

// NewEdge creates an edge builder. The id defaults to
// "edge_{source}_{target}" unless overridden with WithEdgeID, and the
// type defaults to DEFAULT unless overridden with WithEdgeType.
func NewEdge(source, target models.NodeID, opts ...EdgeOption) *EdgeBuilder {
	eb := &EdgeBuilder{
		id:       models.EdgeID(fmt.Sprintf("edge_%s_%s", source, target)),
		source:   source,
		target:   target,
		edgeType: models.EdgeTypeDefault,
	}
	for _, opt := range opts {
		if err := opt(eb); err != nil {
			eb.err = err
			return eb
		}
	}
	return eb
}

// Build constructs the final WorkflowEdge.
func (eb *EdgeBuilder) Build() (models.WorkflowEdge, error) {
	if eb.err != nil {
		return models.WorkflowEdge{}, eb.err
	}
	if eb.source == eb.target {
		return models.WorkflowEdge{}, fmt.Errorf("edge source and target must differ")
	}
	return models.WorkflowEdge{
		ID:     eb.id,
		Source: eb.source,
		Target: eb.target,
		Label:  eb.label,
		Type:   eb.edgeType,
	}, nil
}

// WithEdgeID overrides the auto-generated edge id.
func WithEdgeID(id models.EdgeID) EdgeOption {
	return func(eb *EdgeBuilder) error {
		if id == "" {
			return fmt.Errorf("edge id must not be empty")
		}
		eb.id = id
		return nil
	}
}

// WithEdgeLabel sets the edge's display label.
func WithEdgeLabel(label string) EdgeOption {
	return func(eb *EdgeBuilder) error {
		eb.label = label
		return nil
	}
}

// WithEdgeType sets the edge's routing type.
func WithEdgeType(t models.EdgeType) EdgeOption {
	return func(eb *EdgeBuilder) error {
		eb.edgeType = t
		return nil
	}
}

// WhenTrue is a convenience wrapper for a DECISION/CONDITION node's
// CONDITIONAL_TRUE outgoing edge.
func WhenTrue() EdgeOption { return WithEdgeType(models.EdgeTypeConditionalTrue) }

// WhenFalse is a convenience wrapper for a DECISION/CONDITION node's
// CONDITIONAL_FALSE outgoing edge.
func WhenFalse() EdgeOption { return WithEdgeType(models.EdgeTypeConditionalFalse) }
