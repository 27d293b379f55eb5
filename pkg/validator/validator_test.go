package validator

import (
	"testing"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

func buildWorkflow(t *testing.T, nodes []models.WorkflowNode, edges []models.WorkflowEdge) *models.Workflow {
	t.Helper()
	wf, err := models.NewWorkflow(models.NewWorkflowID(), "Test Workflow", "org-1", nodes, edges, time.Now())
	if err != nil {
		t.Fatalf("NewWorkflow() error = %v", err)
	}
	return wf
}

func node(id string, typ models.NodeType, config map[string]interface{}) models.WorkflowNode {
	return models.WorkflowNode{ID: models.NodeID(id), Type: typ, Label: id, Configuration: config}
}

func edge(id, source, target string, typ models.EdgeType) models.WorkflowEdge {
	return models.WorkflowEdge{ID: models.EdgeID(id), Source: models.NodeID(source), Target: models.NodeID(target), Type: typ}
}

func TestValidate_LinearWorkflowIsValid(t *testing.T) {
	wf := buildWorkflow(t,
		[]models.WorkflowNode{
			node("start", models.NodeTypeStart, nil),
			node("end", models.NodeTypeEnd, nil),
		},
		[]models.WorkflowEdge{edge("e1", "start", "end", models.EdgeTypeDefault)},
	)

	result := Validate(wf)
	if !result.Valid {
		t.Fatalf("Valid = false, errors = %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestValidate_DecisionWithoutConditionsWarns(t *testing.T) {
	wf := buildWorkflow(t,
		[]models.WorkflowNode{
			node("start", models.NodeTypeStart, nil),
			node("d", models.NodeTypeDecision, nil),
			node("end", models.NodeTypeEnd, nil),
		},
		[]models.WorkflowEdge{
			edge("e1", "start", "d", models.EdgeTypeDefault),
			edge("e2", "d", "end", models.EdgeTypeDefault),
		},
	)

	result := Validate(wf)
	if !result.Valid {
		t.Fatalf("Valid = false, errors = %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
}

func TestValidateConnection_RejectsSelfLoop(t *testing.T) {
	n := node("a", models.NodeTypeTask, nil)
	result := ValidateConnection(n, n, models.EdgeTypeDefault)
	if result.Valid {
		t.Fatal("Valid = true, want false for a self-loop")
	}
}

func TestValidateConnection_RejectsStartAsTarget(t *testing.T) {
	source := node("a", models.NodeTypeTask, nil)
	target := node("start", models.NodeTypeStart, nil)
	result := ValidateConnection(source, target, models.EdgeTypeDefault)
	if result.Valid {
		t.Fatal("Valid = true, want false when target is START")
	}
}

func TestValidateConnection_RejectsEndAsSource(t *testing.T) {
	source := node("end", models.NodeTypeEnd, nil)
	target := node("a", models.NodeTypeTask, nil)
	result := ValidateConnection(source, target, models.EdgeTypeDefault)
	if result.Valid {
		t.Fatal("Valid = true, want false when source is END")
	}
}

func TestValidateConnection_WarnsOnDefaultEdgeFromDecision(t *testing.T) {
	source := node("d", models.NodeTypeDecision, map[string]interface{}{"conditions": map[string]interface{}{"field": "x", "operator": ">", "value": 1.0}})
	target := node("end", models.NodeTypeEnd, nil)
	result := ValidateConnection(source, target, models.EdgeTypeDefault)
	if !result.Valid {
		t.Fatalf("Valid = false, want true (warning only), errors = %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
}

func TestValidateExecutionReadiness_RejectsInactiveWorkflow(t *testing.T) {
	wf := buildWorkflow(t,
		[]models.WorkflowNode{node("start", models.NodeTypeStart, nil), node("end", models.NodeTypeEnd, nil)},
		[]models.WorkflowEdge{edge("e1", "start", "end", models.EdgeTypeDefault)},
	)

	result := ValidateExecutionReadiness(wf)
	if result.Ready {
		t.Fatal("Ready = true, want false for a DRAFT workflow")
	}
}

func TestValidateExecutionReadiness_RejectsMissingConditions(t *testing.T) {
	wf := buildWorkflow(t,
		[]models.WorkflowNode{
			node("start", models.NodeTypeStart, nil),
			node("d", models.NodeTypeDecision, nil),
			node("end", models.NodeTypeEnd, nil),
		},
		[]models.WorkflowEdge{
			edge("e1", "start", "d", models.EdgeTypeDefault),
			edge("e2", "d", "end", models.EdgeTypeDefault),
		},
	)
	if err := wf.Activate(time.Now()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	result := ValidateExecutionReadiness(wf)
	if result.Ready {
		t.Fatal("Ready = true, want false for a DECISION node with no conditions")
	}
}

func TestValidateExecutionReadiness_WarnsOnDecisionMissingBranches(t *testing.T) {
	wf := buildWorkflow(t,
		[]models.WorkflowNode{
			node("start", models.NodeTypeStart, nil),
			node("d", models.NodeTypeDecision, map[string]interface{}{"conditions": map[string]interface{}{"field": "x", "operator": ">", "value": 1.0}}),
			node("end", models.NodeTypeEnd, nil),
		},
		[]models.WorkflowEdge{
			edge("e1", "start", "d", models.EdgeTypeDefault),
			edge("e2", "d", "end", models.EdgeTypeDefault),
		},
	)
	if err := wf.Activate(time.Now()); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	result := ValidateExecutionReadiness(wf)
	if !result.Ready {
		t.Fatalf("Ready = false, want true (DEFAULT-only fallback is still executable), errors = %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
}
