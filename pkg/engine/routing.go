package engine

import "github.com/smilemakc/telemetryflow/pkg/models"

// route implements spec.md §4.4: given the outgoing edges of a node (in
// declaration order, which the Workflow aggregate guarantees) and an
// evaluator result r, pick the first edge whose type matches r, falling
// back to the first edge of any type, and reporting no target at all
// when there are no outgoing edges.
func route(edges []models.WorkflowEdge, r bool) (models.NodeID, bool) {
	if len(edges) == 0 {
		return "", false
	}

	want := models.EdgeTypeConditionalFalse
	if r {
		want = models.EdgeTypeConditionalTrue
	}
	for _, e := range edges {
		if e.Type == want {
			return e.Target, true
		}
	}
	return edges[0].Target, true
}

// firstTarget returns the target of the first outgoing edge, used by
// START/TASK/ACTION node stepping (spec.md §4.3's "move to first
// successor" rule). ok is false when the node has no outgoing edges.
func firstTarget(edges []models.WorkflowEdge) (models.NodeID, bool) {
	if len(edges) == 0 {
		return "", false
	}
	return edges[0].Target, true
}
