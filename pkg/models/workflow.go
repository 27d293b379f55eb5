package models

import (
	"strings"
	"time"
)

// NodeType tags the behavior a WorkflowNode exhibits during execution.
type NodeType string

const (
	NodeTypeStart     NodeType = "START"
	NodeTypeEnd       NodeType = "END"
	NodeTypeDecision  NodeType = "DECISION"
	NodeTypeCondition NodeType = "CONDITION"
	NodeTypeTask      NodeType = "TASK"
	NodeTypeAction    NodeType = "ACTION"
	NodeTypeInput     NodeType = "INPUT"
	NodeTypeOutput    NodeType = "OUTPUT"
)

// IsBranching reports whether this node type evaluates a condition to
// choose its successor.
func (t NodeType) IsBranching() bool {
	return t == NodeTypeDecision || t == NodeTypeCondition
}

// EdgeType tags the role an edge plays in routing.
type EdgeType string

const (
	EdgeTypeDefault          EdgeType = "DEFAULT"
	EdgeTypeConditionalTrue  EdgeType = "CONDITIONAL_TRUE"
	EdgeTypeConditionalFalse EdgeType = "CONDITIONAL_FALSE"
	EdgeTypeSuccess          EdgeType = "SUCCESS"
	EdgeTypeError            EdgeType = "ERROR"
	EdgeTypeDataFlow         EdgeType = "DATA_FLOW"
	EdgeTypeControlFlow      EdgeType = "CONTROL_FLOW"
)

// WorkflowStatus is the lifecycle state of a Workflow aggregate.
type WorkflowStatus string

const (
	WorkflowStatusDraft     WorkflowStatus = "DRAFT"
	WorkflowStatusActive    WorkflowStatus = "ACTIVE"
	WorkflowStatusPaused    WorkflowStatus = "PAUSED"
	WorkflowStatusCompleted WorkflowStatus = "COMPLETED"
	WorkflowStatusFailed    WorkflowStatus = "FAILED"
	WorkflowStatusArchived  WorkflowStatus = "ARCHIVED"
)

// IsTerminal reports whether no further status transition is permitted.
func (s WorkflowStatus) IsTerminal() bool {
	return s == WorkflowStatusCompleted || s == WorkflowStatusFailed || s == WorkflowStatusArchived
}

// WorkflowNode is a single vertex in a Workflow's graph.
type WorkflowNode struct {
	ID            NodeID
	Type          NodeType
	Label         string
	Position      Position
	Configuration map[string]interface{}
}

// cloneConfiguration returns a shallow defensive copy of the configuration
// map so callers cannot mutate a node's internals through an alias.
func cloneConfiguration(cfg map[string]interface{}) map[string]interface{} {
	if cfg == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	return out
}

// HasConditions reports whether the node carries a non-nil `conditions`
// configuration entry, required for DECISION and CONDITION nodes.
func (n WorkflowNode) HasConditions() bool {
	v, ok := n.Configuration["conditions"]
	return ok && v != nil
}

// WorkflowEdge is a directed, typed connection between two nodes.
type WorkflowEdge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	Label  string
	Type   EdgeType
}

// Workflow is the aggregate root owning an ordered set of nodes and edges.
// Node and edge order is preserved exactly as supplied: routing (§4.4)
// depends on declaration order, so nothing here is permitted to re-sort.
type Workflow struct {
	id             WorkflowID
	name           string
	organizationID string
	nodes          []WorkflowNode
	edges          []WorkflowEdge
	status         WorkflowStatus
	createdAt      time.Time
	updatedAt      time.Time

	nodeIndex map[NodeID]int   // rebuilt whenever a structure is installed
	outIndex  map[NodeID][]int // nodeID -> indices into edges, in declaration order
}

// NewWorkflow constructs a Workflow, enforcing invariants 1-5 from
// spec.md §3. now is supplied by the caller so construction stays a pure
// function of its arguments (spec.md §8 invariant 1, determinism).
func NewWorkflow(id WorkflowID, name, organizationID string, nodes []WorkflowNode, edges []WorkflowEdge, now time.Time) (*Workflow, error) {
	w := &Workflow{
		id:             id,
		organizationID: organizationID,
		status:         WorkflowStatusDraft,
		createdAt:      now,
		updatedAt:      now,
	}
	if errs := w.applyStructure(name, nodes, edges); len(errs) > 0 {
		return nil, &InvalidWorkflowError{Errors: errs}
	}
	return w, nil
}

// applyStructure validates and installs name/nodes/edges, rebuilding the
// adjacency indexes. Returns the list of validation errors, if any; all
// checks run before any field is written, so on error the receiver is
// left unmodified.
func (w *Workflow) applyStructure(name string, nodes []WorkflowNode, edges []WorkflowEdge) []string {
	var errs []string

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		errs = append(errs, "name must not be empty")
	}
	if len(nodes) == 0 {
		errs = append(errs, "nodes must not be empty")
	}

	nodeSet := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		if nodeSet[n.ID] {
			errs = append(errs, "duplicate node id: "+string(n.ID))
			continue
		}
		nodeSet[n.ID] = true
	}

	for _, e := range edges {
		if e.Source == e.Target {
			errs = append(errs, "edge "+string(e.ID)+" is a self-loop")
		}
		if !nodeSet[e.Source] {
			errs = append(errs, "edge "+string(e.ID)+" references unknown source node "+string(e.Source))
		}
		if !nodeSet[e.Target] {
			errs = append(errs, "edge "+string(e.ID)+" references unknown target node "+string(e.Target))
		}
	}

	if len(errs) == 0 {
		incoming := make(map[NodeID]bool, len(nodes))
		for _, e := range edges {
			incoming[e.Target] = true
		}
		hasStart := false
		for _, n := range nodes {
			if !incoming[n.ID] {
				hasStart = true
				break
			}
		}
		if !hasStart {
			errs = append(errs, "workflow has no start node (every node has an incoming edge)")
		}
	}

	if len(errs) > 0 {
		return errs
	}

	w.name = trimmedName
	w.nodes = make([]WorkflowNode, len(nodes))
	for i, n := range nodes {
		n.Configuration = cloneConfiguration(n.Configuration)
		w.nodes[i] = n
	}
	w.edges = append([]WorkflowEdge(nil), edges...)
	w.rebuildIndex()
	return nil
}

func (w *Workflow) rebuildIndex() {
	w.nodeIndex = make(map[NodeID]int, len(w.nodes))
	for i, n := range w.nodes {
		w.nodeIndex[n.ID] = i
	}
	w.outIndex = make(map[NodeID][]int, len(w.nodes))
	for i, e := range w.edges {
		w.outIndex[e.Source] = append(w.outIndex[e.Source], i)
	}
}

// UpdateStructure atomically replaces name/nodes/edges, re-running
// invariants 1-5, and bumps updatedAt. The aggregate is left untouched if
// validation fails.
func (w *Workflow) UpdateStructure(newName string, newNodes []WorkflowNode, newEdges []WorkflowEdge, now time.Time) error {
	if w.status.IsTerminal() {
		return &InvalidStateError{Entity: "workflow", From: string(w.status), To: "updated structure"}
	}
	saved := *w
	if errs := w.applyStructure(newName, newNodes, newEdges); len(errs) > 0 {
		*w = saved
		return &InvalidWorkflowError{Errors: errs}
	}
	w.updatedAt = now
	return nil
}

// ID returns the workflow's identifier.
func (w *Workflow) ID() WorkflowID { return w.id }

// Name returns the workflow's name.
func (w *Workflow) Name() string { return w.name }

// OrganizationID returns the owning organization's identifier.
func (w *Workflow) OrganizationID() string { return w.organizationID }

// Status returns the current lifecycle status.
func (w *Workflow) Status() WorkflowStatus { return w.status }

// CreatedAt returns the creation timestamp.
func (w *Workflow) CreatedAt() time.Time { return w.createdAt }

// UpdatedAt returns the last-modified timestamp.
func (w *Workflow) UpdatedAt() time.Time { return w.updatedAt }

// Nodes returns a defensive copy of the node list, in declaration order.
func (w *Workflow) Nodes() []WorkflowNode {
	out := make([]WorkflowNode, len(w.nodes))
	copy(out, w.nodes)
	return out
}

// Edges returns a defensive copy of the edge list, in declaration order.
func (w *Workflow) Edges() []WorkflowEdge {
	out := make([]WorkflowEdge, len(w.edges))
	copy(out, w.edges)
	return out
}

// FindNode returns the node with the given id, if present.
func (w *Workflow) FindNode(id NodeID) (WorkflowNode, bool) {
	idx, ok := w.nodeIndex[id]
	if !ok {
		return WorkflowNode{}, false
	}
	return w.nodes[idx], true
}

// StartNodes returns every node with no incoming edge.
func (w *Workflow) StartNodes() []WorkflowNode {
	incoming := make(map[NodeID]bool, len(w.nodes))
	for _, e := range w.edges {
		incoming[e.Target] = true
	}
	var out []WorkflowNode
	for _, n := range w.nodes {
		if !incoming[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

// EndNodes returns every node with no outgoing edge.
func (w *Workflow) EndNodes() []WorkflowNode {
	var out []WorkflowNode
	for _, n := range w.nodes {
		if len(w.outIndex[n.ID]) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// NextNodes returns the target nodes of nodeID's outgoing edges, in
// declaration order, without deduplication (a node may legitimately have
// more than one edge to the same target).
func (w *Workflow) NextNodes(nodeID NodeID) []WorkflowNode {
	var out []WorkflowNode
	for _, idx := range w.outIndex[nodeID] {
		e := w.edges[idx]
		if n, ok := w.FindNode(e.Target); ok {
			out = append(out, n)
		}
	}
	return out
}

// OutgoingEdges returns nodeID's outgoing edges in declaration order.
// Routing (spec.md §4.4) depends on this order being authoritative.
func (w *Workflow) OutgoingEdges(nodeID NodeID) []WorkflowEdge {
	idxs := w.outIndex[nodeID]
	out := make([]WorkflowEdge, len(idxs))
	for i, idx := range idxs {
		out[i] = w.edges[idx]
	}
	return out
}

// transition enforces the lifecycle state machine described in spec.md
// §3. Activation re-runs the structural invariants before committing.
func (w *Workflow) transition(to WorkflowStatus, now time.Time) error {
	if w.status.IsTerminal() {
		return &InvalidStateError{Entity: "workflow", From: string(w.status), To: string(to)}
	}
	ok := false
	switch {
	case w.status == WorkflowStatusDraft && to == WorkflowStatusActive:
		ok = true
	case w.status == WorkflowStatusActive && to == WorkflowStatusPaused:
		ok = true
	case w.status == WorkflowStatusPaused && to == WorkflowStatusActive:
		ok = true
	case (w.status == WorkflowStatusActive || w.status == WorkflowStatusPaused) &&
		(to == WorkflowStatusCompleted || to == WorkflowStatusFailed || to == WorkflowStatusArchived):
		ok = true
	}
	if !ok {
		return &InvalidStateError{Entity: "workflow", From: string(w.status), To: string(to)}
	}
	w.status = to
	w.updatedAt = now
	return nil
}

// Activate moves a DRAFT workflow to ACTIVE, re-validating structural
// invariants first.
func (w *Workflow) Activate(now time.Time) error {
	if errs := w.revalidate(); len(errs) > 0 {
		return &InvalidWorkflowError{Errors: errs}
	}
	return w.transition(WorkflowStatusActive, now)
}

// Pause moves an ACTIVE workflow to PAUSED.
func (w *Workflow) Pause(now time.Time) error { return w.transition(WorkflowStatusPaused, now) }

// Resume moves a PAUSED workflow back to ACTIVE.
func (w *Workflow) Resume(now time.Time) error { return w.transition(WorkflowStatusActive, now) }

// Complete moves an ACTIVE or PAUSED workflow to COMPLETED.
func (w *Workflow) Complete(now time.Time) error { return w.transition(WorkflowStatusCompleted, now) }

// Archive moves an ACTIVE or PAUSED workflow to ARCHIVED.
func (w *Workflow) Archive(now time.Time) error { return w.transition(WorkflowStatusArchived, now) }

// revalidate re-checks the name, the non-empty node list, self-loops and
// the presence of a start node against the aggregate's current contents,
// used by Activate per spec.md §4.1. Duplicate node ids and edge
// endpoints are not re-checked here; applyStructure checks them when the
// structure is installed.
func (w *Workflow) revalidate() []string {
	var errs []string
	if strings.TrimSpace(w.name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if len(w.nodes) == 0 {
		errs = append(errs, "nodes must not be empty")
	}
	incoming := make(map[NodeID]bool, len(w.nodes))
	for _, e := range w.edges {
		if e.Source == e.Target {
			errs = append(errs, "edge "+string(e.ID)+" is a self-loop")
		}
		incoming[e.Target] = true
	}
	hasStart := false
	for _, n := range w.nodes {
		if !incoming[n.ID] {
			hasStart = true
			break
		}
	}
	if !hasStart {
		errs = append(errs, "workflow has no start node")
	}
	return errs
}
