// Package condition implements the small declarative boolean/comparison
// language consulted at DECISION and CONDITION nodes: a recursive
// AND/OR/NOT tree over field/operator/value leaves, together with a
// simple string form and a validator.
//
// This is deliberately not built on a general-purpose expression engine
// (there is no `expr-lang/expr` or `gojq` here, unlike pkg/engine's TASK
// and ACTION node evaluation) — the grammar and error taxonomy are fixed
// by the surface forms below, and a general expression language would
// both over-accept input and mis-shape the errors callers depend on.
package condition

import (
	"strings"
)

// LogicalOperator names a composite node's combinator.
type LogicalOperator string

const (
	And LogicalOperator = "AND"
	Or  LogicalOperator = "OR"
	Not LogicalOperator = "NOT"
)

// LeafOperator names a canonical (post-alias-resolution) leaf comparison.
type LeafOperator string

const (
	OpEq       LeafOperator = "eq"
	OpNe       LeafOperator = "ne"
	OpGt       LeafOperator = "gt"
	OpGte      LeafOperator = "gte"
	OpLt       LeafOperator = "lt"
	OpLte      LeafOperator = "lte"
	OpContains LeafOperator = "contains"
	OpIn       LeafOperator = "in"
	OpBetween  LeafOperator = "between"
)

// leafOperatorAliases maps every accepted spelling (case-insensitive) to
// its canonical LeafOperator, per spec.md §4.2.
var leafOperatorAliases = map[string]LeafOperator{
	"eq": OpEq, "equals": OpEq, "==": OpEq,
	"ne": OpNe, "not_equals": OpNe, "!=": OpNe,
	"gt": OpGt, ">": OpGt,
	"gte": OpGte, ">=": OpGte,
	"lt": OpLt, "<": OpLt,
	"lte": OpLte, "<=": OpLte,
	"contains": OpContains,
	"in":       OpIn,
	"between":  OpBetween,
}

// stringFormOperators are the comparison tokens the string surface form
// ("<field> <op> <literal>") recognizes, matched longest-first so `>=`
// is not mistakenly split into `>` plus a leftover `=`.
var stringFormOperators = []string{">=", "<=", "==", "!=", ">", "<"}

var stringFormOperatorAlias = map[string]LeafOperator{
	">=": OpGte, "<=": OpLte, "==": OpEq, "!=": OpNe, ">": OpGt, "<": OpLt,
}

// resolveLeafOperator normalizes a leaf operator spelling. ok is false
// for an unrecognized name.
func resolveLeafOperator(raw string) (LeafOperator, bool) {
	op, ok := leafOperatorAliases[strings.ToLower(strings.TrimSpace(raw))]
	return op, ok
}

// Node is a parsed condition tree element: a *Composite or a *Leaf.
type Node interface {
	isConditionNode()
}

// Composite combines child nodes with AND, OR, or NOT. NOT is defined as
// NOT(AND(children)) per spec.md §4.2 rule 1.
type Composite struct {
	Operator   LogicalOperator
	Conditions []Node
}

func (*Composite) isConditionNode() {}

// Leaf compares one field of a TelemetryData record against a literal.
type Leaf struct {
	Field    string
	Operator LeafOperator
	Value    interface{}
}

func (*Leaf) isConditionNode() {}

// syntheticFields are record-level pseudo-metrics a Leaf may reference
// instead of a metric name.
const (
	fieldDeviceID  = "deviceId"
	fieldTimestamp = "timestamp"
	fieldLocation  = "location"
)

func isSyntheticField(field string) bool {
	switch field {
	case fieldDeviceID, fieldTimestamp, fieldLocation:
		return true
	default:
		return false
	}
}
