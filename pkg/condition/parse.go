package condition

import (
	"strconv"
	"strings"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// Parse builds a condition tree from one of the three surface forms
// spec.md §4.2 accepts: a composite map, an implicit-AND list, or a
// string form. Any structural defect fails the whole parse, wrapped in
// a *models.ConditionEvaluationError — this is the fail-fast path used
// by Evaluate; the validator (validate.go) instead walks the raw value
// collecting every defect it finds.
func Parse(raw interface{}) (Node, error) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return parseMapForm(v)
	case []interface{}:
		return parseListForm(v)
	case string:
		return parseStringForm(v)
	default:
		return nil, &models.ConditionEvaluationError{Reason: "condition value must be a map, list, or string"}
	}
}

func parseMapForm(m map[string]interface{}) (Node, error) {
	if _, hasConditions := m["conditions"]; hasConditions {
		return parseComposite(m)
	}
	if _, hasField := m["field"]; hasField {
		return parseLeaf(m)
	}
	return nil, &models.ConditionEvaluationError{Reason: "condition map has neither 'conditions' (composite) nor 'field' (leaf)"}
}

func parseComposite(m map[string]interface{}) (Node, error) {
	opRaw, _ := m["operator"].(string)
	op := LogicalOperator(strings.ToUpper(strings.TrimSpace(opRaw)))
	if op == "" {
		op = And
	}
	if op != And && op != Or && op != Not {
		return nil, &models.ConditionEvaluationError{Reason: "unknown logical operator: " + opRaw}
	}

	rawConditions, ok := m["conditions"]
	if !ok {
		return nil, &models.ConditionEvaluationError{Reason: "composite condition missing 'conditions' array"}
	}
	list, ok := rawConditions.([]interface{})
	if !ok {
		return nil, &models.ConditionEvaluationError{Reason: "'conditions' must be an array"}
	}

	children := make([]Node, 0, len(list))
	for _, c := range list {
		child, err := Parse(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &Composite{Operator: op, Conditions: children}, nil
}

func parseLeaf(m map[string]interface{}) (Node, error) {
	field, _ := m["field"].(string)
	if strings.TrimSpace(field) == "" {
		return nil, &models.ConditionEvaluationError{Reason: "leaf condition missing 'field'"}
	}
	opRaw, _ := m["operator"].(string)
	if strings.TrimSpace(opRaw) == "" {
		return nil, &models.ConditionEvaluationError{Reason: "leaf condition missing 'operator'"}
	}
	op, ok := resolveLeafOperator(opRaw)
	if !ok {
		return nil, &models.ConditionEvaluationError{Reason: "unknown leaf operator: " + opRaw}
	}
	value, hasValue := m["value"]
	if !hasValue {
		return nil, &models.ConditionEvaluationError{Reason: "leaf condition missing 'value'"}
	}
	return &Leaf{Field: field, Operator: op, Value: value}, nil
}

// parseListForm treats a bare list as an implicit AND over its elements.
func parseListForm(list []interface{}) (Node, error) {
	children := make([]Node, 0, len(list))
	for _, c := range list {
		child, err := Parse(c)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return &Composite{Operator: And, Conditions: children}, nil
}

// parseStringForm parses "<field> <op> <literal>" where op is one of
// stringFormOperators and literal is a number, boolean, or bare/quoted
// string, per spec.md §4.2.
func parseStringForm(s string) (Node, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, &models.ConditionEvaluationError{Reason: "empty condition string"}
	}

	for _, opToken := range stringFormOperators {
		idx := strings.Index(trimmed, opToken)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(trimmed[:idx])
		literalRaw := strings.TrimSpace(trimmed[idx+len(opToken):])
		if field == "" || literalRaw == "" {
			return nil, &models.ConditionEvaluationError{Reason: "malformed condition string: " + s}
		}
		return &Leaf{
			Field:    field,
			Operator: stringFormOperatorAlias[opToken],
			Value:    parseStringLiteral(literalRaw),
		}, nil
	}

	return nil, &models.ConditionEvaluationError{Reason: "malformed condition string (no recognized operator): " + s}
}

// parseStringLiteral interprets a literal token as a number, boolean, or
// (bare or quoted) string, in that preference order.
func parseStringLiteral(tok string) interface{} {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return tok[1 : len(tok)-1]
	}
	if n, err := strconv.ParseFloat(tok, 64); err == nil {
		return n
	}
	switch strings.ToLower(tok) {
	case "true":
		return true
	case "false":
		return false
	}
	return tok
}
