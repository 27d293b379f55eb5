package condition

import (
	"fmt"
	"strings"
)

// ValidationResult collects structural errors and advisory warnings
// found while walking a condition value. Mirrors the shape of
// pkg/validator.ValidationResult; the two types are independent and
// pkg/validator does not use this one.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateConditions recursively walks raw, collecting every structural
// error (empty operator, empty field, empty conditions array under a
// composite, malformed string form) and warning (unknown leaf operator
// name) it finds, rather than stopping at the first one the way Parse
// does.
func ValidateConditions(raw interface{}) *ValidationResult {
	r := &ValidationResult{Valid: true}
	walk(raw, r)
	return r
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func walk(raw interface{}, r *ValidationResult) {
	switch v := raw.(type) {
	case map[string]interface{}:
		walkMap(v, r)
	case []interface{}:
		for _, c := range v {
			walk(c, r)
		}
	case string:
		walkString(v, r)
	default:
		r.fail("condition value must be a map, list, or string, got %T", raw)
	}
}

func walkMap(m map[string]interface{}, r *ValidationResult) {
	if _, hasConditions := m["conditions"]; hasConditions {
		walkComposite(m, r)
		return
	}
	if _, hasField := m["field"]; hasField {
		walkLeaf(m, r)
		return
	}
	r.fail("condition map has neither 'conditions' (composite) nor 'field' (leaf)")
}

func walkComposite(m map[string]interface{}, r *ValidationResult) {
	opRaw, _ := m["operator"].(string)
	op := strings.ToUpper(strings.TrimSpace(opRaw))
	if op == "" {
		op = string(And)
	}
	if op != string(And) && op != string(Or) && op != string(Not) {
		r.fail("unknown logical operator: %q", opRaw)
	}

	list, ok := m["conditions"].([]interface{})
	if !ok {
		r.fail("'conditions' must be an array")
		return
	}
	if len(list) == 0 {
		r.fail("'conditions' array must not be empty")
		return
	}
	for _, c := range list {
		walk(c, r)
	}
}

func walkLeaf(m map[string]interface{}, r *ValidationResult) {
	field, _ := m["field"].(string)
	if strings.TrimSpace(field) == "" {
		r.fail("leaf condition has an empty 'field'")
	}
	opRaw, _ := m["operator"].(string)
	if strings.TrimSpace(opRaw) == "" {
		r.fail("leaf condition has an empty 'operator'")
	} else if _, ok := resolveLeafOperator(opRaw); !ok {
		r.warn("unknown leaf operator name: %q", opRaw)
	}
	if _, hasValue := m["value"]; !hasValue {
		r.fail("leaf condition missing 'value'")
	}
}

func walkString(s string, r *ValidationResult) {
	if strings.TrimSpace(s) == "" {
		r.fail("condition string must not be empty")
		return
	}
	if _, err := parseStringForm(s); err != nil {
		r.fail("malformed condition string: %q", s)
	}
}
