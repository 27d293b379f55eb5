package condition

import "testing"

func TestValidateConditions_ValidTree(t *testing.T) {
	cond := map[string]interface{}{
		"operator": "AND",
		"conditions": []interface{}{
			leaf("temp", "gt", 5.0),
			"status == ok",
		},
	}
	r := ValidateConditions(cond)
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %v", r.Errors)
	}
}

func TestValidateConditions_CollectsMultipleErrors(t *testing.T) {
	cond := map[string]interface{}{
		"operator": "AND",
		"conditions": []interface{}{
			map[string]interface{}{"field": "", "operator": "eq", "value": 1.0},
			map[string]interface{}{"field": "temp", "operator": "", "value": 1.0},
			"   ",
		},
	}
	r := ValidateConditions(cond)
	if r.Valid {
		t.Fatalf("expected invalid")
	}
	if len(r.Errors) < 3 {
		t.Fatalf("expected at least 3 collected errors, got %d: %v", len(r.Errors), r.Errors)
	}
}

func TestValidateConditions_EmptyConditionsArrayIsError(t *testing.T) {
	cond := map[string]interface{}{"operator": "AND", "conditions": []interface{}{}}
	r := ValidateConditions(cond)
	if r.Valid {
		t.Fatalf("expected invalid for empty conditions array")
	}
}

func TestValidateConditions_UnknownLeafOperatorIsWarning(t *testing.T) {
	cond := leaf("temp", "resembles", 1.0)
	r := ValidateConditions(cond)
	if !r.Valid {
		t.Fatalf("unknown operator name should be a warning, not an error: %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestValidateConditions_MalformedStringForm(t *testing.T) {
	r := ValidateConditions("no operator here")
	if r.Valid {
		t.Fatalf("expected invalid for malformed string form")
	}
}
