package condition

import (
	"strings"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// Evaluate parses raw into a condition tree and evaluates it against
// data. A structural defect anywhere in the tree fails the whole
// evaluation with a *models.ConditionEvaluationError; an unknown field
// reference never fails, it simply evaluates to false (spec.md §4.2
// rule 4).
func Evaluate(raw interface{}, data *models.TelemetryData) (bool, error) {
	node, err := Parse(raw)
	if err != nil {
		return false, err
	}
	return evalNode(node, data)
}

func evalNode(node Node, data *models.TelemetryData) (bool, error) {
	switch n := node.(type) {
	case *Composite:
		return evalComposite(n, data)
	case *Leaf:
		return evalLeaf(n, data)
	default:
		return false, &models.ConditionEvaluationError{Reason: "unrecognized condition node"}
	}
}

// evalComposite applies AND/OR/NOT short-circuiting left to right. NOT
// is NOT(AND(children)) per spec.md §4.2 rule 1.
func evalComposite(c *Composite, data *models.TelemetryData) (bool, error) {
	switch c.Operator {
	case And, Not:
		result := true
		for _, child := range c.Conditions {
			v, err := evalNode(child, data)
			if err != nil {
				return false, err
			}
			if !v {
				result = false
				break
			}
		}
		if c.Operator == Not {
			return !result, nil
		}
		return result, nil
	case Or:
		for _, child := range c.Conditions {
			v, err := evalNode(child, data)
			if err != nil {
				return false, err
			}
			if v {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, &models.ConditionEvaluationError{Reason: "unknown logical operator: " + string(c.Operator)}
	}
}

func evalLeaf(l *Leaf, data *models.TelemetryData) (bool, error) {
	if isSyntheticField(l.Field) {
		return evalSyntheticLeaf(l, data)
	}

	metric, ok := data.Metric(l.Field)
	if !ok {
		return false, nil // unknown field: false, never an error (rule 4)
	}
	return evalMetricLeaf(l, metric)
}

// evalSyntheticLeaf implements the one required synthetic-field
// semantics (deviceId eq/contains <string>) per spec.md §4.2 rule 6;
// every other synthetic field/operator combination is
// implementation-defined here as simply false, never an error.
func evalSyntheticLeaf(l *Leaf, data *models.TelemetryData) (bool, error) {
	if l.Field != fieldDeviceID {
		return false, nil
	}
	want, ok := l.Value.(string)
	if !ok {
		return false, nil
	}
	deviceID := string(data.DeviceID)
	switch l.Operator {
	case OpEq:
		return deviceID == want, nil
	case OpContains:
		return strings.Contains(deviceID, want), nil
	default:
		return false, nil
	}
}

func evalMetricLeaf(l *Leaf, metric models.MetricValue) (bool, error) {
	switch l.Operator {
	case OpEq, OpNe:
		eq := metricEqualsLiteral(metric, l.Value)
		if l.Operator == OpNe {
			return !eq, nil
		}
		return eq, nil
	case OpGt, OpGte, OpLt, OpLte:
		return evalNumericComparison(l.Operator, metric, l.Value)
	case OpContains:
		return evalContains(metric, l.Value)
	case OpIn:
		return evalIn(metric, l.Value)
	case OpBetween:
		return evalBetween(metric, l.Value)
	default:
		return false, &models.ConditionEvaluationError{Reason: "unknown leaf operator: " + string(l.Operator)}
	}
}

func metricEqualsLiteral(metric models.MetricValue, literal interface{}) bool {
	switch metric.Kind() {
	case models.MetricKindNumeric:
		n, ok := toFloat(literal)
		v, _ := metric.Numeric()
		return ok && v == n
	case models.MetricKindString:
		s, ok := literal.(string)
		v, _ := metric.String()
		return ok && v == s
	case models.MetricKindBoolean:
		b, ok := literal.(bool)
		v, _ := metric.Boolean()
		return ok && v == b
	default:
		return false
	}
}

// evalNumericComparison requires both the metric and the literal to be
// numeric (spec.md §4.2 rule 5); a type mismatch evaluates to false.
func evalNumericComparison(op LeafOperator, metric models.MetricValue, literal interface{}) (bool, error) {
	v, err := metric.Numeric()
	if err != nil {
		return false, nil
	}
	n, ok := toFloat(literal)
	if !ok {
		return false, nil
	}
	switch op {
	case OpGt:
		return v > n, nil
	case OpGte:
		return v >= n, nil
	case OpLt:
		return v < n, nil
	case OpLte:
		return v <= n, nil
	default:
		return false, nil
	}
}

// evalContains requires a string metric and a string literal.
func evalContains(metric models.MetricValue, literal interface{}) (bool, error) {
	v, err := metric.String()
	if err != nil {
		return false, nil
	}
	s, ok := literal.(string)
	if !ok {
		return false, nil
	}
	return strings.Contains(v, s), nil
}

// evalIn requires a list literal and matches by equals semantics.
func evalIn(metric models.MetricValue, literal interface{}) (bool, error) {
	list, ok := literal.([]interface{})
	if !ok {
		return false, nil
	}
	for _, item := range list {
		if metricEqualsLiteral(metric, item) {
			return true, nil
		}
	}
	return false, nil
}

// evalBetween requires a numeric metric and a literal {min, max}, both
// numeric, inclusive.
func evalBetween(metric models.MetricValue, literal interface{}) (bool, error) {
	v, err := metric.Numeric()
	if err != nil {
		return false, nil
	}
	bounds, ok := literal.(map[string]interface{})
	if !ok {
		return false, nil
	}
	min, okMin := toFloat(bounds["min"])
	max, okMax := toFloat(bounds["max"])
	if !okMin || !okMax {
		return false, nil
	}
	return v >= min && v <= max, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
