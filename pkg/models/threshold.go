package models

import "time"

// TelemetryThreshold binds a metric/comparison/value triple to a
// workflow that should be triggered when telemetry crosses it. Owned and
// looked up by threshold.Registry, keyed by OrganizationID.
type TelemetryThreshold struct {
	ID             string
	OrganizationID string
	MetricName     string
	Comparison     ThresholdComparison
	Value          float64
	WorkflowID     WorkflowID
	Description    string
}

// equalityTolerance bounds EQ/NE threshold comparisons against floating
// point noise in reported metric values (spec.md §4.5/§4.8).
const equalityTolerance = 1e-3

// NewTelemetryThreshold validates the required fields before
// constructing a threshold definition.
func NewTelemetryThreshold(id, organizationID, metricName string, comparison ThresholdComparison, value float64, workflowID WorkflowID, description string) (*TelemetryThreshold, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if organizationID == "" {
		return nil, &ValidationError{Field: "organizationId", Message: "must not be empty"}
	}
	if metricName == "" {
		return nil, &ValidationError{Field: "metricName", Message: "must not be empty"}
	}
	if workflowID == "" {
		return nil, &ValidationError{Field: "workflowId", Message: "must not be empty"}
	}
	return &TelemetryThreshold{
		ID:             id,
		OrganizationID: organizationID,
		MetricName:     metricName,
		Comparison:     comparison,
		Value:          value,
		WorkflowID:     workflowID,
		Description:    description,
	}, nil
}

// Evaluate reports whether v satisfies the threshold's comparison. EQ
// and NE use a tolerance of equalityTolerance rather than exact float
// equality.
func (t *TelemetryThreshold) Evaluate(v float64) bool {
	delta := v - t.Value
	if delta < 0 {
		delta = -delta
	}
	switch t.Comparison {
	case ThresholdGreaterThan:
		return v > t.Value
	case ThresholdGreaterOrEqual:
		return v >= t.Value
	case ThresholdLessThan:
		return v < t.Value
	case ThresholdLessOrEqual:
		return v <= t.Value
	case ThresholdEqual:
		return delta < equalityTolerance
	case ThresholdNotEqual:
		return delta >= equalityTolerance
	default:
		return false
	}
}

// WorkflowTriggerEvent is emitted by threshold.Registry.Fire when a
// telemetry record crosses a registered threshold, carrying everything
// the engine needs to start a new WorkflowExecution.
type WorkflowTriggerEvent struct {
	WorkflowID WorkflowID
	Telemetry  *TelemetryData
	Threshold  *TelemetryThreshold
	Timestamp  time.Time
}
