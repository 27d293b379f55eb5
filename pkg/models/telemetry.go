package models

import "time"

// TelemetryData is a single observation reported by a device: a bundle of
// metric name/value pairs sharing one timestamp and optional location.
type TelemetryData struct {
	ID             TelemetryID
	DeviceID       DeviceID
	OrganizationID string
	Metrics        map[string]MetricValue
	Location       *GeoLocation
	Timestamp      time.Time
}

// maxClockSkew bounds how far into the future a reported timestamp may
// sit before the quality gate rejects it (spec.md §3/§4.6).
const maxClockSkew = 60 * time.Second

// NewTelemetryData validates the quality gate described in spec.md §3
// (non-empty device id, non-empty organization id, non-empty metrics,
// timestamp not more than 60s in the future of now) before constructing
// a record.
func NewTelemetryData(id TelemetryID, deviceID DeviceID, organizationID string, metrics map[string]MetricValue, location *GeoLocation, timestamp, now time.Time) (*TelemetryData, error) {
	if deviceID == "" {
		return nil, &ValidationError{Field: "deviceId", Message: "must not be empty"}
	}
	if organizationID == "" {
		return nil, &ValidationError{Field: "organizationId", Message: "must not be empty"}
	}
	if len(metrics) == 0 {
		return nil, &ValidationError{Field: "metrics", Message: "must not be empty"}
	}
	if timestamp.After(now.Add(maxClockSkew)) {
		return nil, &ValidationError{Field: "timestamp", Message: "must not be more than 60s in the future"}
	}

	cloned := make(map[string]MetricValue, len(metrics))
	for k, v := range metrics {
		cloned[k] = v
	}

	return &TelemetryData{
		ID:             id,
		DeviceID:       deviceID,
		OrganizationID: organizationID,
		Metrics:        cloned,
		Location:       location,
		Timestamp:      timestamp,
	}, nil
}

// Metric returns a named metric value and whether it was present.
func (t *TelemetryData) Metric(name string) (MetricValue, bool) {
	v, ok := t.Metrics[name]
	return v, ok
}
