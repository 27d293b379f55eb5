package models

import "time"

// AggregationType names a rollup function available to TelemetryQuery and
// to the rolling-window/analysis surfaces in package telemetry.
type AggregationType string

const (
	AggregationAvg   AggregationType = "AVG"
	AggregationMin   AggregationType = "MIN"
	AggregationMax   AggregationType = "MAX"
	AggregationSum   AggregationType = "SUM"
	AggregationCount AggregationType = "COUNT"
	AggregationP50   AggregationType = "P50"
	AggregationP95   AggregationType = "P95"
	AggregationP99   AggregationType = "P99"
	AggregationStdev AggregationType = "STDDEV"
)

// ThresholdComparison names the comparison operator a TelemetryThreshold
// applies against an incoming metric value.
type ThresholdComparison string

const (
	ThresholdGreaterThan    ThresholdComparison = "GT"
	ThresholdGreaterOrEqual ThresholdComparison = "GTE"
	ThresholdLessThan       ThresholdComparison = "LT"
	ThresholdLessOrEqual    ThresholdComparison = "LTE"
	ThresholdEqual          ThresholdComparison = "EQ"
	ThresholdNotEqual       ThresholdComparison = "NE"
)

// TelemetryQuery describes a bounded, optionally-aggregated read over
// stored telemetry, as served by telemetry.TelemetryRepository. The
// spatial filter is either a (Center, RadiusKm) pair or a BoundingBox,
// never both.
type TelemetryQuery struct {
	OrganizationID string
	DeviceIDs      []DeviceID
	MetricNames    []string
	From           time.Time
	To             time.Time
	Center         *GeoLocation
	RadiusKm       float64
	BoundingBox    *BoundingBox
	Aggregation    *AggregationType
	BucketSize     time.Duration
	Limit          int
}

// NewTelemetryQuery validates the cross-field constraints spec.md §3
// places on a query: From must precede To, Center and RadiusKm must be
// supplied together and are mutually exclusive with BoundingBox, a
// bucketed aggregation requires both an aggregation function and a
// positive bucket size, and Limit, when set, must be positive.
func NewTelemetryQuery(organizationID string, deviceIDs []DeviceID, metricNames []string, from, to time.Time, center *GeoLocation, radiusKm float64, boundingBox *BoundingBox, aggregation *AggregationType, bucketSize time.Duration, limit int) (*TelemetryQuery, error) {
	if organizationID == "" {
		return nil, &ValidationError{Field: "organizationId", Message: "must not be empty"}
	}
	if !from.Before(to) {
		return nil, &ValidationError{Field: "from", Message: "must be strictly before to"}
	}
	if limit < 0 {
		return nil, &ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if (center == nil) != (radiusKm == 0) {
		return nil, &ValidationError{Field: "radiusKm", Message: "center and radiusKm must be supplied together"}
	}
	if center != nil && boundingBox != nil {
		return nil, &ValidationError{Field: "boundingBox", Message: "must not be combined with center/radiusKm"}
	}
	if bucketSize > 0 && aggregation == nil {
		return nil, &ValidationError{Field: "aggregation", Message: "required when bucketSize is set"}
	}
	if aggregation != nil && bucketSize <= 0 {
		return nil, &ValidationError{Field: "bucketSize", Message: "must be positive when aggregation is set"}
	}

	return &TelemetryQuery{
		OrganizationID: organizationID,
		DeviceIDs:      append([]DeviceID(nil), deviceIDs...),
		MetricNames:    append([]string(nil), metricNames...),
		From:           from,
		To:             to,
		Center:         center,
		RadiusKm:       radiusKm,
		BoundingBox:    boundingBox,
		Aggregation:    aggregation,
		BucketSize:     bucketSize,
		Limit:          limit,
	}, nil
}
