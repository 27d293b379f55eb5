package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTelemetryData_Success(t *testing.T) {
	now := time.Now()
	d, err := NewTelemetryData("tel-1", "device-1", "org-1",
		map[string]MetricValue{"temp": NumericMetric(21.5)}, nil, now, now)
	require.NoError(t, err)
	v, ok := d.Metric("temp")
	require.True(t, ok)
	n, _ := v.Numeric()
	assert.Equal(t, 21.5, n)
}

func TestNewTelemetryData_RejectsEmptyMetrics(t *testing.T) {
	now := time.Now()
	_, err := NewTelemetryData("tel-1", "device-1", "org-1", nil, nil, now, now)
	require.Error(t, err)
}

func TestNewTelemetryData_RejectsFarFutureTimestamp(t *testing.T) {
	now := time.Now()
	metrics := map[string]MetricValue{"temp": NumericMetric(1)}
	_, err := NewTelemetryData("tel-1", "device-1", "org-1", metrics, nil, now.Add(2*time.Minute), now)
	require.Error(t, err)
}

func TestNewTelemetryData_AllowsSmallClockSkew(t *testing.T) {
	now := time.Now()
	metrics := map[string]MetricValue{"temp": NumericMetric(1)}
	_, err := NewTelemetryData("tel-1", "device-1", "org-1", metrics, nil, now.Add(30*time.Second), now)
	require.NoError(t, err)
}

func TestNewTelemetryData_RejectsEmptyDeviceID(t *testing.T) {
	now := time.Now()
	metrics := map[string]MetricValue{"temp": NumericMetric(1)}
	_, err := NewTelemetryData("tel-1", "", "org-1", metrics, nil, now, now)
	require.Error(t, err)
}
