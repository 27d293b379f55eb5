package threshold

import (
	"testing"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

func mustThreshold(t *testing.T, id, org, metric string, cmp models.ThresholdComparison, value float64, workflowID string) *models.TelemetryThreshold {
	t.Helper()
	th, err := models.NewTelemetryThreshold(id, org, metric, cmp, value, models.WorkflowID(workflowID), "")
	if err != nil {
		t.Fatalf("NewTelemetryThreshold: %v", err)
	}
	return th
}

func mustTelemetry(t *testing.T, org string, metrics map[string]models.MetricValue) *models.TelemetryData {
	t.Helper()
	now := time.Now()
	td, err := models.NewTelemetryData(models.TelemetryID("tel-1"), models.DeviceID("dev-1"), org, metrics, nil, now, now)
	if err != nil {
		t.Fatalf("NewTelemetryData: %v", err)
	}
	return td
}

func TestRegistry_ThresholdsReturnsRegisteredOrder(t *testing.T) {
	r := NewRegistry()
	a := mustThreshold(t, "t1", "org1", "temperature", models.ThresholdGreaterThan, 30, "wf1")
	b := mustThreshold(t, "t2", "org1", "humidity", models.ThresholdLessThan, 10, "wf2")

	r.RegisterThreshold("org1", a)
	r.RegisterThreshold("org1", b)

	got := r.Thresholds("org1")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("Thresholds() = %v, want [a b] in registration order", got)
	}
	if len(r.Thresholds("org2")) != 0 {
		t.Fatalf("Thresholds() for unknown org should be empty")
	}
}

func TestRegistry_Fire(t *testing.T) {
	tests := []struct {
		name       string
		comparison models.ThresholdComparison
		value      float64
		metric     models.MetricValue
		wantFire   bool
	}{
		{"GT fires over", models.ThresholdGreaterThan, 30, models.NumericMetric(35), true},
		{"GT does not fire under", models.ThresholdGreaterThan, 30, models.NumericMetric(20), false},
		{"EQ fires within tolerance", models.ThresholdEqual, 30, models.NumericMetric(30.0005), true},
		{"EQ does not fire outside tolerance", models.ThresholdEqual, 30, models.NumericMetric(30.01), false},
		{"NE fires outside tolerance", models.ThresholdNotEqual, 30, models.NumericMetric(31), true},
		{"NE does not fire within tolerance", models.ThresholdNotEqual, 30, models.NumericMetric(30.0001), false},
		{"non-numeric metric never fires", models.ThresholdGreaterThan, 30, models.StringMetric("hot"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			th := mustThreshold(t, "t1", "org1", "temperature", tt.comparison, tt.value, "wf1")
			r.RegisterThreshold("org1", th)

			data := mustTelemetry(t, "org1", map[string]models.MetricValue{"temperature": tt.metric})
			events := r.Fire(data, time.Now())

			if tt.wantFire && len(events) != 1 {
				t.Fatalf("Fire() = %d events, want 1", len(events))
			}
			if !tt.wantFire && len(events) != 0 {
				t.Fatalf("Fire() = %d events, want 0", len(events))
			}
			if tt.wantFire {
				ev := events[0]
				if ev.WorkflowID != th.WorkflowID || ev.Threshold != th || ev.Telemetry != data {
					t.Fatalf("Fire() event = %+v, did not carry expected threshold/telemetry", ev)
				}
			}
		})
	}
}

func TestRegistry_FireSkipsMissingMetric(t *testing.T) {
	r := NewRegistry()
	th := mustThreshold(t, "t1", "org1", "temperature", models.ThresholdGreaterThan, 30, "wf1")
	r.RegisterThreshold("org1", th)

	data := mustTelemetry(t, "org1", map[string]models.MetricValue{"humidity": models.NumericMetric(50)})
	if events := r.Fire(data, time.Now()); len(events) != 0 {
		t.Fatalf("Fire() = %d events, want 0 for missing metric", len(events))
	}
}

func TestRegistry_FireIgnoresOtherOrganizations(t *testing.T) {
	r := NewRegistry()
	th := mustThreshold(t, "t1", "org1", "temperature", models.ThresholdGreaterThan, 30, "wf1")
	r.RegisterThreshold("org1", th)

	data := mustTelemetry(t, "org2", map[string]models.MetricValue{"temperature": models.NumericMetric(99)})
	if events := r.Fire(data, time.Now()); len(events) != 0 {
		t.Fatalf("Fire() = %d events, want 0 for unmatched organization", len(events))
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	a := mustThreshold(t, "t1", "org1", "temperature", models.ThresholdGreaterThan, 30, "wf1")
	b := mustThreshold(t, "t2", "org1", "humidity", models.ThresholdLessThan, 10, "wf2")
	r.RegisterThreshold("org1", a)
	r.RegisterThreshold("org1", b)

	r.Unregister("org1", "wf1")

	got := r.Thresholds("org1")
	if len(got) != 1 || got[0] != b {
		t.Fatalf("Thresholds() after Unregister = %v, want [b]", got)
	}
}
