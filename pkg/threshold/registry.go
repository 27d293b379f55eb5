// Package threshold implements the threshold-to-workflow bridge:
// per-organization TelemetryThreshold registration and the firing logic
// that turns an inbound TelemetryData record into WorkflowTriggerEvent
// instances for the engine to consume.
package threshold

import (
	"sync"
	"time"

	"github.com/smilemakc/telemetryflow/pkg/models"
)

// equalityTolerance mirrors models.TelemetryThreshold's own tolerance:
// EQ/NE comparisons treat values within this delta as equal.
const equalityTolerance = 1e-3

// Registry holds, per organization, the list of thresholds registered
// against it, and matches inbound telemetry against them. Reads (Fire,
// Thresholds) dominate writes (RegisterThreshold) and must not block
// each other, so access is guarded by a sync.RWMutex rather than a
// single exclusive lock.
type Registry struct {
	mu    sync.RWMutex
	byOrg map[string][]*models.TelemetryThreshold
}

// NewRegistry constructs an empty, ready-to-use Registry. It holds no
// persistence of its own, per spec.md §4.5 — the caller owns durability.
func NewRegistry() *Registry {
	return &Registry{byOrg: make(map[string][]*models.TelemetryThreshold)}
}

// RegisterThreshold adds t to the organization's threshold list.
func (r *Registry) RegisterThreshold(organizationID string, t *models.TelemetryThreshold) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byOrg[organizationID] = append(r.byOrg[organizationID], t)
}

// Thresholds returns a defensive copy of the thresholds registered
// against organizationID, in registration order.
func (r *Registry) Thresholds(organizationID string) []*models.TelemetryThreshold {
	r.mu.RLock()
	defer r.mu.RUnlock()
	existing := r.byOrg[organizationID]
	out := make([]*models.TelemetryThreshold, len(existing))
	copy(out, existing)
	return out
}

// Unregister removes every threshold in the organization whose
// WorkflowID matches workflowID, e.g. when a workflow is archived.
func (r *Registry) Unregister(organizationID string, workflowID models.WorkflowID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.byOrg[organizationID]
	if len(existing) == 0 {
		return
	}
	kept := existing[:0:0]
	for _, t := range existing {
		if t.WorkflowID != workflowID {
			kept = append(kept, t)
		}
	}
	r.byOrg[organizationID] = kept
}

// Fire evaluates d against every threshold registered for d's
// organization, per spec.md §4.5: a non-numeric or missing metric skips
// the threshold silently, and only a violated comparison emits an
// event.
func (r *Registry) Fire(d *models.TelemetryData, now time.Time) []models.WorkflowTriggerEvent {
	r.mu.RLock()
	candidates := r.byOrg[d.OrganizationID]
	thresholds := make([]*models.TelemetryThreshold, len(candidates))
	copy(thresholds, candidates)
	r.mu.RUnlock()

	var events []models.WorkflowTriggerEvent
	for _, t := range thresholds {
		metric, ok := d.Metric(t.MetricName)
		if !ok {
			continue
		}
		v, err := metric.Numeric()
		if err != nil {
			continue
		}
		if !t.Evaluate(v) {
			continue
		}
		events = append(events, models.WorkflowTriggerEvent{
			WorkflowID: t.WorkflowID,
			Telemetry:  d,
			Threshold:  t,
			Timestamp:  now,
		})
	}
	return events
}
