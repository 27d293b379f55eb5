package telemetry

import (
	"sync"
	"time"
)

// rollingWindow bounds how far back a RollingWindow keeps samples.
const rollingWindow = 60 * time.Second

type sample struct {
	at    time.Time
	value float64
}

// RollingWindow maintains, per (organizationId, deviceId, metric) key, a
// sliding 60-second window of recently ingested numeric values, pruned
// lazily on read and write. It serves "recent aggregate" queries without
// round-tripping through TelemetryRepository, and is not itself
// persisted — a process restart loses it, by design (spec.md §4.6).
type RollingWindow struct {
	mu      sync.Mutex
	samples map[string][]sample
	now     func() time.Time
}

// NewRollingWindow constructs an empty window. A nil clock defaults to
// time.Now.
func NewRollingWindow(clock func() time.Time) *RollingWindow {
	if clock == nil {
		clock = time.Now
	}
	return &RollingWindow{samples: make(map[string][]sample), now: clock}
}

func rollingKey(organizationID, deviceID, metric string) string {
	return organizationID + "\x00" + deviceID + "\x00" + metric
}

// Record appends v to the window for the given key at the current time,
// pruning samples older than the window.
func (w *RollingWindow) Record(organizationID, deviceID, metric string, v float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := rollingKey(organizationID, deviceID, metric)
	w.samples[key] = prune(append(w.samples[key], sample{at: w.now(), value: v}), w.now())
}

// Values prunes samples older than the window for the given key and
// returns a defensive copy of the remaining values, oldest first.
func (w *RollingWindow) Values(organizationID, deviceID, metric string) []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := rollingKey(organizationID, deviceID, metric)
	pruned := prune(w.samples[key], w.now())
	w.samples[key] = pruned
	out := make([]float64, len(pruned))
	for i, s := range pruned {
		out[i] = s.value
	}
	return out
}

// Average returns the mean of the current window's values, and false if
// the window is empty.
func (w *RollingWindow) Average(organizationID, deviceID, metric string) (float64, bool) {
	values := w.Values(organizationID, deviceID, metric)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func prune(samples []sample, now time.Time) []sample {
	cutoff := now.Add(-rollingWindow)
	i := 0
	for i < len(samples) && samples[i].at.Before(cutoff) {
		i++
	}
	if i == 0 {
		return samples
	}
	out := make([]sample, len(samples)-i)
	copy(out, samples[i:])
	return out
}
