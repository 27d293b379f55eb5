package telemetry

import (
	"testing"
	"time"
)

func TestRollingWindow_RecordAndValues(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewRollingWindow(func() time.Time { return now })

	w.Record("org-1", "dev-1", "temp", 10)
	w.Record("org-1", "dev-1", "temp", 20)
	w.Record("org-1", "dev-1", "temp", 30)

	got := w.Values("org-1", "dev-1", "temp")
	want := []float64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("Values() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRollingWindow_PrunesOldSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewRollingWindow(func() time.Time { return now })

	w.Record("org-1", "dev-1", "temp", 1)
	now = now.Add(30 * time.Second)
	w.Record("org-1", "dev-1", "temp", 2)
	now = now.Add(31 * time.Second) // first sample now 61s old, pruned

	got := w.Values("org-1", "dev-1", "temp")
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("Values() = %v, want [2]", got)
	}
}

func TestRollingWindow_KeysAreIndependent(t *testing.T) {
	now := time.Now()
	w := NewRollingWindow(func() time.Time { return now })

	w.Record("org-1", "dev-1", "temp", 1)
	w.Record("org-1", "dev-2", "temp", 2)
	w.Record("org-2", "dev-1", "temp", 3)
	w.Record("org-1", "dev-1", "humidity", 4)

	if got := w.Values("org-1", "dev-1", "temp"); len(got) != 1 || got[0] != 1 {
		t.Errorf("org-1/dev-1/temp = %v, want [1]", got)
	}
	if got := w.Values("org-1", "dev-2", "temp"); len(got) != 1 || got[0] != 2 {
		t.Errorf("org-1/dev-2/temp = %v, want [2]", got)
	}
	if got := w.Values("org-2", "dev-1", "temp"); len(got) != 1 || got[0] != 3 {
		t.Errorf("org-2/dev-1/temp = %v, want [3]", got)
	}
	if got := w.Values("org-1", "dev-1", "humidity"); len(got) != 1 || got[0] != 4 {
		t.Errorf("org-1/dev-1/humidity = %v, want [4]", got)
	}
}

func TestRollingWindow_Average(t *testing.T) {
	now := time.Now()
	w := NewRollingWindow(func() time.Time { return now })

	if _, ok := w.Average("org-1", "dev-1", "temp"); ok {
		t.Fatal("Average() on empty window should report false")
	}

	w.Record("org-1", "dev-1", "temp", 10)
	w.Record("org-1", "dev-1", "temp", 20)

	avg, ok := w.Average("org-1", "dev-1", "temp")
	if !ok {
		t.Fatal("Average() should report true once populated")
	}
	if avg != 15 {
		t.Errorf("Average() = %v, want 15", avg)
	}
}

func TestRollingWindow_ValuesOnUnknownKeyIsEmpty(t *testing.T) {
	w := NewRollingWindow(nil)
	got := w.Values("org-1", "dev-1", "temp")
	if len(got) != 0 {
		t.Errorf("Values() on unknown key = %v, want empty", got)
	}
}
