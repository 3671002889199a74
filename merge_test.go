package em3

import (
	"testing"
	"time"
)

func TestScalarHistoryInterpolatesLinearly(t *testing.T) {
	h := newScalarHistory(10)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Add(t0, 0)
	h.Add(t0.Add(10*time.Second), 10)

	v, ok := h.At(t0.Add(5 * time.Second))
	if !ok {
		t.Fatalf("expected ok")
	}
	if v != 5 {
		t.Fatalf("expected midpoint interpolation of 5, got %v", v)
	}
}

func TestScalarHistoryClampsAtBoundaries(t *testing.T) {
	h := newScalarHistory(10)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Add(t0, 1)
	h.Add(t0.Add(time.Minute), 2)

	before, _ := h.At(t0.Add(-time.Hour))
	if before != 1 {
		t.Fatalf("expected clamp to first value before range, got %v", before)
	}
	after, _ := h.At(t0.Add(time.Hour))
	if after != 2 {
		t.Fatalf("expected clamp to last value after range, got %v", after)
	}
}

func TestScalarHistoryRespectsCapacity(t *testing.T) {
	h := newScalarHistory(2)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h.Add(t0, 1)
	h.Add(t0.Add(time.Second), 2)
	h.Add(t0.Add(2*time.Second), 3)

	if len(h.times) != 2 {
		t.Fatalf("expected capacity-bounded history of 2, got %d", len(h.times))
	}
	v, _ := h.At(t0)
	if v != 2 {
		t.Fatalf("expected oldest sample evicted, got %v", v)
	}
}

func TestMergeContextActiveAttitudeSensorFirstSeenWins(t *testing.T) {
	m := NewMergeContext()
	epoch := recordEpoch(20240101, 0)

	a1 := Attitude{Date: 20240101, Msec: 0, SensorSystem: 1, Samples: []AttitudeSample{{Time: epoch, Roll: 1, Pitch: 1, Heave: 1, Heading: 10}}}
	m.FeedAttitude(a1)

	a2 := Attitude{Date: 20240101, Msec: 0, SensorSystem: 2, Samples: []AttitudeSample{{Time: epoch.Add(time.Second), Roll: 99, Pitch: 99, Heave: 99, Heading: 99}}}
	m.FeedAttitude(a2)

	roll, _, _, ok := m.Attitude(epoch.Add(time.Second))
	if !ok {
		t.Fatalf("expected attitude to be resolvable")
	}
	if roll == 99 {
		t.Fatalf("expected second sensor's samples to be ignored once first sensor is active")
	}
}

func TestMergeContextSetActiveAttitudeSensorOverride(t *testing.T) {
	m := NewMergeContext()
	epoch := recordEpoch(20240101, 0)
	m.FeedAttitude(Attitude{Date: 20240101, SensorSystem: 1, Samples: []AttitudeSample{{Time: epoch, Roll: 1, Pitch: 1, Heave: 1}}})

	m.SetActiveAttitudeSensor(2)
	m.FeedAttitude(Attitude{Date: 20240101, SensorSystem: 2, Samples: []AttitudeSample{{Time: epoch.Add(time.Second), Roll: 7, Pitch: 7, Heave: 7}}})

	roll, _, _, ok := m.Attitude(epoch.Add(time.Second))
	if !ok || roll != 7 {
		t.Fatalf("expected override to admit sensor 2's samples, got roll=%v ok=%v", roll, ok)
	}
}
