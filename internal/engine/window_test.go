package engine

import (
	"math"
	"testing"
)

func TestWindowGrowsToCapacity(t *testing.T) {
	w := NewWindow(3)
	for i, v := range []float64{1, 2, 3} {
		w.Push(v)
		if w.Len() != i+1 {
			t.Fatalf("len after %d pushes: %d", i+1, w.Len())
		}
	}
	if w.Cap() != 3 {
		t.Fatalf("cap: %d", w.Cap())
	}
}

func TestWindowEvictsOldestFIFO(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}
	if w.Len() != 3 {
		t.Fatalf("len: %d", w.Len())
	}
	got := w.Values()
	want := []float64{3, 4, 5}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("values: %v, want %v", got, want)
		}
	}
}

func TestWindowStats(t *testing.T) {
	w := NewWindow(5)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		w.Push(v)
	}
	mean, stddev := w.Stats()
	if mean != 3 {
		t.Fatalf("mean: %v", mean)
	}
	if math.Abs(stddev-math.Sqrt(2.5)) > 1e-12 {
		t.Fatalf("stddev: %v", stddev)
	}
}

func TestWindowStatsFewerThanTwo(t *testing.T) {
	w := NewWindow(4)
	if _, stddev := w.Stats(); stddev != 0 {
		t.Fatalf("empty window stddev: %v", stddev)
	}
	w.Push(7)
	mean, stddev := w.Stats()
	if mean != 7 || stddev != 0 {
		t.Fatalf("single value stats: mean=%v stddev=%v", mean, stddev)
	}
}

func TestWindowStatsAfterEviction(t *testing.T) {
	w := NewWindow(2)
	for _, v := range []float64{100, 10, 20} {
		w.Push(v)
	}
	mean, _ := w.Stats()
	if mean != 15 {
		t.Fatalf("mean over surviving values: %v", mean)
	}
}
