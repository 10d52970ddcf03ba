package engine

import "math"

// Window is a fixed-capacity ring buffer holding the most recent samples in
// insertion order. Once at capacity, each push evicts exactly the oldest
// value, so the length never exceeds the capacity.
type Window struct {
	buf   []float64
	head  int
	count int
}

func NewWindow(capacity int) *Window {
	return &Window{buf: make([]float64, capacity)}
}

func (w *Window) Cap() int { return len(w.buf) }

func (w *Window) Len() int { return w.count }

// Push appends v, evicting the oldest value when already at capacity.
func (w *Window) Push(v float64) {
	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = v
		w.count++
		return
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// Values returns the window contents oldest-first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}

// Stats returns the mean and the sample standard deviation (N-1 divisor) of
// the window contents. The standard deviation is 0 when fewer than two
// values are held.
func (w *Window) Stats() (mean, stddev float64) {
	if w.count == 0 {
		return 0, 0
	}
	var n int
	var m2 float64
	for i := 0; i < w.count; i++ {
		v := w.buf[(w.head+i)%len(w.buf)]
		n++
		diff := v - mean
		mean += diff / float64(n)
		m2 += diff * (v - mean)
	}
	if n < 2 {
		return mean, 0
	}
	return mean, math.Sqrt(m2 / float64(n-1))
}
