package orientation

import (
	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// Window is a fixed-size ring of recent accelerometer samples with an
// incrementally maintained mean. It is used as a stillness signal: the
// wider the samples spread around the mean, the less the mean can be
// trusted as gravity.
type Window struct {
	buf  []algebra.Vector3
	idx  int // slot written last
	mean algebra.Vector3
}

// NewWindow allocates a zeroed window of n samples.
func NewWindow(n int) *Window {
	return &Window{
		buf: make([]algebra.Vector3, n),
		idx: -1,
	}
}

// Fill sets every slot, and the mean, to v.
func (w *Window) Fill(v algebra.Vector3) {
	for i := range w.buf {
		w.buf[i] = v
	}
	w.mean = v
}

// Push evicts the oldest sample and stores v. The mean update is O(1):
// mean += (v - evicted)/N.
func (w *Window) Push(v algebra.Vector3) {
	w.idx = (w.idx + 1) % len(w.buf)
	n := float64(len(w.buf))
	w.mean = w.mean.Add(v.Sub(w.buf[w.idx]).Scale(1 / n))
	w.buf[w.idx] = v
}

// Mean returns the running mean.
func (w *Window) Mean() algebra.Vector3 {
	return w.mean
}

// Len returns the window capacity.
func (w *Window) Len() int {
	return len(w.buf)
}

// Samples returns a copy of the buffered samples, oldest first.
func (w *Window) Samples() []algebra.Vector3 {
	out := make([]algebra.Vector3, 0, len(w.buf))
	for i := 1; i <= len(w.buf); i++ {
		out = append(out, w.buf[(w.idx+i+len(w.buf))%len(w.buf)])
	}
	return out
}

// MaxDeviation returns the largest angle in radians between the mean
// direction and any buffered sample direction. O(N).
func (w *Window) MaxDeviation() float64 {
	meanDir := w.mean.Normalized()
	lowest := 1.0
	for _, v := range w.buf {
		if d := meanDir.Dot(v.Normalized()); d < lowest {
			lowest = d
		}
	}
	return algebra.SafeAcos(lowest)
}
