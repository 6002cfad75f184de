// Package step detects walking steps from the vertical component of
// acceleration.
//
// The detector keeps a smoothed gravity estimate along the device up
// vector, integrates the remaining dynamic acceleration over a short
// window into a vertical velocity, and fires when that velocity peaks
// above a threshold after swinging below its negative.
package step

import (
	"gonum.org/v1/gonum/floats"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

const (
	initialGravity = 9.81
	gravitySmooth  = 0.1
)

// Params configures a Detector.
type Params struct {
	Threshold    float64 // m/s of windowed vertical velocity
	Delay        float64 // seconds between steps, also the window length
	SamplePeriod float64 // nominal seconds between samples
}

// DefaultParams returns the tuning used for 50 Hz phone sensors.
func DefaultParams() Params {
	return Params{
		Threshold:    0.08,
		Delay:        0.35,
		SamplePeriod: 0.02,
	}
}

// WindowSize returns the number of samples spanning Delay.
func (p Params) WindowSize() int {
	n := int(0.5 + p.Delay/p.SamplePeriod)
	if n < 3 {
		n = 3
	}
	return n
}

// Detector is a stateful step detector. It is not safe for concurrent use.
type Detector struct {
	params Params

	gravity  float64
	lastTime float64
	lastStep float64
	count    int

	accBuf []float64 // dynamic acceleration × SamplePeriod
	velBuf []float64 // windowed velocity
	prev   int
	cur    int
	next   int
}

// NewDetector returns a detector in its initial state.
func NewDetector(p Params) *Detector {
	n := p.WindowSize()
	return &Detector{
		params:  p,
		gravity: initialGravity,
		accBuf:  make([]float64, n),
		velBuf:  make([]float64, n),
		prev:    n - 1,
		cur:     0,
		next:    1,
	}
}

// Count returns the number of steps detected so far.
func (d *Detector) Count() int { return d.count }

// Gravity returns the smoothed vertical gravity estimate.
func (d *Detector) Gravity() float64 { return d.gravity }

// Update consumes one acceleration sample (sensor frame, m/s²) with the
// device up vector and reports whether a step completed at time t. The
// first call only records the time. Each sample contributes one nominal
// SamplePeriod to the windowed velocity regardless of gaps in t.
func (d *Detector) Update(t float64, up, acc algebra.Vector3) bool {
	vertical := up.Dot(acc)
	d.gravity = (1-gravitySmooth)*d.gravity + gravitySmooth*vertical
	dynamic := vertical - d.gravity

	if d.lastTime == 0 {
		d.lastTime = t
		return false
	}
	d.lastTime = t

	d.accBuf[d.cur] = dynamic * d.params.SamplePeriod
	velocity := floats.Sum(d.accBuf)
	d.velBuf[d.cur] = velocity

	low := floats.Min(d.velBuf)
	high := floats.Max(d.velBuf)

	step := velocity > d.params.Threshold &&
		t-d.lastStep > d.params.Delay &&
		high == d.velBuf[d.prev] &&
		low < -d.params.Threshold
	if step {
		d.lastStep = t
		d.count++
	}

	n := len(d.velBuf)
	d.prev = d.cur
	d.cur = d.next
	d.next = (d.next + 1) % n
	return step
}
