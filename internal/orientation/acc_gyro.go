package orientation

import (
	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// AccGyro fuses accelerometer and gyroscope. The gyro is integrated every
// frame, then the up vector is nudged toward the mean accelerometer
// direction with a weight that collapses as the window gets noisy.
type AccGyro struct {
	params Params
	window *Window

	q           algebra.Quaternion
	ts          float64
	initialized bool

	deviation float64 // degrees, last frame
	weight    float64 // last correction weight
}

// NewAccGyro returns an uninitialized filter.
func NewAccGyro(p Params) *AccGyro {
	return &AccGyro{
		params: p,
		window: NewWindow(p.windowSize()),
		q:      algebra.Identity,
	}
}

func (f *AccGyro) Algorithm() Algorithm { return AccGyroAlgorithm }

func (f *AccGyro) Orientation() algebra.Quaternion { return f.q }

// Deviation returns the window spread in degrees seen by the last update.
func (f *AccGyro) Deviation() float64 { return f.deviation }

// Weight returns the correction weight applied by the last update.
func (f *AccGyro) Weight() float64 { return f.weight }

func (f *AccGyro) Update(fr Frame) algebra.Quaternion {
	return f.UpdateSample(fr.Accel, fr.Gyro, fr.Timestamp)
}

// UpdateSample consumes one accelerometer/gyroscope pair.
func (f *AccGyro) UpdateSample(acc, gyro algebra.Vector3, ts float64) algebra.Quaternion {
	if !f.initialized {
		f.q = alignUp(acc)
		f.window.Fill(acc)
		f.ts = ts
		f.initialized = true
		return f.q
	}

	f.window.Push(acc)

	prev := f.ts
	f.ts = ts
	f.q = Integrate(f.q, gyro, ts, prev, f.params.GyroEpsilon)

	up := f.q.UpVector()
	target := f.window.Mean().Normalized()
	alpha := algebra.SafeAcos(up.Dot(target))
	axis := target.Cross(up).Normalized()

	f.deviation = degrees(f.window.MaxDeviation())
	f.weight = 1 / (1 + f.params.AccErrorGain*f.deviation*f.deviation)

	f.q = f.q.Times(algebra.FromAxisAngle(alpha*f.weight, axis)).Normalized()
	return f.q
}
