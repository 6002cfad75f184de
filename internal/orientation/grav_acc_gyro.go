package orientation

import (
	"math"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// GravAccGyro fuses a platform gravity sensor, the accelerometer and the
// gyroscope. The gravity sensor is trusted for up, except for a slowly
// learned bias between it and the still accelerometer. The gyro supplies
// heading.
type GravAccGyro struct {
	params Params
	window *Window

	relative    algebra.Quaternion
	absolute    algebra.Quaternion
	bias        algebra.Quaternion
	ts          float64
	initialized bool

	deviation float64
	weight    float64
}

// NewGravAccGyro returns an uninitialized filter.
func NewGravAccGyro(p Params) *GravAccGyro {
	return &GravAccGyro{
		params:   p,
		window:   NewWindow(p.windowSize()),
		relative: algebra.Identity,
		absolute: algebra.Identity,
		bias:     algebra.Identity,
	}
}

func (f *GravAccGyro) Algorithm() Algorithm { return GravAccGyroAlgorithm }

func (f *GravAccGyro) Orientation() algebra.Quaternion { return f.relative }

// Bias returns the learned gravity-to-accelerometer rotation.
func (f *GravAccGyro) Bias() algebra.Quaternion { return f.bias }

// Absolute returns the last gravity-derived orientation.
func (f *GravAccGyro) Absolute() algebra.Quaternion { return f.absolute }

func (f *GravAccGyro) Deviation() float64 { return f.deviation }

func (f *GravAccGyro) Weight() float64 { return f.weight }

func (f *GravAccGyro) Update(fr Frame) algebra.Quaternion {
	return f.UpdateSample(fr.Gravity, fr.Accel, fr.Gyro, fr.Timestamp)
}

// UpdateSample consumes one gravity/accelerometer/gyroscope triple.
func (f *GravAccGyro) UpdateSample(gravity, acc, gyro algebra.Vector3, ts float64) algebra.Quaternion {
	worldUp := gravity.Normalized()

	prev := f.ts
	f.ts = ts

	if !f.initialized {
		f.relative = alignUp(gravity)
		f.absolute = f.relative
		f.window.Fill(gravity)
		f.initialized = true
		return f.relative
	}

	f.updateBias(worldUp, acc)

	f.relative = Integrate(f.relative, gyro, ts, prev, f.params.GyroEpsilon)

	up := f.bias.RotateVector(worldUp).Normalized()
	north := f.relative.RotationMatrix().Row(1)
	if m, ok := algebra.RotationFromUpNorth(up, north); ok {
		f.absolute = m.Quaternion()
	}

	f.relative = f.relative.Slerp(f.absolute, f.params.CorrectionDamping)
	return f.relative
}

// updateBias moves the bias toward the rotation taking gravity onto the
// mean accelerometer direction, as far as the window is still.
func (f *GravAccGyro) updateBias(worldUp, acc algebra.Vector3) {
	f.window.Push(acc)

	f.deviation = degrees(f.window.MaxDeviation())
	f.weight = math.Max(0, 1-f.params.GravErrorGain*f.deviation)

	mean := f.window.Mean().Normalized()
	alpha := algebra.SafeAcos(worldUp.Dot(mean))
	axis := mean.Cross(worldUp).Normalized()
	f.bias = f.bias.Slerp(algebra.FromAxisAngle(alpha, axis), f.weight)
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
