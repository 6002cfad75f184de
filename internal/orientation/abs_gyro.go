package orientation

import (
	"math"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// AbsGyro fuses an external absolute orientation (e.g. a platform rotation
// vector) with the gyroscope. The gyro-integrated orientation is pulled
// toward the absolute one in proportion to the angular rate, absolute
// readings that disagree too much are ignored, and a sustained large
// disagreement snaps the estimate back once the device is calm.
type AbsGyro struct {
	params Params

	relative     algebra.Quaternion
	pureRelative algebra.Quaternion
	absolute     algebra.Quaternion
	ts           float64
	initialized  bool

	angularRate  float64
	panicCounter int
	resets       int
}

// NewAbsGyro returns an uninitialized filter.
func NewAbsGyro(p Params) *AbsGyro {
	return &AbsGyro{
		params:       p,
		relative:     algebra.Identity,
		pureRelative: algebra.Identity,
		absolute:     algebra.Identity,
	}
}

func (f *AbsGyro) Algorithm() Algorithm { return AbsGyroAlgorithm }

func (f *AbsGyro) Orientation() algebra.Quaternion { return f.relative }

// PureRelative returns the gyro-only orientation, never corrected after
// the first frame.
func (f *AbsGyro) PureRelative() algebra.Quaternion { return f.pureRelative }

// Absolute returns the last absolute reading.
func (f *AbsGyro) Absolute() algebra.Quaternion { return f.absolute }

// PanicCounter returns the number of consecutive frames with a large
// relative/absolute disagreement.
func (f *AbsGyro) PanicCounter() int { return f.panicCounter }

// Resets returns how many times the estimate was snapped to the absolute
// reading.
func (f *AbsGyro) Resets() int { return f.resets }

func (f *AbsGyro) Update(fr Frame) algebra.Quaternion {
	return f.UpdateSample(fr.Absolute, fr.Gyro, fr.Timestamp)
}

// UpdateSample consumes one absolute orientation/gyroscope pair.
func (f *AbsGyro) UpdateSample(absolute algebra.Quaternion, gyro algebra.Vector3, ts float64) algebra.Quaternion {
	f.absolute = absolute.Normalized()

	if !f.initialized {
		f.relative = f.absolute
		f.pureRelative = f.absolute
		f.ts = ts
		f.initialized = true
		return f.relative
	}

	prev := f.ts
	f.ts = ts
	f.angularRate = gyro.Norm()

	f.relative = Integrate(f.relative, gyro, ts, prev, f.params.AbsGyroEpsilon)
	f.pureRelative = Integrate(f.pureRelative, gyro, ts, prev, f.params.AbsGyroEpsilon)

	f.relative = f.correct()
	return f.relative
}

func (f *AbsGyro) correct() algebra.Quaternion {
	dot := math.Abs(f.relative.Dot(f.absolute))
	out := f.relative

	if dot < f.params.OutlierThreshold {
		if dot < f.params.PanicThreshold {
			f.panicCounter++
		} else {
			f.panicCounter = 0
		}
	} else {
		w := math.Max(0, math.Min(1, f.params.InterpolationWeight*f.angularRate))
		out = f.relative.Slerp(f.absolute, w)
		f.panicCounter = 0
	}

	if f.panicCounter > f.params.PanicCount {
		if f.angularRate < f.params.PanicMotionLimit {
			Logf("orientation: panic reset after %d divergent frames", f.panicCounter)
			f.panicCounter = 0
			f.resets++
			return f.absolute
		}
		Logf("orientation: panic reset deferred, rotating at %.2f rad/s", f.angularRate)
	}
	return out
}
