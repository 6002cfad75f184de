package orientation

import (
	"math"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// Integrate advances q0 by the angular rate omega (rad/s) held between
// tPrev and t, using the exponential map. tPrev == 0 means there is no
// previous sample yet and q0 is returned normalized.
//
// Below epsilon the raw rate is used as the axis: the resulting rotation
// is negligible and no division by a near-zero magnitude happens.
func Integrate(q0 algebra.Quaternion, omega algebra.Vector3, t, tPrev, epsilon float64) algebra.Quaternion {
	if tPrev == 0 {
		return q0.Normalized()
	}

	dt := t - tPrev
	magnitude := omega.Norm()
	axis := omega
	if magnitude > epsilon {
		axis = omega.Scale(1 / magnitude)
	}

	halfTheta := magnitude * dt / 2
	s := math.Sin(halfTheta)
	delta := algebra.Quat(s*axis.X, s*axis.Y, s*axis.Z, math.Cos(halfTheta))
	return q0.Times(delta).Normalized()
}
