// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package algebra

import (
	"fmt"
	"math"
)

// Quaternion is an immutable (x, y, z, w) quaternion with w the scalar part.
//
// Rotation helpers assume unit norm. Nothing here normalizes silently:
// callers normalize after composition chains with Normalized.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Identity is the no-rotation quaternion (0, 0, 0, 1).
var Identity = Quaternion{W: 1}

// Quat returns the quaternion (x, y, z, w).
func Quat(x, y, z, w float64) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

// FromAxisAngle builds the rotation of radians around axis. A zero axis
// yields the identity instead of dividing by zero.
func FromAxisAngle(radians float64, axis Vector3) Quaternion {
	n := axis.Norm()
	if n == 0 {
		n = 1
		radians = 0
	}
	s := math.Sin(radians / 2)
	return Quaternion{
		X: s * axis.X / n,
		Y: s * axis.Y / n,
		Z: s * axis.Z / n,
		W: math.Cos(radians / 2),
	}
}

// FromRotationVector converts a rotation vector (x, y, z of sin(θ/2)·axis,
// as reported by rotation-vector sensors) into a unit quaternion. The
// scalar part is recovered as sqrt(1-|v|²), clamped at zero.
func FromRotationVector(v Vector3) Quaternion {
	w := 1 - v.Dot(v)
	if w > 0 {
		w = math.Sqrt(w)
	} else {
		w = 0
	}
	return Quaternion{X: v.X, Y: v.Y, Z: v.Z, W: w}.Normalized()
}

// Norm returns the quaternion length.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.NormSquared())
}

// NormSquared returns x²+y²+z²+w².
func (q Quaternion) NormSquared() float64 {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

// Normalized returns q scaled to unit norm. The zero quaternion maps to
// the identity.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity
	}
	return Quaternion{q.X / n, q.Y / n, q.Z / n, q.W / n}
}

// Conjugate returns (-x, -y, -z, w).
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, q.W}
}

// Inverse returns conjugate/normSquared. Never call it on the zero
// quaternion.
func (q Quaternion) Inverse() Quaternion {
	d := q.NormSquared()
	return Quaternion{-q.X / d, -q.Y / d, -q.Z / d, q.W / d}
}

// Negated returns -q, which encodes the same rotation as q.
func (q Quaternion) Negated() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, -q.W}
}

// Plus returns the component-wise sum q + b.
func (q Quaternion) Plus(b Quaternion) Quaternion {
	return Quaternion{q.X + b.X, q.Y + b.Y, q.Z + b.Z, q.W + b.W}
}

// Times returns the Hamilton product q·b. Rotations compose as
// next = current.Times(delta).
func (q Quaternion) Times(b Quaternion) Quaternion {
	return Quaternion{
		X: q.W*b.X + q.X*b.W + q.Y*b.Z - q.Z*b.Y,
		Y: q.W*b.Y - q.X*b.Z + q.Y*b.W + q.Z*b.X,
		Z: q.W*b.Z + q.X*b.Y - q.Y*b.X + q.Z*b.W,
		W: q.W*b.W - q.X*b.X - q.Y*b.Y - q.Z*b.Z,
	}
}

// Divides returns q·b⁻¹.
func (q Quaternion) Divides(b Quaternion) Quaternion {
	return q.Times(b.Inverse())
}

// Dot returns the four-component scalar product.
func (q Quaternion) Dot(b Quaternion) float64 {
	return q.X*b.X + q.Y*b.Y + q.Z*b.Z + q.W*b.W
}

// AngleTo returns the rotation angle in radians separating q and b,
// taking the short way around.
func (q Quaternion) AngleTo(b Quaternion) float64 {
	d := math.Abs(q.Normalized().Dot(b.Normalized()))
	return 2 * SafeAcos(d)
}

// Slerp interpolates from q (t=0) to b (t=1) along the shortest arc.
// Neither operand is modified. Identical or antipodal inputs return q
// normalized.
func (q Quaternion) Slerp(b Quaternion, t float64) Quaternion {
	a := q.Normalized()
	b = b.Normalized()

	cosHalfTheta := a.Dot(b)
	if cosHalfTheta < 0 {
		cosHalfTheta = -cosHalfTheta
		b = b.Negated()
	}
	if math.Abs(cosHalfTheta) >= 1 {
		return a
	}

	sinHalfTheta := math.Sqrt(1 - cosHalfTheta*cosHalfTheta)
	if sinHalfTheta == 0 {
		return a
	}
	halfTheta := math.Acos(cosHalfTheta)
	ra := math.Sin((1-t)*halfTheta) / sinHalfTheta
	rb := math.Sin(t*halfTheta) / sinHalfTheta

	return Quaternion{
		X: a.X*ra + b.X*rb,
		Y: a.Y*ra + b.Y*rb,
		Z: a.Z*ra + b.Z*rb,
		W: a.W*ra + b.W*rb,
	}.Normalized()
}

// SlerpStep moves from q toward b by at most step radians of rotation.
func (q Quaternion) SlerpStep(b Quaternion, step float64) Quaternion {
	angle := q.AngleTo(b)
	if angle == 0 {
		return q.Normalized()
	}
	return q.Slerp(b, math.Min(step/angle, 1))
}

// RotateVector applies the sandwich product q*·v·q. This is the frame
// convention used by the fusion filters: it maps world axes into the
// sensor frame, so RotateVector(UnitZ) equals UpVector.
func (q Quaternion) RotateVector(v Vector3) Vector3 {
	p := q.Conjugate().Times(Quaternion{X: v.X, Y: v.Y, Z: v.Z}).Times(q)
	return Vector3{p.X, p.Y, p.Z}
}

// RotationMatrix returns the 3×3 rotation matrix of q.
func (q Quaternion) RotationMatrix() Matrix3 {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	return Matrix3{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*z*w, 2*x*z + 2*y*w,
		2*x*y + 2*z*w, 1 - 2*x*x - 2*z*z, 2*y*z - 2*x*w,
		2*x*z - 2*y*w, 2*y*z + 2*x*w, 1 - 2*x*x - 2*y*y,
	}
}

// UpVector returns the third row of the rotation matrix: world up
// expressed in the sensor frame. It is renormalized against drift.
func (q Quaternion) UpVector() Vector3 {
	return q.RotationMatrix().Row(2).Normalized()
}

// NorthVector returns the second row of the rotation matrix, renormalized.
func (q Quaternion) NorthVector() Vector3 {
	return q.RotationMatrix().Row(1).Normalized()
}

// Matrix4 returns the homogeneous 4×4 rotation matrix in column-major
// order, the layout expected by OpenGL-style renderers.
func (q Quaternion) Matrix4() [16]float64 {
	r := q.RotationMatrix()
	return [16]float64{
		r[0], r[3], r[6], 0,
		r[1], r[4], r[7], 0,
		r[2], r[5], r[8], 0,
		0, 0, 0, 1,
	}
}

// ArrayXYZW returns {x, y, z, w}, the exporter wire order.
func (q Quaternion) ArrayXYZW() [4]float64 {
	return [4]float64{q.X, q.Y, q.Z, q.W}
}

// IsFinite reports whether no component is NaN or infinite.
func (q Quaternion) IsFinite() bool {
	for _, c := range q.ArrayXYZW() {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (q Quaternion) String() string {
	return fmt.Sprintf("%.5f + %.5fi + %.5fj + %.5fk", q.W, q.X, q.Y, q.Z)
}
