// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package algebra

import "math"

// Matrix3 is a row-major 3×3 matrix:
//
//	/ M[0] M[1] M[2] \
//	| M[3] M[4] M[5] |
//	\ M[6] M[7] M[8] /
type Matrix3 [9]float64

// IdentityMatrix3 is the 3×3 identity.
var IdentityMatrix3 = Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// minHorizontalNorm rejects gravity/north pairs that are nearly parallel.
const minHorizontalNorm = 0.1

// At returns element (i, j).
func (m Matrix3) At(i, j int) float64 {
	return m[3*i+j]
}

// Row returns row i as a vector.
func (m Matrix3) Row(i int) Vector3 {
	return Vector3{m[3*i], m[3*i+1], m[3*i+2]}
}

// Transposed returns mᵀ.
func (m Matrix3) Transposed() Matrix3 {
	var t Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[3*i+j] = m.At(j, i)
		}
	}
	return t
}

// Mul returns m·n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var v float64
			for k := 0; k < 3; k++ {
				v += m.At(i, k) * n.At(k, j)
			}
			out[3*i+j] = v
		}
	}
	return out
}

// MulVec returns m·v.
func (m Matrix3) MulVec(v Vector3) Vector3 {
	return Vector3{
		X: m.Row(0).Dot(v),
		Y: m.Row(1).Dot(v),
		Z: m.Row(2).Dot(v),
	}
}

// Quaternion converts a rotation matrix with Shepperd's method, branching
// on the trace and the largest diagonal element so the divisor never gets
// close to zero. The result is normalized.
func (m Matrix3) Quaternion() Quaternion {
	const (
		m00, m01, m02 = 0, 1, 2
		m10, m11, m12 = 3, 4, 5
		m20, m21, m22 = 6, 7, 8
	)
	var q Quaternion
	tr := m[m00] + m[m11] + m[m22]
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2 // 4w
		q = Quaternion{
			X: (m[m21] - m[m12]) / s,
			Y: (m[m02] - m[m20]) / s,
			Z: (m[m10] - m[m01]) / s,
			W: 0.25 * s,
		}
	case m[m00] > m[m11] && m[m00] > m[m22]:
		s := math.Sqrt(1+m[m00]-m[m11]-m[m22]) * 2 // 4x
		q = Quaternion{
			X: 0.25 * s,
			Y: (m[m01] + m[m10]) / s,
			Z: (m[m02] + m[m20]) / s,
			W: (m[m21] - m[m12]) / s,
		}
	case m[m11] > m[m22]:
		s := math.Sqrt(1+m[m11]-m[m00]-m[m22]) * 2 // 4y
		q = Quaternion{
			X: (m[m01] + m[m10]) / s,
			Y: 0.25 * s,
			Z: (m[m12] + m[m21]) / s,
			W: (m[m02] - m[m20]) / s,
		}
	default:
		s := math.Sqrt(1+m[m22]-m[m00]-m[m11]) * 2 // 4z
		q = Quaternion{
			X: (m[m02] + m[m20]) / s,
			Y: (m[m12] + m[m21]) / s,
			Z: 0.25 * s,
			W: (m[m10] - m[m01]) / s,
		}
	}
	return q.Normalized()
}

// RotationFromUpNorth builds the rotation matrix whose rows are east,
// north and up expressed in the sensor frame, from an up (gravity)
// direction and an approximate north direction. North only contributes
// its horizontal part. ok is false when the two inputs are (nearly)
// parallel or up is zero; m is then the identity.
func RotationFromUpNorth(up, north Vector3) (m Matrix3, ok bool) {
	h := north.Cross(up)
	normH := h.Norm()
	normA := up.Norm()
	if normA == 0 || normH < minHorizontalNorm*normA*north.Norm() || normH == 0 {
		return IdentityMatrix3, false
	}
	h = h.Scale(1 / normH)
	a := up.Scale(1 / normA)
	n := a.Cross(h)
	return Matrix3{
		h.X, h.Y, h.Z,
		n.X, n.Y, n.Z,
		a.X, a.Y, a.Z,
	}, true
}
