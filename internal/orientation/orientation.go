// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package orientation fuses gyroscope, accelerometer, gravity and absolute
// orientation readings into a single orientation quaternion.
//
// Every filter is a self-contained state machine (uninitialized, then
// running) owned by one producer. Update is not safe for concurrent use;
// callers serialize sensor callbacks.
package orientation

import (
	"fmt"
	"log"
	"math"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// Logf is the package diagnostic logger. Replace it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Pose is orientation as roll/pitch/yaw in degrees (ZYX convention).
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Algorithm names one of the fusion filters.
type Algorithm string

const (
	AccGyroAlgorithm     Algorithm = "acc_gyro"
	GravAccGyroAlgorithm Algorithm = "grav_acc_gyro"
	AbsGyroAlgorithm     Algorithm = "abs_gyro"
)

// ParseAlgorithm validates an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case AccGyroAlgorithm, GravAccGyroAlgorithm, AbsGyroAlgorithm:
		return a, nil
	}
	return "", fmt.Errorf("unknown fusion algorithm %q (want acc_gyro, grav_acc_gyro or abs_gyro)", s)
}

// Frame is one synchronized set of readings handed to a filter. Fields a
// filter does not consume are ignored.
type Frame struct {
	Timestamp float64            // seconds, non-decreasing
	Accel     algebra.Vector3    // m/s², sensor frame
	Gyro      algebra.Vector3    // rad/s, sensor frame
	Gravity   algebra.Vector3    // m/s², sensor frame
	Absolute  algebra.Quaternion // external absolute orientation
}

// Filter is the common interface of the fusion filters.
type Filter interface {
	// Update consumes one frame and returns the new orientation.
	Update(f Frame) algebra.Quaternion
	// Orientation returns the current estimate.
	Orientation() algebra.Quaternion
	// Algorithm returns the filter name.
	Algorithm() Algorithm
}

// NewFilter builds the filter selected by alg.
func NewFilter(alg Algorithm, p Params) (Filter, error) {
	switch alg {
	case AccGyroAlgorithm:
		return NewAccGyro(p), nil
	case GravAccGyroAlgorithm:
		return NewGravAccGyro(p), nil
	case AbsGyroAlgorithm:
		return NewAbsGyro(p), nil
	}
	return nil, fmt.Errorf("unknown fusion algorithm %q", alg)
}

// PoseFromQuaternion converts an orientation to roll/pitch/yaw degrees.
func PoseFromQuaternion(q algebra.Quaternion) Pose {
	q = q.Normalized()
	x, y, z, w := q.X, q.Y, q.Z, q.W

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	sinp := math.Max(-1, math.Min(1, 2*(w*y-z*x)))
	pitch := math.Asin(sinp)
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))

	return Pose{
		Roll:  roll * 180.0 / math.Pi,
		Pitch: pitch * 180.0 / math.Pi,
		Yaw:   yaw * 180.0 / math.Pi,
	}
}

// PoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is unobservable from gravity and is left at 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func PoseFromAccel(acc algebra.Vector3) Pose {
	rollRad := math.Atan2(acc.Y, acc.Z)
	pitchRad := math.Atan2(-acc.X, math.Sqrt(acc.Y*acc.Y+acc.Z*acc.Z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// alignUp returns the smallest rotation whose up vector points along
// the measured gravity direction.
func alignUp(g algebra.Vector3) algebra.Quaternion {
	worldUp := g.Normalized()
	// angle between worldUp and local z, around worldUp × z
	radians := algebra.SafeAcos(worldUp.Z)
	axis := worldUp.Cross(algebra.UnitZ)
	return algebra.FromAxisAngle(radians, axis).Normalized()
}
