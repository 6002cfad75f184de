// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
	"github.com/relabs-tech/inertial_fusion/internal/imu"
)

const standardGravity = 9.81

// MockOptions shapes a synthetic walking session.
type MockOptions struct {
	Seed         int64
	Start        float64       // first timestamp, seconds (must be > 0)
	SamplePeriod float64       // seconds between ticks
	Duration     float64       // seconds; 0 runs forever
	Cadence      float64       // steps per second
	Amplitude    float64       // vertical bounce, m/s²
	Tilt         float64       // radians about x
	SpinRate     float64       // rad/s about the sensor z axis
	Noise        float64       // std dev added to accel and gyro
	Interval     time.Duration // wall-clock pacing per tick; 0 for none
}

// DefaultMockOptions returns a ten second, two steps per second walk.
func DefaultMockOptions() MockOptions {
	return MockOptions{
		Seed:         1,
		Start:        1.0,
		SamplePeriod: 0.02,
		Duration:     10,
		Cadence:      2,
		Amplitude:    3,
		Tilt:         0.2,
		SpinRate:     0.3,
		Noise:        0.02,
	}
}

// MockSource generates smoothly changing, mutually consistent samples.
// Every tick emits gravity, rotation vector, accelerometer and gyroscope
// samples, in that order, sharing one timestamp.
type MockSource struct {
	opts   MockOptions
	rng    *rand.Rand
	tick   int
	queue  []imu.Sample
	truth  algebra.Quaternion
	offset algebra.Quaternion
}

// NewMockSource creates a deterministic mock session.
func NewMockSource(opts MockOptions) *MockSource {
	if opts.Start <= 0 {
		opts.Start = 1.0
	}
	if opts.SamplePeriod <= 0 {
		opts.SamplePeriod = 0.02
	}
	return &MockSource{
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		truth:  algebra.Identity,
		offset: algebra.FromAxisAngle(opts.Tilt, algebra.Vec(1, 0, 0)),
	}
}

// Truth returns the orientation used for the most recent tick.
func (m *MockSource) Truth() algebra.Quaternion {
	return m.truth
}

func (m *MockSource) Next() (imu.Sample, error) {
	if len(m.queue) == 0 {
		if err := m.generate(); err != nil {
			return imu.Sample{}, err
		}
	}
	s := m.queue[0]
	m.queue = m.queue[1:]
	return s, nil
}

func (m *MockSource) generate() error {
	elapsed := float64(m.tick) * m.opts.SamplePeriod
	if m.opts.Duration > 0 && elapsed > m.opts.Duration+m.opts.SamplePeriod/2 {
		return io.EOF
	}
	if m.opts.Interval > 0 && m.tick > 0 {
		time.Sleep(m.opts.Interval)
	}
	m.tick++

	ts := m.opts.Start + elapsed
	m.truth = m.offset.Times(algebra.FromAxisAngle(m.opts.SpinRate*elapsed, algebra.UnitZ)).Normalized()
	up := m.truth.RotateVector(algebra.UnitZ)

	bounce := m.opts.Amplitude * math.Sin(2*math.Pi*m.opts.Cadence*elapsed)
	accel := up.Scale(standardGravity + bounce).Add(m.noise())
	gyro := algebra.Vec(0, 0, m.opts.SpinRate).Add(m.noise())

	rot := m.truth
	if rot.W < 0 {
		rot = rot.Negated()
	}

	m.queue = append(m.queue,
		imu.Sample{Kind: imu.Gravity, Timestamp: ts, Vector: up.Scale(standardGravity)},
		imu.Sample{Kind: imu.AbsoluteReference, Timestamp: ts, Vector: algebra.Vec(rot.X, rot.Y, rot.Z)},
		imu.Sample{Kind: imu.Accelerometer, Timestamp: ts, Vector: accel},
		imu.Sample{Kind: imu.Gyroscope, Timestamp: ts, Vector: gyro},
	)
	return nil
}

func (m *MockSource) noise() algebra.Vector3 {
	if m.opts.Noise == 0 {
		return algebra.Vector3{}
	}
	n := m.opts.Noise
	return algebra.Vec(m.rng.NormFloat64()*n, m.rng.NormFloat64()*n, m.rng.NormFloat64()*n)
}
