// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fusion turns an asynchronous stream of sensor samples into
// orientation and step outputs.
//
// The Engine latches the most recent sample of every kind. Once every kind
// the selected filter needs has been refreshed, it assembles a frame,
// updates the filter and the step detector, and emits an Output.
package fusion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
	"github.com/relabs-tech/inertial_fusion/internal/imu"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
	"github.com/relabs-tech/inertial_fusion/internal/step"
)

const (
	numKinds = int(imu.AbsoluteReference) + 1

	// gyroOnlyEpsilon keeps the axis normalized for all but a zero rate.
	gyroOnlyEpsilon = 1e-9
)

var (
	// ErrTimestampRegression is returned for a sample older than the last
	// accepted sample of the same kind.
	ErrTimestampRegression = errors.New("timestamp regression")
	// ErrUnknownKind is returned for a sample with an invalid Kind.
	ErrUnknownKind = errors.New("unknown sample kind")
	// ErrNonFinite is returned for a sample carrying NaN or Inf.
	ErrNonFinite = errors.New("non-finite sample")
)

// Params selects the filter and tunes the core.
type Params struct {
	Algorithm   orientation.Algorithm
	Orientation orientation.Params
	Step        step.Params
}

// DefaultParams returns acc_gyro with the default tuning.
func DefaultParams() Params {
	return Params{
		Algorithm:   orientation.AccGyroAlgorithm,
		Orientation: orientation.DefaultParams(),
		Step:        step.DefaultParams(),
	}
}

// Output is a snapshot of the engine after a frame.
type Output struct {
	Timestamp    float64               `json:"timestamp"`
	Orientation  algebra.Quaternion    `json:"orientation"`
	GyroOnly     algebra.Quaternion    `json:"gyro_only"`
	Pose         orientation.Pose      `json:"pose"`
	StepDetected bool                  `json:"step_detected"`
	StepCount    int                   `json:"step_count"`
	Frames       int                   `json:"frames"`
	Algorithm    orientation.Algorithm `json:"algorithm"`
}

// Engine owns one filter and one step detector. It is not safe for
// concurrent use; Run serializes samples from a single source.
type Engine struct {
	params   Params
	filter   orientation.Filter
	steps    *step.Detector
	required [numKinds]bool

	latest   [numKinds]imu.Sample
	accepted [numKinds]bool // ever seen
	pending  [numKinds]bool // seen since the last frame

	gyroOnly   algebra.Quaternion
	lastGyroTs float64

	frames       int
	timestamp    float64
	stepDetected bool
}

// New builds an engine for p.Algorithm.
func New(p Params) (*Engine, error) {
	filter, err := orientation.NewFilter(p.Algorithm, p.Orientation)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		params:   p,
		filter:   filter,
		steps:    step.NewDetector(p.Step),
		gyroOnly: algebra.Identity,
	}
	for _, k := range RequiredKinds(p.Algorithm) {
		e.required[k] = true
	}
	return e, nil
}

// RequiredKinds lists the sample kinds a frame of alg needs.
func RequiredKinds(alg orientation.Algorithm) []imu.Kind {
	switch alg {
	case orientation.GravAccGyroAlgorithm:
		return []imu.Kind{imu.Gravity, imu.Accelerometer, imu.Gyroscope}
	case orientation.AbsGyroAlgorithm:
		return []imu.Kind{imu.AbsoluteReference, imu.Gyroscope}
	default:
		return []imu.Kind{imu.Accelerometer, imu.Gyroscope}
	}
}

// Filter exposes the running filter for diagnostics.
func (e *Engine) Filter() orientation.Filter { return e.filter }

// Push feeds one sample. ok reports whether a frame completed and out
// holds a fresh snapshot.
func (e *Engine) Push(s imu.Sample) (out Output, ok bool, err error) {
	k := int(s.Kind)
	if k < 0 || k >= numKinds {
		return Output{}, false, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
	if math.IsNaN(s.Timestamp) || math.IsInf(s.Timestamp, 0) || !s.Vector.IsFinite() {
		return Output{}, false, fmt.Errorf("%w: %s sample at %v %v", ErrNonFinite, s.Kind, s.Timestamp, s.Vector)
	}
	if e.accepted[k] && s.Timestamp < e.latest[k].Timestamp {
		return Output{}, false, fmt.Errorf("%w: %s sample at %.6f after %.6f",
			ErrTimestampRegression, s.Kind, s.Timestamp, e.latest[k].Timestamp)
	}

	e.latest[k] = s
	e.accepted[k] = true
	e.pending[k] = true

	if s.Kind == imu.Gyroscope {
		e.gyroOnly = orientation.Integrate(e.gyroOnly, s.Vector, s.Timestamp, e.lastGyroTs, gyroOnlyEpsilon)
		e.lastGyroTs = s.Timestamp
	}

	for i := range e.required {
		if e.required[i] && !e.pending[i] {
			return Output{}, false, nil
		}
	}

	e.frame()
	return e.Snapshot(), true, nil
}

func (e *Engine) frame() {
	fr := orientation.Frame{
		Timestamp: e.latest[imu.Gyroscope].Timestamp,
		Accel:     e.latest[imu.Accelerometer].Vector,
		Gyro:      e.latest[imu.Gyroscope].Vector,
		Gravity:   e.latest[imu.Gravity].Vector,
		Absolute:  e.latest[imu.AbsoluteReference].Quaternion(),
	}
	q := e.filter.Update(fr)

	e.stepDetected = false
	if e.accepted[imu.Accelerometer] {
		e.stepDetected = e.steps.Update(fr.Timestamp, q.UpVector(), fr.Accel)
	}

	e.timestamp = fr.Timestamp
	e.frames++
	e.pending = [numKinds]bool{}
}

// Snapshot returns the state after the last frame.
func (e *Engine) Snapshot() Output {
	q := e.filter.Orientation()
	return Output{
		Timestamp:    e.timestamp,
		Orientation:  q,
		GyroOnly:     e.gyroOnly,
		Pose:         orientation.PoseFromQuaternion(q),
		StepDetected: e.stepDetected,
		StepCount:    e.steps.Count(),
		Frames:       e.frames,
		Algorithm:    e.params.Algorithm,
	}
}

// Run drains src into the engine until io.EOF or ctx is cancelled, handing
// every completed frame to sink. Out-of-order and non-finite samples are
// logged and dropped.
func (e *Engine) Run(ctx context.Context, src imu.Source, sink func(Output) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read sample: %w", err)
		}

		out, ok, err := e.Push(s)
		if errors.Is(err, ErrTimestampRegression) || errors.Is(err, ErrNonFinite) {
			log.Printf("fusion: dropping sample: %v", err)
			continue
		}
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := sink(out); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
}
