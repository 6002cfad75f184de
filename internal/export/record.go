// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package export ships fusion results to the outside world: MQTT topics
// for other processes and a websocket feed for browsers.
package export

import (
	"github.com/relabs-tech/inertial_fusion/internal/algebra"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
)

// Record is the wire form of one fusion output. Quaternions are
// [x, y, z, w] arrays.
type Record struct {
	Timestamp       float64          `json:"timestamp"`
	DeviceID        string           `json:"device_id"`
	Algorithm       string           `json:"algorithm"`
	Orientation     [4]float64       `json:"orientation"`
	GyroOrientation [4]float64       `json:"gyro_orientation"`
	Pose            orientation.Pose `json:"pose"`
	Step            int              `json:"step"` // 1 on the frame a step completed
	StepCount       int              `json:"step_count"`
	Frames          int              `json:"frames"`
}

// StepEvent is published once per detected step.
type StepEvent struct {
	Timestamp float64 `json:"timestamp"`
	DeviceID  string  `json:"device_id"`
	StepCount int     `json:"step_count"`
}

// NewRecord converts an engine output.
func NewRecord(deviceID string, out fusion.Output) Record {
	r := Record{
		Timestamp:       out.Timestamp,
		DeviceID:        deviceID,
		Algorithm:       string(out.Algorithm),
		Orientation:     out.Orientation.ArrayXYZW(),
		GyroOrientation: out.GyroOnly.ArrayXYZW(),
		Pose:            out.Pose,
		StepCount:       out.StepCount,
		Frames:          out.Frames,
	}
	if out.StepDetected {
		r.Step = 1
	}
	return r
}

// Quaternion returns the fused orientation.
func (r Record) Quaternion() algebra.Quaternion {
	o := r.Orientation
	return algebra.Quat(o[0], o[1], o[2], o[3])
}

// Exporter consumes records.
type Exporter interface {
	Export(r Record) error
}
