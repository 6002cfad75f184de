// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"encoding/json"
	"fmt"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

// Kind identifies the logical sensor a sample came from.
type Kind int

const (
	Accelerometer     Kind = iota // m/s², sensor frame
	Gyroscope                     // rad/s, sensor frame
	Gravity                       // m/s², platform gravity estimate
	AbsoluteReference             // rotation vector, sin(θ/2)·axis
)

var kindTokens = [...]string{
	Accelerometer:     "acc",
	Gyroscope:         "gyr",
	Gravity:           "grv",
	AbsoluteReference: "rot",
}

// String returns the short wire token ("acc", "gyr", "grv", "rot").
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindTokens) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindTokens[k]
}

// ParseKind maps a wire token back to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, tok := range kindTokens {
		if tok == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown sample kind %q", s)
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Sample is one timestamped reading of one sensor.
type Sample struct {
	Kind      Kind            `json:"kind"`
	Timestamp float64         `json:"t"` // seconds
	Vector    algebra.Vector3 `json:"v"`
}

// Quaternion interprets an AbsoluteReference sample as an orientation.
func (s Sample) Quaternion() algebra.Quaternion {
	return algebra.FromRotationVector(s.Vector)
}

// Source is anything that can provide samples over time. io.EOF ends a
// finite stream.
type Source interface {
	Next() (Sample, error)
}
