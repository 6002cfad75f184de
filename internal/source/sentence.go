// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
	"github.com/relabs-tech/inertial_fusion/internal/imu"
)

const (
	// TalkerID is the talker used for sample sentences.
	TalkerID = "IN"
	// TypeIMS is the sentence type carrying one inertial sample:
	//
	//	$INIMS,<kind>,<timestamp>,<x>,<y>,<z>*HH
	TypeIMS = "IMS"

	prefixIMS = "$" + TalkerID + TypeIMS + ","
)

// ErrNotSample is returned for a line that is not a sample sentence.
var ErrNotSample = errors.New("not a sample sentence")

// IMS is the decoded sample sentence.
type IMS struct {
	nmea.BaseSentence
	Kind      string
	Timestamp float64
	X         float64
	Y         float64
	Z         float64
}

func init() {
	nmea.MustRegisterParser(TypeIMS, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return IMS{
			BaseSentence: s,
			Kind:         p.String(0, "kind"),
			Timestamp:    p.Float64(1, "timestamp"),
			X:            p.Float64(2, "x"),
			Y:            p.Float64(3, "y"),
			Z:            p.Float64(4, "z"),
		}, p.Err()
	})
}

// FormatSentence encodes s as a checksummed sample sentence without line
// terminator.
func FormatSentence(s imu.Sample) string {
	body := strings.Join([]string{
		TalkerID + TypeIMS,
		s.Kind.String(),
		formatFloat(s.Timestamp),
		formatFloat(s.Vector.X),
		formatFloat(s.Vector.Y),
		formatFloat(s.Vector.Z),
	}, ",")
	return "$" + body + "*" + nmea.Checksum(body)
}

// ParseSentence decodes one sample sentence. Lines carrying any other
// sentence return ErrNotSample.
func ParseSentence(line string) (imu.Sample, error) {
	if !strings.HasPrefix(line, prefixIMS) {
		return imu.Sample{}, ErrNotSample
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("decode %q: %w", line, err)
	}
	m, ok := sentence.(IMS)
	if !ok {
		return imu.Sample{}, ErrNotSample
	}

	kind, err := imu.ParseKind(m.Kind)
	if err != nil {
		return imu.Sample{}, fmt.Errorf("decode %q: %w", line, err)
	}
	return imu.Sample{
		Kind:      kind,
		Timestamp: m.Timestamp,
		Vector:    algebra.Vec(m.X, m.Y, m.Z),
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
