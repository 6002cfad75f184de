// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package report renders recorded sessions as charts.
package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/relabs-tech/inertial_fusion/internal/export"
)

// ErrNoRecords is returned when there is nothing to plot.
var ErrNoRecords = errors.New("report: no records")

var (
	rollColor  = color.RGBA{R: 200, A: 255}
	pitchColor = color.RGBA{G: 150, A: 255}
	yawColor   = color.RGBA{B: 200, A: 255}
	stepColor  = color.Black
)

// PosePlot builds a roll/pitch/yaw chart over sensor time with a marker
// on every detected step.
func PosePlot(records []export.Record) (*plot.Plot, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s", records[0].DeviceID, records[0].Algorithm)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Angle (deg)"

	t0 := records[0].Timestamp
	roll := make(plotter.XYs, 0, len(records))
	pitch := make(plotter.XYs, 0, len(records))
	yaw := make(plotter.XYs, 0, len(records))
	var steps plotter.XYs
	for _, r := range records {
		x := r.Timestamp - t0
		roll = append(roll, plotter.XY{X: x, Y: r.Pose.Roll})
		pitch = append(pitch, plotter.XY{X: x, Y: r.Pose.Pitch})
		yaw = append(yaw, plotter.XY{X: x, Y: r.Pose.Yaw})
		if r.Step == 1 {
			steps = append(steps, plotter.XY{X: x, Y: 0})
		}
	}

	for _, s := range []struct {
		name string
		pts  plotter.XYs
		c    color.Color
	}{
		{"roll", roll, rollColor},
		{"pitch", pitch, pitchColor},
		{"yaw", yaw, yawColor},
	} {
		line, err := plotter.NewLine(s.pts)
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", s.name, err)
		}
		line.Color = s.c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	if len(steps) > 0 {
		sc, err := plotter.NewScatter(steps)
		if err != nil {
			return nil, fmt.Errorf("step markers: %w", err)
		}
		sc.GlyphStyle.Color = stepColor
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("steps (%d)", len(steps)), sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SavePose writes the pose chart to path. The format follows the file
// extension (.png, .svg, .pdf).
func SavePose(records []export.Record, path string) error {
	p, err := PosePlot(records)
	if err != nil {
		return err
	}
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
