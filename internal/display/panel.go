// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display renders the status panel: a 128x64 monochrome image
// sized for small OLED modules, also served as PNG by the web server.
package display

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/relabs-tech/inertial_fusion/internal/export"
)

const (
	Width  = 128
	Height = 64
)

var (
	off = color.Gray{Y: 0}
	on  = color.Gray{Y: 255}
)

func newCanvas() (*image.Gray, *font.Drawer) {
	img := image.NewGray(image.Rect(0, 0, Width, Height))

	// Blank image
	for i := range img.Pix {
		img.Pix[i] = off.Y
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{on},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

// RenderPanel draws roll/pitch/yaw, the step count and the algorithm of
// r. Without data it shows a waiting screen.
func RenderPanel(r export.Record, haveData bool) *image.Gray {
	img, drawer := newCanvas()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Orientation"))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	// Roll
	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(fmt.Sprintf("R: %6.1f", r.Pose.Roll)))

	// Pitch
	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("P: %6.1f", r.Pose.Pitch)))

	// Yaw
	drawer.Dot = fixed.P(0, 39)
	drawer.DrawBytes([]byte(fmt.Sprintf("Y: %6.1f", r.Pose.Yaw)))

	// Steps, with a marker on the frame a step completed
	marker := ""
	if r.Step == 1 {
		marker = " *"
	}
	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fmt.Sprintf("S: %d%s", r.StepCount, marker)))

	drawer.Dot = fixed.P(0, 64)
	drawer.DrawBytes([]byte(r.Algorithm))

	return img
}

// RenderSplash draws the start-up screen.
func RenderSplash() *image.Gray {
	img, drawer := newCanvas()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Inertial"))

	drawer.Dot = fixed.P(10, 43)
	drawer.DrawBytes([]byte("Fusion"))

	return img
}

// WritePNG encodes a panel image.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode panel: %w", err)
	}
	return nil
}

// Lit counts the pixels that are switched on.
func Lit(img *image.Gray) int {
	n := 0
	for _, p := range img.Pix {
		if p != off.Y {
			n++
		}
	}
	return n
}
