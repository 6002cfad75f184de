// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/source"
)

// RunSimulate writes a mock walking session of the given length as sample
// sentences to path, ready for INPUT_SOURCE=replay. A non-empty plotPath
// also fuses the session and charts the resulting pose.
func RunSimulate(cfg *config.Config, path string, seconds float64, seed int64, plotPath string) error {
	if seconds <= 0 {
		return fmt.Errorf("duration must be positive, got %g", seconds)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	opts := mockOptions(cfg, seconds)
	opts.Interval = 0
	opts.Seed = seed

	n, err := writeSession(f, source.NewMockSource(opts))
	if err != nil {
		return err
	}
	log.Printf("simulate: wrote %d samples (%.1f s) to %s", n, seconds, path)
	if err := f.Close(); err != nil {
		return err
	}

	if plotPath == "" {
		return nil
	}
	if err := plotReplay(cfg, path, plotPath); err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	log.Printf("simulate: pose chart written to %s", plotPath)
	return nil
}

func writeSession(w io.Writer, src *source.MockSource) (int, error) {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# inertial fusion mock session\n")

	n := 0
	for {
		s, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if _, err := fmt.Fprintf(bw, "%s\r\n", source.FormatSentence(s)); err != nil {
			return n, fmt.Errorf("write sample: %w", err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("write sample: %w", err)
	}
	return n, nil
}
