// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/source"
)

func formatRecord(r export.Record) string {
	o := r.Orientation
	return fmt.Sprintf(
		"ROLL=%6.2f  PITCH=%6.2f  YAW=%7.2f  Q=[%6.3f %6.3f %6.3f %6.3f]  STEPS=%d",
		r.Pose.Roll, r.Pose.Pitch, r.Pose.Yaw,
		o[0], o[1], o[2], o[3],
		r.StepCount,
	)
}

// writerExporter prints records to w, at most one per interval plus every
// step.
type writerExporter struct {
	w        io.Writer
	interval time.Duration
	last     float64
	started  bool
}

func (e *writerExporter) Export(r export.Record) error {
	due := !e.started || r.Timestamp-e.last >= e.interval.Seconds()
	if !due && r.Step == 0 {
		return nil
	}
	if due {
		e.last = r.Timestamp
		e.started = true
	}
	prefix := "[POSE]"
	if r.Step == 1 {
		prefix = "[STEP]"
	}
	_, err := fmt.Fprintf(e.w, "%s %s\n", prefix, formatRecord(r))
	return err
}

// RunMockConsole fuses a mock walking session and prints it, no broker
// needed.
func RunMockConsole(cfg *config.Config) error {
	engine, err := fusion.New(cfg.FusionParams())
	if err != nil {
		return err
	}

	p := &Pipeline{
		Engine: engine,
		Exporters: []export.Exporter{&writerExporter{
			w:        os.Stdout,
			interval: time.Duration(cfg.ConsoleLogInterval) * time.Millisecond,
		}},
		DeviceID: cfg.DeviceID,
	}
	closeSinks, err := attachSinks(cfg, p)
	defer closeSinks()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = p.Run(ctx, source.NewMockSource(mockOptions(cfg, 0)))
	if errors.Is(err, context.Canceled) {
		log.Println("console: shutting down")
		return nil
	}
	return err
}
