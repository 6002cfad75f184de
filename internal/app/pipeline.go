// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"time"

	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/imu"
	"github.com/relabs-tech/inertial_fusion/internal/monitoring"
)

// Pipeline drains a source through the engine into exporters.
type Pipeline struct {
	Engine      *fusion.Engine
	Exporters   []export.Exporter
	DeviceID    string
	LogInterval time.Duration // 0 disables the tick log
	Metrics     *monitoring.Metrics

	lastLog time.Time
	records int
}

// Run blocks until the source ends or ctx is cancelled. Export failures
// are logged and do not stop the pipeline.
func (p *Pipeline) Run(ctx context.Context, src imu.Source) error {
	return p.Engine.Run(ctx, src, p.handle)
}

// Records returns the number of records produced.
func (p *Pipeline) Records() int { return p.records }

func (p *Pipeline) handle(out fusion.Output) error {
	rec := export.NewRecord(p.DeviceID, out)
	p.records++

	if p.Metrics != nil {
		p.Metrics.Export(rec)
	}
	for _, e := range p.Exporters {
		if err := e.Export(rec); err != nil {
			log.Printf("pipeline: export error: %v", err)
			if p.Metrics != nil {
				p.Metrics.ExportFailed()
			}
		}
	}

	if rec.Step == 1 {
		log.Printf("pipeline: step %d at t=%.2f", rec.StepCount, rec.Timestamp)
	}

	if p.LogInterval > 0 && time.Since(p.lastLog) >= p.LogInterval {
		p.lastLog = time.Now()
		log.Printf("%s tick: %s", p.lastLog.Format(time.RFC3339), formatRecord(rec))
	}
	return nil
}
