// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/report"
	"github.com/relabs-tech/inertial_fusion/internal/source"
	"github.com/relabs-tech/inertial_fusion/internal/store"
)

// collector keeps every record in memory.
type collector struct {
	records []export.Record
}

func (c *collector) Export(r export.Record) error {
	c.records = append(c.records, r)
	return nil
}

// RunReport plots the session recorded in RECORD_DB for deviceID, or the
// configured device when deviceID is empty.
func RunReport(cfg *config.Config, deviceID, out string) error {
	if cfg.RecordDB == "" {
		return fmt.Errorf("RECORD_DB is required for reports")
	}
	if deviceID == "" {
		deviceID = cfg.DeviceID
	}

	db, err := store.Open(cfg.RecordDB)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Session(deviceID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		devices, _ := db.Devices()
		return fmt.Errorf("no records for device %q (recorded devices: %v)", deviceID, devices)
	}

	if err := report.SavePose(records, out); err != nil {
		return err
	}
	log.Printf("report: %d records, %d steps -> %s", len(records), records[len(records)-1].StepCount, out)
	return nil
}

// plotReplay fuses a replay file with the configured algorithm and saves
// the pose chart.
func plotReplay(cfg *config.Config, replayPath, out string) error {
	engine, err := fusion.New(cfg.FusionParams())
	if err != nil {
		return err
	}
	src, err := source.OpenReplay(replayPath)
	if err != nil {
		return err
	}
	defer src.Close()

	c := &collector{}
	p := &Pipeline{Engine: engine, Exporters: []export.Exporter{c}, DeviceID: cfg.DeviceID}
	if err := p.Run(context.Background(), src); err != nil {
		return err
	}
	return report.SavePose(c.records, out)
}
