// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_fusion/internal/app"
	"github.com/relabs-tech/inertial_fusion/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the KEY=VALUE configuration file")
	device := flag.String("device", "", "device id to plot (defaults to DEVICE_ID)")
	out := flag.String("out", "pose.png", "chart file (.png, .svg, .pdf)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunReport(cfg, *device, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
