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
	out := flag.String("out", "session.nmea", "output file")
	seconds := flag.Float64("seconds", 60, "session length in seconds")
	seed := flag.Int64("seed", 1, "noise seed")
	plotPath := flag.String("plot", "", "also fuse the session and save a pose chart (.png, .svg, .pdf)")
	flag.Parse()

	log.Println("starting inertial-fusion simulator")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunSimulate(cfg, *out, *seconds, *seed, *plotPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
