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
	flag.Parse()

	log.Println("starting inertial-fusion (mock console)")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMockConsole(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
