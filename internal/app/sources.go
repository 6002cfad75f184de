// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/imu"
	"github.com/relabs-tech/inertial_fusion/internal/source"
)

// openSource builds the sample source selected by INPUT_SOURCE. The
// returned close function is never nil.
func openSource(cfg *config.Config) (imu.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.InputSource {
	case config.InputReplay:
		src, err := source.OpenReplay(cfg.ReplayFile)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil

	case config.InputSerial:
		src, err := source.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return nil, noop, err
		}
		return src, src.Close, nil

	case config.InputMock:
		log.Println("using mock sample source")
		return source.NewMockSource(mockOptions(cfg, 0)), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown input source %q", cfg.InputSource)
}

// mockOptions paces the mock source at MOCK_SAMPLE_INTERVAL; duration 0
// runs until cancelled.
func mockOptions(cfg *config.Config, duration float64) source.MockOptions {
	opts := source.DefaultMockOptions()
	opts.SamplePeriod = cfg.SamplePeriod
	opts.Duration = duration
	opts.Interval = time.Duration(cfg.MockSampleInterval) * time.Millisecond
	return opts
}
