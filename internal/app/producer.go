// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
)

// RunFusionProducer reads samples from the configured input, fuses them
// and publishes every record to MQTT.
func RunFusionProducer(cfg *config.Config) error {
	log.Printf("producer: device %s, algorithm %s, input %s", cfg.DeviceID, cfg.FusionAlgorithm, cfg.InputSource)

	engine, err := fusion.New(cfg.FusionParams())
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("producer: connected to MQTT broker at %s", cfg.MQTTBroker)

	p := &Pipeline{
		Engine:      engine,
		Exporters:   []export.Exporter{export.NewMQTTExporter(client, cfg.TopicOrientation, cfg.TopicStep)},
		DeviceID:    cfg.DeviceID,
		LogInterval: time.Duration(cfg.ConsoleLogInterval) * time.Millisecond,
	}
	closeSinks, err := attachSinks(cfg, p)
	defer closeSinks()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = p.Run(ctx, src)
	log.Printf("producer: stopped after %d records", p.Records())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
