// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/export"
)

// RunConsoleMQTT prints records and step events published by a producer.
func RunConsoleMQTT(cfg *config.Config) error {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to orientation
	orientationToken := client.Subscribe(cfg.TopicOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r export.Record
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: orientation unmarshal error: %v", err)
			return
		}
		fmt.Printf("[%s] %s\n", r.DeviceID, formatRecord(r))
	})
	orientationToken.Wait()
	if orientationToken.Error() != nil {
		return orientationToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicOrientation)

	// Subscribe to steps
	stepToken := client.Subscribe(cfg.TopicStep, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var ev export.StepEvent
		if err := json.Unmarshal(msg.Payload(), &ev); err != nil {
			log.Printf("console: step unmarshal error: %v", err)
			return
		}
		fmt.Printf("[%s] STEP #%d at t=%.2f\n", ev.DeviceID, ev.StepCount, ev.Timestamp)
	})
	stepToken.Wait()
	if stepToken.Error() != nil {
		return stepToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicStep)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
