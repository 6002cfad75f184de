// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package export

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher is the subset of mqtt.Client used for exporting.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTExporter publishes every record, retained, on the orientation topic
// and a StepEvent on the step topic when a step completed.
type MQTTExporter struct {
	pub              Publisher
	orientationTopic string
	stepTopic        string
}

// NewMQTTExporter returns an exporter publishing through pub.
func NewMQTTExporter(pub Publisher, orientationTopic, stepTopic string) *MQTTExporter {
	return &MQTTExporter{
		pub:              pub,
		orientationTopic: orientationTopic,
		stepTopic:        stepTopic,
	}
}

func (e *MQTTExporter) Export(r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := e.publish(e.orientationTopic, true, payload); err != nil {
		return err
	}

	if r.Step == 0 || e.stepTopic == "" {
		return nil
	}
	event, err := json.Marshal(StepEvent{
		Timestamp: r.Timestamp,
		DeviceID:  r.DeviceID,
		StepCount: r.StepCount,
	})
	if err != nil {
		return fmt.Errorf("marshal step event: %w", err)
	}
	return e.publish(e.stepTopic, false, event)
}

func (e *MQTTExporter) publish(topic string, retained bool, payload []byte) error {
	token := e.pub.Publish(topic, 0, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}
