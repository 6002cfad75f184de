// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/display"
	"github.com/relabs-tech/inertial_fusion/internal/export"
)

// webState keeps the latest record seen on the orientation topic.
type webState struct {
	mu   sync.RWMutex
	last export.Record
	have bool
}

func (s *webState) Export(r export.Record) error {
	s.mu.Lock()
	s.last = r
	s.have = true
	s.mu.Unlock()
	return nil
}

func (s *webState) snapshot() (export.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.have
}

// newWebMux wires the HTTP API, the websocket feed and the static files
// from staticDir.
func newWebMux(state *webState, hub *export.Hub, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// JSON API endpoint: latest record
	mux.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		rec, ok := state.snapshot()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rec); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// Status panel as PNG
	mux.HandleFunc("/api/panel.png", func(w http.ResponseWriter, r *http.Request) {
		rec, ok := state.snapshot()
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		if err := display.WritePNG(w, display.RenderPanel(rec, ok)); err != nil {
			log.Printf("web: %v", err)
		}
	})

	// Live feed
	mux.Handle("/ws", hub)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

// RunWeb subscribes to the orientation topic and serves the latest
// record over HTTP and websocket.
func RunWeb(cfg *config.Config) error {
	state := &webState{}
	hub := export.NewHub()
	defer hub.Close()
	fanout := []export.Exporter{state, hub}

	// 1) Connect to MQTT broker
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	// 2) Subscribe to the orientation topic and fan records out
	token := client.Subscribe(cfg.TopicOrientation, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r export.Record
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("web: MQTT payload unmarshal error: %v", err)
			return
		}
		for _, e := range fanout {
			if err := e.Export(r); err != nil {
				log.Printf("web: export error: %v", err)
			}
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to MQTT topic %s", cfg.TopicOrientation)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(state, hub, "web"))
}
