// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package monitoring exposes fusion progress as Prometheus metrics.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/inertial_fusion/internal/export"
)

// Metrics tracks records as they pass through the pipeline. It implements
// export.Exporter so it can sit next to the real exporters.
type Metrics struct {
	registry *prometheus.Registry

	records   *prometheus.CounterVec
	steps     *prometheus.CounterVec
	failures  prometheus.Counter
	pose      *prometheus.GaugeVec
	lastFrame prometheus.Gauge
}

// New registers the fusion metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_records_total",
				Help: "Fused orientation records produced.",
			},
			[]string{"algorithm"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusion_steps_total",
				Help: "Steps detected.",
			},
			[]string{"device"},
		),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fusion_export_errors_total",
			Help: "Records that an exporter failed to deliver.",
		}),
		pose: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fusion_pose_degrees",
				Help: "Latest roll, pitch and yaw.",
			},
			[]string{"axis"},
		),
		lastFrame: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fusion_last_timestamp_seconds",
			Help: "Sensor timestamp of the latest record.",
		}),
	}
	m.registry.MustRegister(m.records, m.steps, m.failures, m.pose, m.lastFrame)
	return m
}

// Export updates the metrics from r.
func (m *Metrics) Export(r export.Record) error {
	m.records.With(prometheus.Labels{"algorithm": r.Algorithm}).Inc()
	if r.Step == 1 {
		m.steps.With(prometheus.Labels{"device": r.DeviceID}).Inc()
	}
	m.pose.With(prometheus.Labels{"axis": "roll"}).Set(r.Pose.Roll)
	m.pose.With(prometheus.Labels{"axis": "pitch"}).Set(r.Pose.Pitch)
	m.pose.With(prometheus.Labels{"axis": "yaw"}).Set(r.Pose.Yaw)
	m.lastFrame.Set(r.Timestamp)
	return nil
}

// ExportFailed counts one failed delivery.
func (m *Metrics) ExportFailed() { m.failures.Inc() }

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
