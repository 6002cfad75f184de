// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/monitoring"
	"github.com/relabs-tech/inertial_fusion/internal/store"
)

// attachSinks adds the optional SQLite recorder and Prometheus endpoint
// to p. The returned close function is never nil.
func attachSinks(cfg *config.Config, p *Pipeline) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RecordDB != "" {
		db, err := store.Open(cfg.RecordDB)
		if err != nil {
			return closeAll, fmt.Errorf("failed to open record db: %w", err)
		}
		closers = append(closers, func() { db.Close() })
		p.Exporters = append(p.Exporters, db)
		log.Printf("recording to %s", cfg.RecordDB)
	}

	if cfg.MetricsPort > 0 {
		m := monitoring.New()
		p.Metrics = m

		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.MetricsPort), Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics: server error: %v", err)
			}
		}()
		closers = append(closers, func() { srv.Close() })
		log.Printf("metrics on http://localhost:%d/metrics", cfg.MetricsPort)
	}

	return closeAll, nil
}
