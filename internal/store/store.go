// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package store records fusion sessions in a SQLite database so they can
// be inspected or plotted after the fact.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
)

// Store is a SQLite-backed record log. It implements export.Exporter.
type Store struct {
	*sql.DB
	insert *sql.Stmt
}

// Open opens (creating if needed) the database at path. Use ":memory:"
// for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			device_id         TEXT NOT NULL,
			t                 DOUBLE NOT NULL,
			algorithm         TEXT,
			qx                DOUBLE,
			qy                DOUBLE,
			qz                DOUBLE,
			qw                DOUBLE,
			gx                DOUBLE,
			gy                DOUBLE,
			gz                DOUBLE,
			gw                DOUBLE,
			roll              DOUBLE,
			pitch             DOUBLE,
			yaw               DOUBLE,
			step              INTEGER,
			step_count        BIGINT,
			frames            BIGINT,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_records_device_t ON records (device_id, t);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO records (
			device_id, t, algorithm,
			qx, qy, qz, qw,
			gx, gy, gz, gw,
			roll, pitch, yaw,
			step, step_count, frames
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &Store{DB: db, insert: insert}, nil
}

// Export appends r.
func (s *Store) Export(r export.Record) error {
	o, g := r.Orientation, r.GyroOrientation
	_, err := s.insert.Exec(
		r.DeviceID, r.Timestamp, r.Algorithm,
		o[0], o[1], o[2], o[3],
		g[0], g[1], g[2], g[3],
		r.Pose.Roll, r.Pose.Pitch, r.Pose.Yaw,
		r.Step, r.StepCount, r.Frames,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Session returns the records of deviceID in timestamp order.
func (s *Store) Session(deviceID string) ([]export.Record, error) {
	rows, err := s.Query(`
		SELECT t, algorithm,
			qx, qy, qz, qw,
			gx, gy, gz, gw,
			roll, pitch, yaw,
			step, step_count, frames
		FROM records
		WHERE device_id = ?
		ORDER BY t, rowid`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	var out []export.Record
	for rows.Next() {
		r := export.Record{DeviceID: deviceID}
		var p orientation.Pose
		if err := rows.Scan(
			&r.Timestamp, &r.Algorithm,
			&r.Orientation[0], &r.Orientation[1], &r.Orientation[2], &r.Orientation[3],
			&r.GyroOrientation[0], &r.GyroOrientation[1], &r.GyroOrientation[2], &r.GyroOrientation[3],
			&p.Roll, &p.Pitch, &p.Yaw,
			&r.Step, &r.StepCount, &r.Frames,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Pose = p
		out = append(out, r)
	}
	return out, rows.Err()
}

// StepTimes returns the timestamps at which deviceID completed a step.
func (s *Store) StepTimes(deviceID string) ([]float64, error) {
	rows, err := s.Query(`SELECT t FROM records WHERE device_id = ? AND step = 1 ORDER BY t`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Devices lists the device ids with recorded data.
func (s *Store) Devices() ([]string, error) {
	rows, err := s.Query(`SELECT DISTINCT device_id FROM records ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Close releases the statement and the database.
func (s *Store) Close() error {
	s.insert.Close()
	return s.DB.Close()
}
