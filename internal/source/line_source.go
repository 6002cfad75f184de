// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_fusion/internal/imu"
)

// LineSource reads sample sentences from a line-oriented stream. Blank
// lines, non-sentence lines and other NMEA sentences are skipped.
type LineSource struct {
	r      *bufio.Reader
	closer io.Closer
	line   int
	err    error // deferred read error
}

// NewLineSource wraps r. If r is an io.Closer, Close closes it.
func NewLineSource(r io.Reader) *LineSource {
	s := &LineSource{r: bufio.NewReader(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// OpenReplay opens a file of recorded sample sentences.
func OpenReplay(path string) (*LineSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	log.Printf("source: replaying %s", path)
	return NewLineSource(f), nil
}

// OpenSerial opens a serial port streaming sample sentences.
func OpenSerial(portName string, baudRate int) (*LineSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	log.Printf("source: serial port opened on %s at %d baud", portName, baudRate)
	return NewLineSource(port), nil
}

// Next returns the next sample. The underlying read error, io.EOF
// included, is returned once the stream is exhausted.
func (s *LineSource) Next() (imu.Sample, error) {
	for {
		if s.err != nil {
			return imu.Sample{}, s.err
		}

		raw, err := s.r.ReadString('\n')
		if err != nil {
			s.err = err
		}
		s.line++

		line := strings.TrimSpace(raw)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sample, err := ParseSentence(line)
		if errors.Is(err, ErrNotSample) {
			continue
		}
		if err != nil {
			return imu.Sample{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		return sample, nil
	}
}

// Close releases the underlying stream.
func (s *LineSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
