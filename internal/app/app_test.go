package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_fusion/internal/config"
	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/fusion"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
	"github.com/relabs-tech/inertial_fusion/internal/monitoring"
	"github.com/relabs-tech/inertial_fusion/internal/source"
	"github.com/relabs-tech/inertial_fusion/internal/store"
)

type failingExporter struct{ calls int }

func (f *failingExporter) Export(export.Record) error {
	f.calls++
	return errors.New("broker down")
}

func TestPipelineWalkingSession(t *testing.T) {
	for _, alg := range []orientation.Algorithm{
		orientation.AccGyroAlgorithm,
		orientation.GravAccGyroAlgorithm,
		orientation.AbsGyroAlgorithm,
	} {
		t.Run(string(alg), func(t *testing.T) {
			p := fusion.DefaultParams()
			p.Algorithm = alg
			engine, err := fusion.New(p)
			require.NoError(t, err)

			out := &collector{}
			failing := &failingExporter{}
			pipe := &Pipeline{
				Engine:    engine,
				Exporters: []export.Exporter{failing, out},
				DeviceID:  "test-device",
			}

			src := source.NewMockSource(source.DefaultMockOptions())
			require.NoError(t, pipe.Run(context.Background(), src))

			require.Len(t, out.records, 501)
			assert.Equal(t, 501, pipe.Records())
			assert.Equal(t, 501, failing.calls, "export errors do not stop the pipeline")

			last := out.records[len(out.records)-1]
			assert.Equal(t, "test-device", last.DeviceID)
			assert.Equal(t, string(alg), last.Algorithm)
			assert.InDelta(t, 19, last.StepCount, 2)

			if alg == orientation.AbsGyroAlgorithm {
				assert.Less(t, last.Quaternion().AngleTo(src.Truth()), 0.05)
			}
		})
	}
}

func TestWriterExporter(t *testing.T) {
	var buf bytes.Buffer
	e := &writerExporter{w: &buf, interval: time.Second}

	for i := 0; i < 150; i++ {
		r := export.Record{Timestamp: 1 + float64(i)*0.02}
		if i == 60 {
			r.Step = 1
			r.StepCount = 1
		}
		require.NoError(t, e.Export(r))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// t = 1, 2, the step at 2.2, then 3
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "[POSE]"))
	assert.True(t, strings.HasPrefix(lines[1], "[POSE]"))
	assert.True(t, strings.HasPrefix(lines[2], "[STEP]"))
	assert.Contains(t, lines[2], "STEPS=1")
}

func TestWebMux(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>fusion</h1>"), 0o644))

	state := &webState{}
	hub := export.NewHub()
	defer hub.Close()
	srv := httptest.NewServer(newWebMux(state, hub, static))
	defer srv.Close()

	get := func(path string) (*http.Response, []byte) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, body
	}

	resp, _ := get("/api/orientation")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	want := export.Record{DeviceID: "dev", Algorithm: "acc_gyro", StepCount: 3, Orientation: [4]float64{0, 0, 0, 1}}
	require.NoError(t, state.Export(want))

	resp, body := get("/api/orientation")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var got export.Record
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, want, got)

	resp, body = get("/api/panel.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(body))
	assert.NoError(t, err)

	resp, body = get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fusion")
}

func TestSimulateThenReplay(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "walk.nmea")
	require.NoError(t, RunSimulate(cfg, path, 2, 9, ""))

	cfg.InputSource = config.InputReplay
	cfg.ReplayFile = path
	src, closeSrc, err := openSource(cfg)
	require.NoError(t, err)
	defer closeSrc()

	engine, err := fusion.New(cfg.FusionParams())
	require.NoError(t, err)
	out := &collector{}
	pipe := &Pipeline{Engine: engine, Exporters: []export.Exporter{out}, DeviceID: cfg.DeviceID}
	require.NoError(t, pipe.Run(context.Background(), src))
	assert.Len(t, out.records, 101)

	assert.Error(t, RunSimulate(cfg, path, 0, 1, ""))
}

func TestOpenSource(t *testing.T) {
	cfg := config.Default()
	src, closeSrc, err := openSource(cfg)
	require.NoError(t, err)
	assert.IsType(t, &source.MockSource{}, src)
	assert.NoError(t, closeSrc())

	cfg.InputSource = config.InputReplay
	cfg.ReplayFile = filepath.Join(t.TempDir(), "missing.nmea")
	_, closeSrc, err = openSource(cfg)
	assert.Error(t, err)
	assert.NoError(t, closeSrc())

	cfg.InputSource = "carrier-pigeon"
	_, _, err = openSource(cfg)
	assert.Error(t, err)
}

func TestSimulatePlot(t *testing.T) {
	dir := t.TempDir()
	plotPath := filepath.Join(dir, "pose.png")
	require.NoError(t, RunSimulate(config.Default(), filepath.Join(dir, "walk.nmea"), 3, 2, plotPath))

	f, err := os.Open(plotPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)
}

func TestSinksRecordAndReport(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DeviceID = "left-shoe"
	cfg.RecordDB = filepath.Join(dir, "sessions.db")

	engine, err := fusion.New(cfg.FusionParams())
	require.NoError(t, err)
	failing := &failingExporter{}
	pipe := &Pipeline{Engine: engine, Exporters: []export.Exporter{failing}, DeviceID: cfg.DeviceID, Metrics: monitoring.New()}

	closeSinks, err := attachSinks(cfg, pipe)
	require.NoError(t, err)
	require.Len(t, pipe.Exporters, 2)

	opts := source.DefaultMockOptions()
	opts.Duration = 4
	require.NoError(t, pipe.Run(context.Background(), source.NewMockSource(opts)))
	closeSinks()

	families, err := pipe.Metrics.Registry().Gather()
	require.NoError(t, err)
	counters := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			counters[mf.GetName()] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(pipe.Records()), counters["fusion_records_total"])
	assert.Equal(t, float64(pipe.Records()), counters["fusion_export_errors_total"])

	db, err := store.Open(cfg.RecordDB)
	require.NoError(t, err)
	recorded, err := db.Session("left-shoe")
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.Len(t, recorded, pipe.Records())
	assert.Equal(t, float64(recorded[len(recorded)-1].StepCount), counters["fusion_steps_total"])

	chart := filepath.Join(dir, "report.svg")
	require.NoError(t, RunReport(cfg, "", chart))
	info, err := os.Stat(chart)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.ErrorContains(t, RunReport(cfg, "right-shoe", chart), "no records")
}
