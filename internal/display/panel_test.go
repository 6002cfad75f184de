package display

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_fusion/internal/export"
	"github.com/relabs-tech/inertial_fusion/internal/orientation"
)

func TestRenderPanel(t *testing.T) {
	waiting := RenderPanel(export.Record{}, false)
	assert.Equal(t, Width, waiting.Bounds().Dx())
	assert.Equal(t, Height, waiting.Bounds().Dy())
	assert.Positive(t, Lit(waiting))

	r := export.Record{
		Algorithm: "acc_gyro",
		Pose:      orientation.Pose{Roll: 12.5, Pitch: -3, Yaw: 170},
		StepCount: 42,
	}
	data := RenderPanel(r, true)
	assert.Positive(t, Lit(data))
	assert.NotEqual(t, waiting.Pix, data.Pix)

	// the step marker adds pixels
	r.Step = 1
	marked := RenderPanel(r, true)
	assert.Greater(t, Lit(marked), Lit(data))
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, RenderSplash()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Width, img.Bounds().Dx())
}
