package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

func TestWindowMeanMatchesLastN(t *testing.T) {
	const n = 64
	w := NewWindow(n)
	r := rand.New(rand.NewSource(1))

	var pushed []algebra.Vector3
	for i := 0; i < n+5; i++ {
		v := algebra.Vec(r.Float64()*20-10, r.Float64()*20-10, r.Float64()*20-10)
		w.Push(v)
		pushed = append(pushed, v)
	}

	var sum algebra.Vector3
	for _, v := range pushed[len(pushed)-n:] {
		sum = sum.Add(v)
	}
	want := sum.Scale(1.0 / n)
	assert.True(t, cmp.Equal(want, w.Mean(), approx), "want %v got %v", want, w.Mean())

	samples := w.Samples()
	require.Len(t, samples, n)
	assert.Equal(t, pushed[5], samples[0])
	assert.Equal(t, pushed[len(pushed)-1], samples[n-1])
}

func TestWindowFill(t *testing.T) {
	w := NewWindow(8)
	g := algebra.Vec(0, 0, 9.81)
	w.Fill(g)

	assert.Equal(t, g, w.Mean())
	assert.InDelta(t, 0, w.MaxDeviation(), 1e-9)
	for _, s := range w.Samples() {
		assert.Equal(t, g, s)
	}

	// one push of the same value leaves the mean unchanged
	w.Push(g)
	assert.True(t, cmp.Equal(g, w.Mean(), approx))
}

func TestWindowMaxDeviation(t *testing.T) {
	w := NewWindow(4)
	w.Fill(algebra.Vec(0, 0, 1))
	w.Push(algebra.Vec(1, 0, 0))

	// mean is (0.25, 0, 0.75); the worst sample is the x axis
	mean := algebra.Vec(0.25, 0, 0.75).Normalized()
	want := math.Acos(mean.X)
	assert.InDelta(t, want, w.MaxDeviation(), 1e-9)
	assert.Equal(t, 4, w.Len())
}

func TestFilterWindowSizeDefaults(t *testing.T) {
	for _, n := range []int{0, -5} {
		p := DefaultParams()
		p.WindowSize = n
		assert.Equal(t, 64, NewAccGyro(p).window.Len(), "WindowSize=%d", n)
		assert.Equal(t, 64, NewGravAccGyro(p).window.Len(), "WindowSize=%d", n)
	}

	p := DefaultParams()
	p.WindowSize = 8
	assert.Equal(t, 8, NewAccGyro(p).window.Len())
}
