package orientation

import (
	"log"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

const dt = 0.02

func tilted(deg float64) algebra.Vector3 {
	rad := deg * math.Pi / 180
	return algebra.Vec(0, 9.81*math.Sin(rad), 9.81*math.Cos(rad))
}

func TestAccGyroFirstSampleAlignsUp(t *testing.T) {
	f := NewAccGyro(DefaultParams())
	q := f.UpdateSample(algebra.Vec(0, 0, 9.81), algebra.Vector3{}, 1.0)

	assert.True(t, cmp.Equal(algebra.Vec(0, 0, 1), q.UpVector(), approx))
	assert.InDelta(t, 0, q.AngleTo(algebra.Identity), 1e-9)
	assert.Equal(t, q, f.Orientation())
}

func TestAccGyroConvergesToNewTilt(t *testing.T) {
	f := NewAccGyro(DefaultParams())
	ts := 1.0
	f.UpdateSample(algebra.Vec(0, 0, 9.81), algebra.Vector3{}, ts)

	acc := tilted(20)
	var q algebra.Quaternion
	for i := 0; i < 200; i++ {
		ts += dt
		q = f.UpdateSample(acc, algebra.Vector3{}, ts)
		require.True(t, q.IsFinite())
	}

	assert.True(t, cmp.Equal(acc.Normalized(), q.UpVector(), approx), "up %v", q.UpVector())
	assert.InDelta(t, 0, f.Deviation(), 1e-4)
	assert.InDelta(t, 1, f.Weight(), 1e-4)
}

func TestAccGyroNoisyWindowDampsCorrection(t *testing.T) {
	f := NewAccGyro(DefaultParams())
	f.UpdateSample(algebra.Vec(0, 0, 9.81), algebra.Vector3{}, 1.0)
	f.UpdateSample(tilted(30), algebra.Vector3{}, 1.0+dt)

	assert.Greater(t, f.Deviation(), 1.0)
	assert.Less(t, f.Weight(), 0.1)
}

func TestAccGyroFollowsGyroHeading(t *testing.T) {
	f := NewAccGyro(DefaultParams())
	ts := 1.0
	f.UpdateSample(algebra.Vec(0, 0, 9.81), algebra.Vector3{}, ts)

	omega := algebra.Vec(0, 0, math.Pi/2)
	var q algebra.Quaternion
	for i := 0; i < 50; i++ {
		ts += dt
		q = f.UpdateSample(algebra.Vec(0, 0, 9.81), omega, ts)
	}

	pose := PoseFromQuaternion(q)
	assert.InDelta(t, 90, pose.Yaw, 1e-6)
	assert.InDelta(t, 0, pose.Roll, 1e-6)
	assert.InDelta(t, 0, pose.Pitch, 1e-6)
}

func TestGravAccGyroFirstSample(t *testing.T) {
	f := NewGravAccGyro(DefaultParams())
	g := tilted(10)
	q := f.UpdateSample(g, g, algebra.Vector3{}, 1.0)

	assert.True(t, cmp.Equal(g.Normalized(), q.UpVector(), approx))
	assert.Equal(t, q, f.Absolute())
	assert.Equal(t, algebra.Identity, f.Bias())
}

func TestGravAccGyroStillDeviceStaysAligned(t *testing.T) {
	f := NewGravAccGyro(DefaultParams())
	g := tilted(25)
	ts := 1.0
	f.UpdateSample(g, g, algebra.Vector3{}, ts)

	var q algebra.Quaternion
	for i := 0; i < 300; i++ {
		ts += dt
		q = f.UpdateSample(g, g, algebra.Vector3{}, ts)
	}

	assert.True(t, cmp.Equal(g.Normalized(), q.UpVector(), approx), "up %v", q.UpVector())
	assert.InDelta(t, 0, f.Bias().AngleTo(algebra.Identity), 1e-6)
}

func TestGravAccGyroLearnsBias(t *testing.T) {
	f := NewGravAccGyro(DefaultParams())
	g := algebra.Vec(0, 0, 9.81)
	acc := tilted(5)
	ts := 1.0
	f.UpdateSample(g, acc, algebra.Vector3{}, ts)

	var q algebra.Quaternion
	for i := 0; i < 2000; i++ {
		ts += dt
		q = f.UpdateSample(g, acc, algebra.Vector3{}, ts)
	}

	assert.InDelta(t, 1, f.Weight(), 1e-3)
	learned := f.Bias().RotateVector(g.Normalized())
	assert.True(t, cmp.Equal(acc.Normalized(), learned, approx), "bias maps gravity to %v", learned)
	assert.True(t, cmp.Equal(acc.Normalized(), q.UpVector(), cmpEps(1e-4)), "up %v", q.UpVector())
}

func TestAbsGyroFirstSample(t *testing.T) {
	f := NewAbsGyro(DefaultParams())
	abs := algebra.FromAxisAngle(1.2, algebra.Vec(1, 2, 3))
	q := f.UpdateSample(abs, algebra.Vec(1, 0, 0), 1.0)

	assert.InDelta(t, 0, q.AngleTo(abs), 1e-9)
	assert.Equal(t, q, f.PureRelative())
	assert.Equal(t, 0, f.PanicCounter())
}

func TestAbsGyroTracksAgreeingReference(t *testing.T) {
	f := NewAbsGyro(DefaultParams())
	omega := algebra.Vec(0, 0, 1)
	ts := 1.0
	truth := algebra.Identity
	f.UpdateSample(truth, omega, ts)

	for i := 0; i < 100; i++ {
		ts += dt
		truth = truth.Times(algebra.FromAxisAngle(dt, algebra.UnitZ))
		q := f.UpdateSample(truth, omega, ts)
		require.Less(t, q.AngleTo(truth), 1e-6)
	}
	assert.Equal(t, 0, f.PanicCounter())
}

func TestAbsGyroPanicCounterResetsWhenDisagreementEnds(t *testing.T) {
	defer SetLogger(log.Printf)
	SetLogger(nil)

	f := NewAbsGyro(DefaultParams())
	ts := 1.0
	f.UpdateSample(algebra.Identity, algebra.Vector3{}, ts)

	flipped := algebra.Quat(1, 0, 0, 0) // π about x, dot 0 with identity
	for i := 1; i <= 10; i++ {
		ts += dt
		q := f.UpdateSample(flipped, algebra.Vector3{}, ts)
		assert.Equal(t, i, f.PanicCounter())
		// outliers never pull the estimate
		assert.InDelta(t, 0, q.AngleTo(algebra.Identity), 1e-9)
	}

	ts += dt
	f.UpdateSample(algebra.Identity, algebra.Vector3{}, ts)
	assert.Equal(t, 0, f.PanicCounter())
}

func TestAbsGyroOutlierBandResetsCounter(t *testing.T) {
	defer SetLogger(log.Printf)
	SetLogger(nil)

	f := NewAbsGyro(DefaultParams())
	ts := 1.0
	f.UpdateSample(algebra.Identity, algebra.Vector3{}, ts)

	for i := 0; i < 5; i++ {
		ts += dt
		f.UpdateSample(algebra.Quat(1, 0, 0, 0), algebra.Vector3{}, ts)
	}
	require.Equal(t, 5, f.PanicCounter())

	// |dot| = 0.8: an outlier, but not a panic
	ts += dt
	q := f.UpdateSample(algebra.FromAxisAngle(2*math.Acos(0.8), algebra.UnitZ), algebra.Vector3{}, ts)
	assert.Equal(t, 0, f.PanicCounter())
	assert.InDelta(t, 0, q.AngleTo(algebra.Identity), 1e-9)
}

func TestAbsGyroPanicResetWhenStationary(t *testing.T) {
	defer SetLogger(log.Printf)
	var logged int
	SetLogger(func(string, ...interface{}) { logged++ })

	p := DefaultParams()
	f := NewAbsGyro(p)
	ts := 1.0
	f.UpdateSample(algebra.Identity, algebra.Vector3{}, ts)

	flipped := algebra.Quat(1, 0, 0, 0)
	for i := 0; i < p.PanicCount; i++ {
		ts += dt
		f.UpdateSample(flipped, algebra.Vector3{}, ts)
	}
	require.Equal(t, p.PanicCount, f.PanicCounter())
	require.Equal(t, 0, f.Resets())

	ts += dt
	q := f.UpdateSample(flipped, algebra.Vector3{}, ts)
	assert.InDelta(t, 0, q.AngleTo(flipped), 1e-9)
	assert.Equal(t, 0, f.PanicCounter())
	assert.Equal(t, 1, f.Resets())
	assert.Equal(t, 1, logged)
	// the gyro-only track is untouched
	assert.InDelta(t, 0, f.PureRelative().AngleTo(algebra.Identity), 1e-9)
}

func TestAbsGyroPanicResetDeferredWhileMoving(t *testing.T) {
	defer SetLogger(log.Printf)
	SetLogger(nil)

	p := DefaultParams()
	f := NewAbsGyro(p)
	ts := 1.0
	f.UpdateSample(algebra.Identity, algebra.Vector3{}, ts)

	// spinning about z keeps dot with a π-about-x reference at 0
	omega := algebra.Vec(0, 0, 4)
	flipped := algebra.Quat(1, 0, 0, 0)
	for i := 0; i < p.PanicCount+40; i++ {
		ts += dt
		f.UpdateSample(flipped, omega, ts)
	}
	assert.Equal(t, p.PanicCount+40, f.PanicCounter())
	assert.Equal(t, 0, f.Resets())
	assert.Greater(t, f.Orientation().AngleTo(flipped), 1.0)
}
