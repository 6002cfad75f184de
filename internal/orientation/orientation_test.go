package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/inertial_fusion/internal/algebra"
)

const tol = 1e-6

var approx = cmpopts.EquateApprox(0, 1e-6)

func TestParseAlgorithm(t *testing.T) {
	for _, name := range []string{"acc_gyro", "grav_acc_gyro", "abs_gyro"} {
		alg, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.Equal(t, Algorithm(name), alg)

		f, err := NewFilter(alg, DefaultParams())
		require.NoError(t, err)
		assert.Equal(t, alg, f.Algorithm())
	}

	_, err := ParseAlgorithm("madgwick")
	assert.Error(t, err)
	_, err = NewFilter("madgwick", DefaultParams())
	assert.Error(t, err)
}

func TestIntegrateFirstSampleReturnsNormalizedStart(t *testing.T) {
	q0 := algebra.Quat(0, 0, 2, 0)
	got := Integrate(q0, algebra.Vec(1, 2, 3), 5, 0, 0.05)
	assert.True(t, cmp.Equal(algebra.Quat(0, 0, 1, 0), got, approx), "got %v", got)
}

func TestIntegrateZeroRateKeepsOrientation(t *testing.T) {
	q0 := algebra.FromAxisAngle(0.7, algebra.Vec(1, 1, 0))
	got := Integrate(q0, algebra.Vector3{}, 2.0, 1.0, 0.05)
	assert.True(t, cmp.Equal(q0, got, approx), "got %v", got)
}

func TestIntegrateConstantRate(t *testing.T) {
	q := algebra.Identity
	omega := algebra.Vec(0, 0, math.Pi/2)
	ts := 1.0
	for i := 0; i < 100; i++ {
		q = Integrate(q, omega, ts+0.01, ts, 0.05)
		ts += 0.01
	}
	// one second at π/2 rad/s
	want := algebra.FromAxisAngle(math.Pi/2, algebra.UnitZ)
	assert.InDelta(t, 0, q.AngleTo(want), 1e-9)
}

func TestIntegrateBelowEpsilonStaysUnit(t *testing.T) {
	q := Integrate(algebra.Identity, algebra.Vec(0.01, 0, 0), 1.02, 1.0, 0.05)
	assert.InDelta(t, 1, q.Norm(), tol)
	assert.True(t, q.IsFinite())
}

func TestPoseFromQuaternion(t *testing.T) {
	tests := []struct {
		name string
		q    algebra.Quaternion
		want Pose
	}{
		{"identity", algebra.Identity, Pose{}},
		{"yaw 90", algebra.FromAxisAngle(math.Pi/2, algebra.UnitZ), Pose{Yaw: 90}},
		{"roll 30", algebra.FromAxisAngle(math.Pi/6, algebra.Vec(1, 0, 0)), Pose{Roll: 30}},
		{"pitch -45", algebra.FromAxisAngle(-math.Pi/4, algebra.Vec(0, 1, 0)), Pose{Pitch: -45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PoseFromQuaternion(tt.q)
			if diff := cmp.Diff(tt.want, got, approx); diff != "" {
				t.Errorf("PoseFromQuaternion() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAlignUpMatchesAccel(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		acc := algebra.Vec(r.NormFloat64(), r.NormFloat64(), r.NormFloat64()).Scale(9.81)
		q := alignUp(acc)
		assert.InDelta(t, 1, q.Norm(), tol)
		assert.True(t, cmp.Equal(acc.Normalized(), q.UpVector(), approx), "acc %v up %v", acc, q.UpVector())

		// tilt from the quaternion matches the accelerometer tilt formulas
		fromQ := PoseFromQuaternion(q)
		fromAcc := PoseFromAccel(acc)
		assert.InDelta(t, fromAcc.Roll, fromQ.Roll, 1e-6)
		assert.InDelta(t, fromAcc.Pitch, fromQ.Pitch, 1e-6)
	}
}

func cmpEps(margin float64) cmp.Option {
	return cmpopts.EquateApprox(0, margin)
}
