package algebra

import (
	"log"
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMatrixQuaternionRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	for i := 0; i < 500; i++ {
		q := randomQuaternion(rng).Normalized()
		sameRotation(t, q, q.RotationMatrix().Quaternion())
	}
}

func TestMatrixQuaternionBranches(t *testing.T) {
	// each case drives a different Shepperd branch
	cases := map[string]Quaternion{
		"trace":    FromAxisAngle(0.3, Vec(1, 2, 3)),
		"x":        FromAxisAngle(math.Pi, Vec(1, 0, 0)),
		"y":        FromAxisAngle(math.Pi, Vec(0, 1, 0)),
		"z":        FromAxisAngle(math.Pi, Vec(0, 0, 1)),
		"x near":   FromAxisAngle(math.Pi-1e-9, Vec(1, 0.01, 0)),
		"identity": Identity,
	}
	for name, q := range cases {
		t.Run(name, func(t *testing.T) {
			out := q.RotationMatrix().Quaternion()
			assert.True(t, out.IsFinite())
			sameRotation(t, q, out)
		})
	}
}

func TestMatrixMulAndTranspose(t *testing.T) {
	q := FromAxisAngle(1.1, Vec(0.2, -0.4, 1))
	r := q.RotationMatrix()
	if diff := cmp.Diff(IdentityMatrix3, r.Mul(r.Transposed()), approx); diff != "" {
		t.Errorf("R·Rᵀ (-want +got):\n%s", diff)
	}
	// rows of R are the world axes seen from the sensor frame
	assert.True(t, cmp.Equal(q.RotateVector(Vec(1, 0, 0)), r.Transposed().MulVec(Vec(1, 0, 0)), approx))
}

func TestRotationFromUpNorth(t *testing.T) {
	t.Run("level device", func(t *testing.T) {
		m, ok := RotationFromUpNorth(Vec(0, 0, 9.81), Vec(0, 1, 0))
		assert.True(t, ok)
		assert.True(t, cmp.Equal(IdentityMatrix3, m, approx))
	})

	t.Run("up row matches gravity", func(t *testing.T) {
		up := Vec(0.3, -0.2, 0.9)
		m, ok := RotationFromUpNorth(up, Vec(0.1, 1, 0.4))
		assert.True(t, ok)
		assert.True(t, cmp.Equal(up.Normalized(), m.Row(2), approx))
		q := m.Quaternion()
		assert.True(t, cmp.Equal(up.Normalized(), q.UpVector(), approx))
		assert.InDelta(t, 0.0, m.Row(1).Dot(m.Row(2)), tol)
	})

	t.Run("parallel inputs are rejected", func(t *testing.T) {
		m, ok := RotationFromUpNorth(Vec(0, 0, 1), Vec(0, 0, 2))
		assert.False(t, ok)
		assert.Equal(t, IdentityMatrix3, m)
	})

	t.Run("zero inputs are rejected", func(t *testing.T) {
		_, ok := RotationFromUpNorth(Vector3{}, Vec(0, 1, 0))
		assert.False(t, ok)
		_, ok = RotationFromUpNorth(Vec(0, 0, 1), Vector3{})
		assert.False(t, ok)
	})
}

func TestSafeAcos(t *testing.T) {
	var warnings int
	SetLogger(func(string, ...interface{}) { warnings++ })
	defer SetLogger(log.Printf)

	assert.Equal(t, 0.0, SafeAcos(1.0000001))
	assert.Equal(t, math.Pi, SafeAcos(-1.5))
	assert.InDelta(t, math.Pi/2, SafeAcos(0), tol)
	assert.Equal(t, 1, warnings, "only the far out-of-domain argument is reported")
}

func TestVectorOps(t *testing.T) {
	a := Vec(1, 0, 0)
	b := Vec(0, 1, 0)
	assert.Equal(t, Vec(0, 0, 1), a.Cross(b))
	assert.Equal(t, 0.0, a.Dot(b))
	assert.Equal(t, Vector3{}, Vector3{}.Normalized())
	assert.InDelta(t, math.Pi/2, AngleBetween(a, b), tol)
	assert.InDelta(t, 1.0, Vec(3, 4, 12).Normalized().Norm(), tol)

	v := Vec(1, 2, 3)
	_ = v.Normalized()
	assert.Equal(t, Vec(1, 2, 3), v)
}
