package algebra

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorIsFinite(t *testing.T) {
	assert.True(t, Vec(1, -2, 3e300).IsFinite())
	assert.True(t, Vector3{}.IsFinite())
	assert.False(t, Vec(math.NaN(), 0, 0).IsFinite())
	assert.False(t, Vec(0, math.Inf(1), 0).IsFinite())
	assert.False(t, Vec(0, 0, math.Inf(-1)).IsFinite())
}
