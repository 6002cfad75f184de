package algebra

import (
	"log"
	"math"
)

// Logf is the package diagnostic logger. Replace it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// acosWarnLimit is how far outside [-1, 1] a cosine may drift from
// round-off before SafeAcos reports it.
const acosWarnLimit = 1.01

// SafeAcos returns acos(x) after clamping x to [-1, 1].
func SafeAcos(x float64) float64 {
	if math.Abs(x) > acosWarnLimit {
		Logf("algebra: acos(%g) argument far outside [-1, 1], clamping", x)
	}
	return math.Acos(math.Max(-1, math.Min(1, x)))
}
