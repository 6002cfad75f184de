package orientation

// Params holds the tuning constants of the fusion filters. Values are
// passed in explicitly; see DefaultParams.
type Params struct {
	// WindowSize is the number of accelerometer samples kept to judge
	// stillness. Zero or negative selects the default of 64.
	WindowSize int

	// GyroEpsilon is the angular rate (rad/s) below which the gyro axis is
	// not normalized (acc_gyro and grav_acc_gyro).
	GyroEpsilon float64
	// AbsGyroEpsilon is the same threshold for abs_gyro.
	AbsGyroEpsilon float64

	// AccErrorGain scales the squared window deviation (degrees) in the
	// acc_gyro correction weight 1/(1+k·dev²).
	AccErrorGain float64
	// GravErrorGain scales the window deviation (degrees) in the
	// grav_acc_gyro bias weight max(0, 1-k·dev).
	GravErrorGain float64
	// CorrectionDamping is the fixed slerp fraction pulling the relative
	// orientation toward the gravity-derived one.
	CorrectionDamping float64

	// OutlierThreshold: |dot(relative, absolute)| below it skips the
	// absolute correction.
	OutlierThreshold float64
	// PanicThreshold: |dot| below it counts toward a panic reset.
	PanicThreshold float64
	// PanicCount is the number of consecutive panic frames tolerated.
	PanicCount int
	// PanicMotionLimit (rad/s): resets are deferred while the device
	// rotates faster than this.
	PanicMotionLimit float64
	// InterpolationWeight scales the angular rate into the abs_gyro slerp
	// fraction.
	InterpolationWeight float64
}

// DefaultParams returns the tuning used on 50 Hz phone sensors.
func DefaultParams() Params {
	return Params{
		WindowSize:          64,
		GyroEpsilon:         0.05,
		AbsGyroEpsilon:      0.1,
		AccErrorGain:        10,
		GravErrorGain:       5,
		CorrectionDamping:   0.01,
		OutlierThreshold:    0.85,
		PanicThreshold:      0.75,
		PanicCount:          60,
		PanicMotionLimit:    3,
		InterpolationWeight: 0.01,
	}
}

func (p Params) windowSize() int {
	if p.WindowSize <= 0 {
		return DefaultParams().WindowSize
	}
	return p.WindowSize
}
