// Package gain holds the linear/dB conversions and sample-level gain
// application shared by the VCA, compressor, and limiter modules.
package gain

import "math"

// MinDB is the floor returned for amplitudes that convert to -infinity dB.
const MinDB = -200.0

// LinearToDb32 converts a linear amplitude to decibels, flooring at MinDB.
func LinearToDb32(linear float32) float32 {
	if linear <= 0 {
		return MinDB
	}
	return 20.0 * float32(math.Log10(float64(linear)))
}

// DbToLinear32 converts a decibel value to linear amplitude; values at or
// below MinDB convert to silence.
func DbToLinear32(db float32) float32 {
	if db <= MinDB {
		return 0
	}
	return float32(math.Pow(10.0, float64(db)/20.0))
}

// Apply scales a sample by a linear gain factor, the one operation the
// VCA module runs every sample.
func Apply(sample, gain float32) float32 {
	return sample * gain
}
