// Package interpolation holds the fractional-sample interpolation used
// by the sample player module to read its buffer at an arbitrary pitch.
package interpolation

// Linear interpolates between two samples; frac is the fractional
// position between y0 and y1, 0.0 to 1.0.
func Linear(y0, y1, frac float32) float32 {
	return y0 + (y1-y0)*frac
}
