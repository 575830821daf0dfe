// Package envelope holds the peak detector shared by the compressor
// and limiter gain computers in pkg/dsp/dynamics.
package envelope

import "math"

// DetectorType selects how a Detector's attack/release coefficients
// are derived from their time constants.
type DetectorType int

const (
	// TypeLinear uses a one-pole filter with the standard -1/(t*fs)
	// time constant.
	TypeLinear DetectorType = iota
	// TypeLogarithmic uses a -2.2/(t*fs) time constant, so a step rises
	// from 10% to 90% within the given time: a snappier attack for the
	// same attack setting.
	TypeLogarithmic
)

// Detector is a peak envelope follower: an asymmetric one-pole filter
// that rises at its attack rate and falls at its release rate.
type Detector struct {
	sampleRate float64
	detType    DetectorType

	attack  float64
	release float64

	attackCoef  float64
	releaseCoef float64

	envelope float64
}

// NewDetector starts at 1ms attack, 100ms release, linear response.
func NewDetector(sampleRate float64) *Detector {
	d := &Detector{
		sampleRate: sampleRate,
		detType:    TypeLinear,
		attack:     0.001,
		release:    0.100,
	}
	d.updateCoefficients()
	return d
}

// SetType selects the coefficient curve.
func (d *Detector) SetType(detType DetectorType) {
	d.detType = detType
	d.updateCoefficients()
}

// SetAttack sets the attack time in seconds.
func (d *Detector) SetAttack(seconds float64) {
	d.attack = math.Max(0.0001, seconds)
	d.updateCoefficients()
}

// SetRelease sets the release time in seconds.
func (d *Detector) SetRelease(seconds float64) {
	d.release = math.Max(0.0001, seconds)
	d.updateCoefficients()
}

// SetTimeConstants sets attack and release together.
func (d *Detector) SetTimeConstants(attack, release float64) {
	d.attack = math.Max(0.0001, attack)
	d.release = math.Max(0.0001, release)
	d.updateCoefficients()
}

func (d *Detector) updateCoefficients() {
	switch d.detType {
	case TypeLogarithmic:
		d.attackCoef = 1.0 - math.Exp(-2.2/(d.attack*d.sampleRate))
		d.releaseCoef = 1.0 - math.Exp(-2.2/(d.release*d.sampleRate))
	default:
		d.attackCoef = 1.0 - math.Exp(-1.0/(d.attack*d.sampleRate))
		d.releaseCoef = 1.0 - math.Exp(-1.0/(d.release*d.sampleRate))
	}
}

// Detect peak-tracks one sample: the envelope jumps toward a louder
// input at the attack rate and decays toward a quieter one at the
// release rate. When the attack step leaves the envelope below half the
// input level, or the attack coefficient exceeds 0.5, the envelope jumps
// straight to the input level.
func (d *Detector) Detect(input float32) float32 {
	inputLevel := math.Abs(float64(input))

	if inputLevel > d.envelope {
		d.envelope += (inputLevel - d.envelope) * d.attackCoef
		if d.attackCoef > 0.5 || inputLevel > d.envelope*2.0 {
			d.envelope = inputLevel
		}
	} else {
		d.envelope += (inputLevel - d.envelope) * d.releaseCoef
	}

	return float32(d.envelope)
}
