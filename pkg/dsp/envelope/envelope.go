// Package envelope holds the peak detector (detector.go) shared by the
// dynamics kernels and the ADSR stage machine behind the c_function
// module: a gate-driven Attack-Decay-Sustain-Release generator, with
// AR behavior layered on top by the module skipping decay and sustain.
package envelope

import "math"

// Stage is the ADSR's current phase.
type Stage int

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// ADSR is a four-stage exponential envelope generator: attack ramps to
// 1.0, decay settles to the sustain level, sustain holds until release
// is called, release ramps back to 0 and returns to idle.
type ADSR struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	attackCoef  float64
	decayCoef   float64
	releaseCoef float64

	stage  Stage
	value  float64
	target float64
}

// New builds an ADSR at 10ms attack, 100ms decay, 70% sustain, 300ms
// release, starting idle.
func New(sampleRate float64) *ADSR {
	e := &ADSR{
		sampleRate: sampleRate,
		attack:     0.01,
		decay:      0.1,
		sustain:    0.7,
		release:    0.3,
		stage:      StageIdle,
	}
	e.updateCoefficients()
	return e
}

// SetADSR sets all four stage parameters at once, as the c_function
// module does every control block to track live parameter changes.
func (e *ADSR) SetADSR(attack, decay, sustain, release float64) {
	e.attack = math.Max(0.001, attack)
	e.decay = math.Max(0.001, decay)
	e.sustain = math.Max(0.0, math.Min(1.0, sustain))
	e.release = math.Max(0.001, release)
	e.updateCoefficients()
}

func (e *ADSR) updateCoefficients() {
	e.attackCoef = calcCoef(e.attack, e.sampleRate)
	e.decayCoef = calcCoef(e.decay, e.sampleRate)
	e.releaseCoef = calcCoef(e.release, e.sampleRate)
}

// calcCoef turns a time constant into a one-pole exponential coefficient.
func calcCoef(timeSeconds, sampleRate float64) float64 {
	if timeSeconds <= 0.0 {
		return 0.0
	}
	return math.Exp(-1.0 / (timeSeconds * sampleRate))
}

// Trigger starts (or restarts) the attack stage, as a rising gate does.
func (e *ADSR) Trigger() {
	e.stage = StageAttack
	e.target = 1.0
}

// Release starts the release stage, as a falling gate does; a no-op
// from idle.
func (e *ADSR) Release() {
	if e.stage != StageIdle {
		e.stage = StageRelease
		e.target = 0.0
	}
}

// Reset snaps immediately back to idle with the value at 0, without
// ramping through release.
func (e *ADSR) Reset() {
	e.stage = StageIdle
	e.value = 0.0
	e.target = 0.0
}

// GetStage reports the current stage, so a caller can react to it (the
// c_function module's AR mode releases as soon as attack completes and
// the stage leaves StageAttack).
func (e *ADSR) GetStage() Stage {
	return e.stage
}

// Next advances the envelope by one sample and returns its value.
func (e *ADSR) Next() float32 {
	switch e.stage {
	case StageAttack:
		e.value = e.target + (e.value-e.target)*e.attackCoef
		if e.value >= 0.999 {
			e.value = 1.0
			e.stage = StageDecay
			e.target = e.sustain
		}

	case StageDecay:
		e.value = e.target + (e.value-e.target)*e.decayCoef
		if e.value <= e.sustain+0.001 {
			e.value = e.sustain
			e.stage = StageSustain
		}

	case StageSustain:
		e.value = e.sustain

	case StageRelease:
		e.value = e.target + (e.value-e.target)*e.releaseCoef
		if e.value <= 0.001 {
			e.value = 0.0
			e.stage = StageIdle
		}

	case StageIdle:
		e.value = 0.0
	}

	return float32(e.value)
}
