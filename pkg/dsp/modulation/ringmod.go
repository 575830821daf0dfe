package modulation

import "math"

// RingModulator multiplies its input by an internal carrier oscillator,
// the classic ring-mod effect: a sine carrier produces inharmonic sum/
// difference tones, while square/triangle/sawtooth carriers fold the
// input's spectrum more aggressively.
type RingModulator struct {
	sampleRate float64

	frequency float64
	mix       float64
	waveform  Waveform

	phase    float64
	phaseInc float64
}

// NewRingModulator starts at a 440Hz sine carrier with a 0.5 wet/dry mix.
func NewRingModulator(sampleRate float64) *RingModulator {
	rm := &RingModulator{
		sampleRate: sampleRate,
		frequency:  440.0,
		mix:        0.5,
		waveform:   WaveformSine,
	}
	rm.updatePhaseIncrement()
	return rm
}

// SetFrequency sets the carrier frequency in Hz, clamped to Nyquist.
func (rm *RingModulator) SetFrequency(hz float64) {
	rm.frequency = math.Max(0.1, math.Min(rm.sampleRate/2, hz))
	rm.updatePhaseIncrement()
}

// SetMix sets the wet/dry blend (0=dry, 1=fully ring-modulated).
func (rm *RingModulator) SetMix(mix float64) {
	rm.mix = math.Max(0.0, math.Min(1.0, mix))
}

// SetWaveform selects the carrier's shape.
func (rm *RingModulator) SetWaveform(waveform Waveform) {
	rm.waveform = waveform
}

func (rm *RingModulator) updatePhaseIncrement() {
	rm.phaseInc = rm.frequency / rm.sampleRate
}

func (rm *RingModulator) generateCarrier() float64 {
	switch rm.waveform {
	case WaveformTriangle:
		if rm.phase < 0.5 {
			return 4.0*rm.phase - 1.0
		}
		return 3.0 - 4.0*rm.phase
	case WaveformSquare:
		if rm.phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveformSawtooth:
		return 2.0*rm.phase - 1.0
	default:
		return math.Sin(2.0 * math.Pi * rm.phase)
	}
}

// Process ring-modulates one sample and advances the carrier phase.
func (rm *RingModulator) Process(input float32) float32 {
	carrier := rm.generateCarrier()
	modulated := float64(input) * carrier
	output := float64(input)*(1-rm.mix) + modulated*rm.mix

	rm.phase += rm.phaseInc
	if rm.phase >= 1.0 {
		rm.phase -= 1.0
	}

	return float32(output)
}
