// Package modulation holds the low-frequency oscillator and ring
// modulator behind patchrack's c_lfo and amp_mod modules.
package modulation

import "math"

// Waveform selects an LFO's or ring modulator carrier's shape.
type Waveform int

const (
	WaveformSine Waveform = iota
	WaveformTriangle
	WaveformSquare
	WaveformSawtooth
	WaveformRandom
)

// LFO is a low-frequency oscillator used as a control-rate modulation
// source: sine/triangle/square/sawtooth, or sample-and-hold random
// values clocked at its own frequency.
type LFO struct {
	sampleRate float64

	frequency float64
	phase     float64
	waveform  Waveform
	depth     float64

	currentRandom float64
	randomCounter int
	randomPeriod  int
}

// NewLFO starts at 1Hz sine, full depth.
func NewLFO(sampleRate float64) *LFO {
	lfo := &LFO{
		sampleRate: sampleRate,
		frequency:  1.0,
		waveform:   WaveformSine,
		depth:      1.0,
	}
	lfo.updateRandomPeriod()
	return lfo
}

// SetFrequency sets the LFO rate in Hz, clamped to a musically useful
// sub-audio range.
func (l *LFO) SetFrequency(hz float64) {
	l.frequency = math.Max(0.01, math.Min(20.0, hz))
	l.updateRandomPeriod()
}

// SetWaveform selects the LFO's shape.
func (l *LFO) SetWaveform(waveform Waveform) {
	l.waveform = waveform
	if waveform == WaveformRandom {
		l.updateRandomPeriod()
		l.currentRandom = 2.0*randFloat() - 1.0
		l.randomCounter = 0
	}
}

// SetDepth sets the modulation depth (0-1).
func (l *LFO) SetDepth(depth float64) {
	l.depth = math.Max(0.0, math.Min(1.0, depth))
}

func (l *LFO) updateRandomPeriod() {
	if l.frequency > 0 {
		l.randomPeriod = int(l.sampleRate / l.frequency)
	} else {
		l.randomPeriod = int(l.sampleRate)
	}
}

func (l *LFO) generateWaveform() float64 {
	switch l.waveform {
	case WaveformSine:
		return math.Sin(2.0 * math.Pi * l.phase)
	case WaveformTriangle:
		if l.phase < 0.5 {
			return 4.0*l.phase - 1.0
		}
		return 3.0 - 4.0*l.phase
	case WaveformSquare:
		if l.phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveformSawtooth:
		return 2.0*l.phase - 1.0
	case WaveformRandom:
		if l.randomCounter >= l.randomPeriod {
			l.randomCounter = 0
			l.currentRandom = 2.0*randFloat() - 1.0
		}
		l.randomCounter++
		return l.currentRandom
	default:
		return 0.0
	}
}

// Process returns the next LFO sample, scaled by depth and clamped to
// [-1, 1], and advances the oscillator's phase.
func (l *LFO) Process() float64 {
	wave := l.generateWaveform()
	output := wave * l.depth

	l.phase += l.frequency / l.sampleRate
	if l.phase >= 1.0 {
		l.phase -= 1.0
	}

	return math.Max(-1.0, math.Min(1.0, output))
}

// randState is a small linear congruential generator: fast and good
// enough for sample-and-hold modulation, with no need for crypto-grade
// randomness on the control thread.
var randState uint32 = 1

func randFloat() float64 {
	randState = randState*1664525 + 1013904223
	return float64(randState) / float64(1<<32)
}
