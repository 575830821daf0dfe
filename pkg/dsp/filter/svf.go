// Package filter holds the zero-delay-feedback state-variable filter
// behind svf_filter, patchrack's morphing lowpass/bandpass/highpass/notch
// voice.
package filter

import "math"

// svf is a single-voice, zero-delay-feedback state variable filter
// producing simultaneous lowpass/highpass/bandpass/notch outputs from one
// pair of integrator states. patchrack has no multi-channel signal path,
// so unlike a plugin-oriented SVF this carries no per-channel state array.
type svf struct {
	g float32 // frequency coefficient, tan(pi*fc/fs) pre-warped
	k float32 // damping, 1/Q

	ic1eq float32
	ic2eq float32
}

// svfOutputs holds one sample's four simultaneous filter responses.
type svfOutputs struct {
	lowpass  float32
	highpass float32
	bandpass float32
	notch    float32
}

func (s *svf) setFrequency(sampleRate, frequency float64) {
	s.g = float32(math.Tan(math.Pi * frequency / sampleRate))
}

func (s *svf) setQ(q float64) { s.k = float32(1.0 / q) }

// processSample runs one input sample through the filter's trapezoidal
// integrator pair and returns all four simultaneous responses.
func (s *svf) processSample(input float32) svfOutputs {
	g, k := s.g, s.k
	a1 := 1.0 / (1.0 + g*(g+k))
	a2 := g * a1
	a3 := g * a2

	v3 := input - s.ic2eq
	v1 := a1*s.ic1eq + a2*v3
	v2 := s.ic2eq + a2*s.ic1eq + a3*v3

	s.ic1eq = 2.0*v1 - s.ic1eq
	s.ic2eq = 2.0*v2 - s.ic2eq

	return svfOutputs{
		lowpass:  v2,
		bandpass: v1,
		highpass: input - k*v1 - v2,
		notch:    input - k*v1,
	}
}

// MultiModeSVF morphs continuously between lowpass, bandpass, highpass,
// and notch by linearly blending the two responses adjacent to Mode on a
// 0..1 wheel (LP at 0, BP at 0.25, HP at 0.5, notch at 0.75, back to LP
// at 1).
type MultiModeSVF struct {
	svf
	mode float32
}

// NewMultiModeSVF builds a multi-mode filter defaulting to lowpass. The
// channels argument is accepted for parity with the teacher's per-channel
// constructor shape but is otherwise unused: patchrack modules run one
// voice per instance.
func NewMultiModeSVF(channels int) *MultiModeSVF {
	return &MultiModeSVF{}
}

// SetFrequencyAndQ sets cutoff (Hz) and resonance (Q) in one call.
func (m *MultiModeSVF) SetFrequencyAndQ(sampleRate, frequency, q float64) {
	m.setFrequency(sampleRate, frequency)
	m.setQ(q)
}

// SetMode sets the position on the LP/BP/HP/notch wheel, wrapping to 0..1.
func (m *MultiModeSVF) SetMode(mode float64) {
	m.mode = float32(mode - math.Floor(mode))
}

// Process filters buffer in place, blending between the two filter
// responses adjacent to the current mode.
func (m *MultiModeSVF) Process(buffer []float32, channel int) {
	scaled := m.mode * 4.0

	var mix float32
	var modeA, modeB int
	switch {
	case scaled < 1.0:
		modeA, modeB, mix = 0, 1, scaled
	case scaled < 2.0:
		modeA, modeB, mix = 1, 2, scaled-1.0
	case scaled < 3.0:
		modeA, modeB, mix = 2, 3, scaled-2.0
	default:
		modeA, modeB, mix = 3, 0, scaled-3.0
	}

	for i := range buffer {
		outs := m.processSample(buffer[i])
		buffer[i] = pickResponse(outs, modeA)*(1.0-mix) + pickResponse(outs, modeB)*mix
	}
}

func pickResponse(outs svfOutputs, mode int) float32 {
	switch mode {
	case 0:
		return outs.lowpass
	case 1:
		return outs.bandpass
	case 2:
		return outs.highpass
	default:
		return outs.notch
	}
}
