package oscillator

// polyBLEP returns the band-limited step correction for a phase
// discontinuity at t (the current phase, normalized 0-1) with phase
// increment dt, per-sample. Added alongside the oscillator's naive
// waveform generators so discontinuous waveforms can subtract aliasing
// energy at their phase wraps, per the residency spec's PolyBLEP
// requirement; the base oscillator package shipped only naive generators.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	switch {
	case t < dt:
		x := t/dt - 1
		return -(x * x)
	case t > 1.0-dt:
		x := (t-1.0)/dt + 1
		return x * x
	default:
		return 0
	}
}

// SawBL generates a band-limited sawtooth sample using PolyBLEP
// correction at the phase wrap.
func (o *Oscillator) SawBL() float32 {
	sample := 2.0*o.phase - 1.0
	sample -= polyBLEP(o.phase, o.phaseInc)
	o.updatePhase()
	return float32(sample)
}

// SquareBL generates a band-limited square wave sample, correcting both
// edges (the rising edge at phase 0 and the falling edge at phase 0.5).
func (o *Oscillator) SquareBL() float32 {
	var sample float64
	if o.phase < 0.5 {
		sample = 1.0
	} else {
		sample = -1.0
	}
	sample += polyBLEP(o.phase, o.phaseInc)

	shifted := o.phase + 0.5
	if shifted >= 1.0 {
		shifted -= 1.0
	}
	sample -= polyBLEP(shifted, o.phaseInc)

	o.updatePhase()
	return float32(sample)
}

// PulseBL generates a band-limited pulse wave with variable width,
// correcting both edges the same way SquareBL does for a 0.5 width.
func (o *Oscillator) PulseBL(width float64) float32 {
	var sample float64
	if o.phase < width {
		sample = 1.0
	} else {
		sample = -1.0
	}
	sample += polyBLEP(o.phase, o.phaseInc)

	shifted := o.phase + (1.0 - width)
	if shifted >= 1.0 {
		shifted -= 1.0
	}
	sample -= polyBLEP(shifted, o.phaseInc)

	o.updatePhase()
	return float32(sample)
}

// TriangleBL generates a band-limited triangle sample by leaky-
// integrating a band-limited square wave, the standard PolyBLEP
// technique for waveforms with a discontinuous first derivative.
func (o *Oscillator) TriangleBL() float32 {
	square := o.SquareBL()
	o.triangleState += 4.0 * o.phaseInc * float64(square)
	o.triangleState *= 0.9997 // gentle leak to avoid DC drift
	return float32(o.triangleState)
}
