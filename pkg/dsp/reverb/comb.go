package reverb

import "math"

// combFilter is a feedback delay line with a one-pole lowpass in the
// feedback path, damping the high end of the recirculating tail the way
// a real room absorbs high frequencies faster than low ones.
type combFilter struct {
	buffer    []float32
	writePos  int
	feedback  float64
	damp1     float64
	damp2     float64
	lowpassed float32
}

func newCombFilter(delaySamples int) *combFilter {
	return &combFilter{
		buffer:   make([]float32, delaySamples),
		feedback: 0.5,
		damp1:    0.5,
		damp2:    0.5,
	}
}

func (c *combFilter) setFeedback(feedback float64) {
	c.feedback = math.Max(0.0, math.Min(1.0, feedback))
}

func (c *combFilter) setDamping(damping float64) {
	c.damp1 = damping
	c.damp2 = 1.0 - damping
}

func (c *combFilter) process(input float32) float32 {
	out := c.buffer[c.writePos]
	c.lowpassed = float32(float64(out)*c.damp2 + float64(c.lowpassed)*c.damp1)
	c.buffer[c.writePos] = input + float32(c.feedback)*c.lowpassed

	c.writePos++
	if c.writePos >= len(c.buffer) {
		c.writePos = 0
	}
	return out
}

// allpassFilter is a unity-gain delay used to diffuse a comb bank's output
// into a denser tail without coloring its spectrum.
type allpassFilter struct {
	buffer   []float32
	writePos int
	feedback float64
}

func newAllpassFilter(delaySamples int) *allpassFilter {
	return &allpassFilter{
		buffer:   make([]float32, delaySamples),
		feedback: 0.5,
	}
}

func (a *allpassFilter) process(input float32) float32 {
	bufOut := a.buffer[a.writePos]
	output := -input + bufOut
	a.buffer[a.writePos] = input + float32(a.feedback)*bufOut

	a.writePos++
	if a.writePos >= len(a.buffer) {
		a.writePos = 0
	}
	return output
}
