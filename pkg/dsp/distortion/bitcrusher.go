// Package distortion holds the lo-fi digital distortion kernel behind
// patchrack's bit_crush module.
package distortion

import "math"

// BitCrusher reduces bit depth and effective sample rate for lo-fi
// digital distortion: a sample-and-hold decimator followed by a
// quantizer, bracketed by anti-aliasing lowpass filters that track the
// current decimation ratio.
type BitCrusher struct {
	sampleRate      float64
	bitDepth        int
	sampleRateRatio float64
	mix             float64

	preFilter  *simpleLowpass
	postFilter *simpleLowpass

	sampleCounter float64
	heldSample    float64

	dcBlocker *dcBlocker
}

// NewBitCrusher starts at 16-bit, full sample rate, fully wet.
func NewBitCrusher(sampleRate float64) *BitCrusher {
	return &BitCrusher{
		sampleRate:      sampleRate,
		bitDepth:        16,
		sampleRateRatio: 1.0,
		mix:             1.0,
		preFilter:       newSimpleLowpass(sampleRate, sampleRate/2),
		postFilter:      newSimpleLowpass(sampleRate, sampleRate/2),
		dcBlocker:       newDCBlocker(),
	}
}

// SetBitDepth sets the target bit depth (1-24 bits).
func (b *BitCrusher) SetBitDepth(bits int) {
	b.bitDepth = max(1, min(24, bits))
}

// SetSampleRateRatio sets the sample-rate reduction ratio: 1.0 is no
// reduction, 0.5 halves the effective sample rate, and so on down to
// 0.01. The anti-aliasing filters' cutoff tracks the new ratio.
func (b *BitCrusher) SetSampleRateRatio(ratio float64) {
	b.sampleRateRatio = math.Max(0.01, math.Min(1.0, ratio))

	cutoff := b.sampleRate * b.sampleRateRatio * 0.45
	b.preFilter = newSimpleLowpass(b.sampleRate, cutoff)
	b.postFilter = newSimpleLowpass(b.sampleRate, cutoff)
}

// SetMix sets the dry/wet mix (0.0 = dry, 1.0 = wet).
func (b *BitCrusher) SetMix(mix float64) {
	b.mix = math.Max(0.0, math.Min(1.0, mix))
}

// Process bit-crushes one sample: pre-filter, decimate, quantize,
// post-filter, DC-block, then blend against the dry input.
func (b *BitCrusher) Process(input float64) float64 {
	filtered := input
	if b.sampleRateRatio < 1.0 {
		filtered = b.preFilter.process(input)
	}

	decimated := b.decimate(filtered)
	crushed := b.quantize(decimated)

	if b.sampleRateRatio < 1.0 {
		crushed = b.postFilter.process(crushed)
	}
	crushed = b.dcBlocker.process(crushed)

	return input*(1.0-b.mix) + crushed*b.mix
}

func (b *BitCrusher) decimate(input float64) float64 {
	b.sampleCounter += b.sampleRateRatio
	if b.sampleCounter >= 1.0 {
		b.sampleCounter -= 1.0
		b.heldSample = input
	}
	return b.heldSample
}

func (b *BitCrusher) quantize(input float64) float64 {
	levels := math.Pow(2, float64(b.bitDepth))
	halfLevels := levels / 2.0

	scaled := input * halfLevels
	quantized := math.Round(scaled)
	quantized = math.Max(-halfLevels, math.Min(halfLevels-1, quantized))

	return quantized / halfLevels
}

// simpleLowpass is a one-pole Butterworth lowpass used to band-limit
// the signal before and after decimation, so the held-sample stairstep
// doesn't alias as harshly.
type simpleLowpass struct {
	a0, a1 float64
	b1     float64
	x1, y1 float64
}

func newSimpleLowpass(sampleRate, cutoff float64) *simpleLowpass {
	omega := 2.0 * math.Pi * cutoff / sampleRate
	alpha := math.Sin(omega) / (2.0 * 0.707)
	cosw := math.Cos(omega)

	norm := 1.0 / (1.0 + alpha)
	return &simpleLowpass{
		a0: (1.0 - cosw) / 2.0 * norm,
		a1: (1.0 - cosw) / 2.0 * norm,
		b1: (1.0 - alpha) * norm,
	}
}

func (lp *simpleLowpass) process(input float64) float64 {
	output := lp.a0*input + lp.a1*lp.x1 - lp.b1*lp.y1
	lp.x1 = input
	lp.y1 = output
	return output
}

// dcBlocker removes DC offset the quantizer can introduce, a one-pole
// highpass with its pole at r = 0.995.
type dcBlocker struct {
	x1, y1 float64
	r      float64
}

func newDCBlocker() *dcBlocker {
	return &dcBlocker{r: 0.995}
}

func (dc *dcBlocker) process(input float64) float64 {
	output := input - dc.x1 + dc.r*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
