// Package dynamics holds the gain-reduction kernels behind the compressor
// and limiter modules: a shared envelope.Detector feeds a knee-shaped gain
// computer, and each kernel differs only in how aggressively that gain
// curve clamps the signal.
package dynamics

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/envelope"
	"github.com/halvorsen-audio/patchrack/pkg/dsp/gain"
)

// KneeType selects how the gain computer blends from unity gain into full
// compression around the threshold.
type KneeType int

const (
	// KneeHard switches straight from unity gain to the compression ratio
	// at the threshold, with no transition band.
	KneeHard KneeType = iota
	// KneeSoft ramps the compression ratio in over KneeWidth dB centered
	// on the threshold, avoiding an audible kink at the knee.
	KneeSoft
)

// Compressor is a feed-forward, single-sample dynamics processor: an
// envelope.Detector tracks input level, a knee-shaped curve turns that
// level into a gain reduction in dB, and the result is applied with
// makeup gain added back in.
type Compressor struct {
	sampleRate float64

	threshold  float64
	ratio      float64
	attack     float64
	release    float64
	kneeWidth  float64
	makeupGain float64
	kneeType   KneeType

	detector *envelope.Detector

	gainReductionDB float64
}

// NewCompressor builds a compressor with a 4:1 ratio, -20dB threshold, a
// 2dB soft knee, and a log-domain detector tuned for musical attack/release
// behavior rather than the instantaneous tracking a limiter needs.
func NewCompressor(sampleRate float64) *Compressor {
	c := &Compressor{
		sampleRate: sampleRate,
		threshold:  -20.0,
		ratio:      4.0,
		attack:     0.005,
		release:    0.050,
		kneeWidth:  2.0,
		kneeType:   KneeSoft,
		detector:   envelope.NewDetector(sampleRate),
	}
	c.detector.SetType(envelope.TypeLogarithmic)
	c.detector.SetTimeConstants(c.attack, c.release)
	return c
}

func (c *Compressor) SetThreshold(dB float64) { c.threshold = dB }

// SetRatio sets the compression ratio; 1.0 is transparent, larger ratios
// approach brick-wall limiting.
func (c *Compressor) SetRatio(ratio float64) { c.ratio = math.Max(1.0, ratio) }

func (c *Compressor) SetAttack(seconds float64) {
	c.attack = math.Max(0.0001, seconds)
	c.detector.SetAttack(c.attack)
}

func (c *Compressor) SetRelease(seconds float64) {
	c.release = math.Max(0.001, seconds)
	c.detector.SetRelease(c.release)
}

// SetKnee sets the transition shape around the threshold; widthDB is
// ignored for KneeHard.
func (c *Compressor) SetKnee(kneeType KneeType, widthDB float64) {
	c.kneeType = kneeType
	c.kneeWidth = math.Max(0.0, widthDB)
}

func (c *Compressor) SetMakeupGain(dB float64) { c.makeupGain = dB }

// GainReductionDB reports the most recent sample's gain reduction, for a
// module's metering readout.
func (c *Compressor) GainReductionDB() float64 { return c.gainReductionDB }

// gainReductionAt returns the gain reduction in dB for a detected input
// level, zero below the knee and ratio-scaled above it, with a quadratic
// blend through the knee region when kneeType is KneeSoft.
func (c *Compressor) gainReductionAt(inputDB float64) float64 {
	if inputDB < c.threshold-c.kneeWidth/2 {
		return 0.0
	}
	if inputDB > c.threshold+c.kneeWidth/2 {
		return (inputDB - c.threshold) * (1.0 - 1.0/c.ratio)
	}
	if c.kneeType != KneeSoft || c.kneeWidth <= 0 {
		return 0.0
	}
	kneePos := (inputDB - (c.threshold - c.kneeWidth/2)) / c.kneeWidth
	return kneePos * kneePos * (inputDB - c.threshold) * (1.0 - 1.0/c.ratio)
}

// Process runs one sample through the detector and gain computer.
func (c *Compressor) Process(input float32) float32 {
	level := c.detector.Detect(input)

	inputDB := -96.0
	if level > 0 {
		inputDB = float64(gain.LinearToDb32(level))
	}

	c.gainReductionDB = c.gainReductionAt(inputDB)
	totalGainDB := -c.gainReductionDB + c.makeupGain
	return gain.Apply(input, gain.DbToLinear32(float32(totalGainDB)))
}
