package dynamics

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/envelope"
	"github.com/halvorsen-audio/patchrack/pkg/dsp/gain"
)

// Limiter is a brick-wall ceiling: an infinite-ratio gain computer fed by
// a true-peak-estimating detector, with a short lookahead delay so the
// gain reduction can start before the peak that caused it reaches the
// output.
type Limiter struct {
	sampleRate float64

	threshold float64
	release   float64
	lookahead float64

	detector     *envelope.Detector
	peakDetector *envelope.Detector

	delayBuffer  []float32
	delayIndex   int
	delaySamples int

	lastSample float32

	gainReductionDB float64
}

// NewLimiter builds a limiter with a -0.3dB ceiling, a 50ms release, and
// a 5ms lookahead, true-peak estimation always on.
func NewLimiter(sampleRate float64) *Limiter {
	l := &Limiter{
		sampleRate:   sampleRate,
		threshold:    -0.3,
		release:      0.050,
		lookahead:    0.005,
		detector:     envelope.NewDetector(sampleRate),
		peakDetector: envelope.NewDetector(sampleRate),
	}

	l.detector.SetType(envelope.TypeLinear)
	l.detector.SetAttack(0.0001)
	l.detector.SetRelease(l.release)

	l.peakDetector.SetType(envelope.TypeLinear)
	l.peakDetector.SetAttack(0.0)
	l.peakDetector.SetRelease(0.001)

	l.resizeLookahead()
	return l
}

// SetThreshold sets the ceiling in dB; positive values are clamped to 0.
func (l *Limiter) SetThreshold(dB float64) { l.threshold = math.Min(0.0, dB) }

func (l *Limiter) SetRelease(seconds float64) {
	l.release = math.Max(0.001, seconds)
	l.detector.SetRelease(l.release)
}

// SetLookahead sets the lookahead delay in seconds, clamped to 10ms, and
// resizes the delay buffer to match.
func (l *Limiter) SetLookahead(seconds float64) {
	l.lookahead = math.Max(0.0, math.Min(0.010, seconds))
	l.resizeLookahead()
}

func (l *Limiter) resizeLookahead() {
	samples := int(l.lookahead * l.sampleRate)
	if samples == l.delaySamples {
		return
	}
	l.delaySamples = samples
	if samples > 0 {
		l.delayBuffer = make([]float32, samples)
		l.delayIndex = 0
	} else {
		l.delayBuffer = nil
	}
}

// GainReductionDB reports the most recent sample's gain reduction, for a
// module's metering readout.
func (l *Limiter) GainReductionDB() float64 { return l.gainReductionDB }

// estimateTruePeak interpolates a midpoint sample between the last and
// current input and returns the peak of all three, a cheap 2x-oversampled
// approximation of intersample overs.
func (l *Limiter) estimateTruePeak(current float32) float32 {
	mid := (l.lastSample + current) * 0.5
	peak := float32(math.Max(math.Abs(float64(l.lastSample)), math.Abs(float64(current))))
	peak = float32(math.Max(float64(peak), math.Abs(float64(mid))))
	l.lastSample = current
	return peak
}

// Process runs one sample through true-peak detection, the lookahead
// delay, and the infinite-ratio gain computer.
func (l *Limiter) Process(input float32) float32 {
	detectionSignal := l.estimateTruePeak(input)

	processSignal := input
	if l.delaySamples > 0 {
		processSignal = l.delayBuffer[l.delayIndex]
		l.delayBuffer[l.delayIndex] = input
		l.delayIndex = (l.delayIndex + 1) % l.delaySamples

		detectionSignal = float32(math.Max(float64(detectionSignal),
			math.Abs(float64(l.peakDetector.Detect(processSignal)))))
	}

	level := l.detector.Detect(detectionSignal)
	inputDB := -96.0
	if level > 0 {
		inputDB = float64(gain.LinearToDb32(level))
	}

	l.gainReductionDB = 0.0
	if inputDB > l.threshold {
		l.gainReductionDB = inputDB - l.threshold
	}
	return gain.Apply(processSignal, gain.DbToLinear32(float32(-l.gainReductionDB)))
}
