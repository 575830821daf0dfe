// Package reverb holds the Freeverb-derived algorithmic reverb behind
// patchrack's reverb module: a bank of damped comb filters in parallel,
// feeding a chain of allpass diffusers.
package reverb

import "math"

const (
	numCombs     = 8
	numAllpasses = 4
	fixedGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	stereoSpread = 23
)

// Comb and allpass delay lengths in samples at 44.1kHz, scaled to the
// engine's actual sample rate at construction time.
var combTuning = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var allpassTuning = [numAllpasses]int{556, 441, 341, 225}

// Freeverb is Jezar at Dreampoint's algorithm: parallel comb filters feed
// series allpasses, with independent left/right delay lengths (offset by
// stereoSpread) giving the two channels decorrelated tails.
type Freeverb struct {
	combL [numCombs]*combFilter
	combR [numCombs]*combFilter

	allpassL [numAllpasses]*allpassFilter
	allpassR [numAllpasses]*allpassFilter

	roomSize float64
	damping  float64
	wetLevel float64
	dryLevel float64

	wet1, wet2 float64
}

// NewFreeverb scales the classic Freeverb tuning table to sampleRate and
// starts at a 0.5 room size / 0.5 damping / 1/3 wet mix.
func NewFreeverb(sampleRate float64) *Freeverb {
	f := &Freeverb{
		roomSize: 0.5,
		damping:  0.5,
		wetLevel: 1.0 / 3.0,
	}

	scale := sampleRate / 44100.0
	for i := 0; i < numCombs; i++ {
		f.combL[i] = newCombFilter(int(float64(combTuning[i]) * scale))
		f.combR[i] = newCombFilter(int(float64(combTuning[i]+stereoSpread) * scale))
	}
	for i := 0; i < numAllpasses; i++ {
		f.allpassL[i] = newAllpassFilter(int(float64(allpassTuning[i]) * scale))
		f.allpassR[i] = newAllpassFilter(int(float64(allpassTuning[i]+stereoSpread) * scale))
		f.allpassL[i].feedback = 0.5
		f.allpassR[i].feedback = 0.5
	}

	f.update()
	return f
}

func (f *Freeverb) SetRoomSize(size float64) {
	f.roomSize = math.Max(0.0, math.Min(1.0, size))
	f.update()
}

func (f *Freeverb) SetDamping(damping float64) {
	f.damping = math.Max(0.0, math.Min(1.0, damping))
	f.update()
}

func (f *Freeverb) SetWetLevel(level float64) {
	f.wetLevel = math.Max(0.0, math.Min(1.0, level))
	f.update()
}

func (f *Freeverb) SetDryLevel(level float64) {
	f.dryLevel = math.Max(0.0, math.Min(1.0, level))
}

// update recalculates the cached wet/feedback/damping coefficients after
// a parameter change; width is fixed at full stereo since this module has
// no width control of its own.
func (f *Freeverb) update() {
	const width = 1.0
	f.wet1 = f.wetLevel * (width/2.0 + 0.5)
	f.wet2 = f.wetLevel * ((1.0 - width) / 2.0)

	feedback := f.roomSize*scaleRoom + offsetRoom
	damp1 := f.damping * scaleDamping

	for i := 0; i < numCombs; i++ {
		f.combL[i].setFeedback(feedback)
		f.combR[i].setFeedback(feedback)
		f.combL[i].setDamping(damp1)
		f.combR[i].setDamping(damp1)
	}
}

// ProcessStereo mixes the input to mono for the comb bank (Freeverb's
// stereo image comes from its left/right delay-length offsets, not from
// the input), runs it through the parallel combs and series allpasses,
// then blends wet against dry.
func (f *Freeverb) ProcessStereo(inputL, inputR float32) (outputL, outputR float32) {
	input := (inputL + inputR) * float32(fixedGain)

	var outL, outR float32
	for i := 0; i < numCombs; i++ {
		outL += f.combL[i].process(input)
		outR += f.combR[i].process(input)
	}
	for i := 0; i < numAllpasses; i++ {
		outL = f.allpassL[i].process(outL)
		outR = f.allpassR[i].process(outR)
	}

	outputL = outL*float32(f.wet1) + outR*float32(f.wet2) + inputL*float32(f.dryLevel)
	outputR = outR*float32(f.wet1) + outL*float32(f.wet2) + inputR*float32(f.dryLevel)
	return outputL, outputR
}
