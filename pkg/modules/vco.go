// Package modules implements the concrete DSP unit types a patch can
// instantiate, each satisfying the module.Module capability interfaces
// and registering itself with pkg/registry under a type name. Adapted
// from the pkg/dsp/* building blocks, generalized from
// plugin-parameter-driven processors to the patch graph's string-named,
// per-block-smoothed parameter model.
package modules

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/oscillator"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// waveform selects which band-limited generator VCO.ProcessAudio uses.
type waveform int

const (
	waveSine waveform = iota
	waveSaw
	waveSquare
	waveTriangle
	wavePulse
)

// VCO is a phase-continuous oscillator with PolyBLEP-corrected
// discontinuous waveforms and per-sample FM from its audio input,
// scaled by fm_amount. cv= wires are not read, so control inputs do not
// modulate its frequency. Grounded on pkg/dsp/oscillator.Oscillator, whose naive
// generator is used for the sine case and whose band-limited
// counterparts (pkg/dsp/oscillator/polyblep.go) serve the rest.
type VCO struct {
	*module.Base

	osc   *oscillator.Oscillator
	wave  waveform
	width float64
}

func newVCO(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "vco", sampleRate, 0.99, true, false, module.MaxBlockSize)
	b.Params.Declare("freq", 0.01, 20000, module.ConfigFloat(cfg, "freq", 220))
	b.Params.Declare("width", 0.001, 0.999, module.ConfigFloat(cfg, "width", 0.5))
	b.Params.Declare("fm_amount", 0, 1, module.ConfigFloat(cfg, "fm_amount", 1))

	v := &VCO{
		Base: b,
		osc:  oscillator.New(sampleRate),
		wave: waveFromName(module.ConfigString(cfg, "wave", "saw")),
	}
	v.osc.SetFrequency(b.Params.Get("freq"))
	return v, nil
}

func waveFromName(name string) waveform {
	switch name {
	case "sine", "sin":
		return waveSine
	case "square", "sq":
		return waveSquare
	case "triangle", "tri":
		return waveTriangle
	case "pulse":
		return wavePulse
	default:
		return waveSaw
	}
}

// ProcessAudio fills out with frames samples, FMing frequency by in
// (treated as a per-sample CV in Hz-normalized form, scaled by
// fm_amount) when an audio input is patched.
func (v *VCO) ProcessAudio(in []float32, out []float32, frames int) {
	v.SnapshotBlock()
	baseFreq := v.Params.Next("freq")
	width := v.Params.Clamp("width", v.Params.Next("width"))
	fmAmount := v.Params.Next("fm_amount")

	hasFM := fmAmount > 0 && len(in) > 0
	for i := 0; i < frames; i++ {
		freq := baseFreq
		if hasFM && i < len(in) {
			freq += float64(in[i]) * baseFreq * fmAmount
		}
		if freq < 0.01 {
			freq = 0.01
		}
		v.osc.SetFrequency(freq)

		var s float32
		switch v.wave {
		case waveSine:
			s = v.osc.Sine()
		case waveSquare:
			s = v.osc.SquareBL()
		case waveTriangle:
			s = v.osc.TriangleBL()
		case wavePulse:
			s = v.osc.PulseBL(width)
		default:
			s = v.osc.SawBL()
		}
		out[i] = clampFinite(s)
	}

	v.PublishMirror("freq", baseFreq)
}

func clampFinite(s float32) float32 {
	if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
		return 0
	}
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

func init() {
	registry.Register("vco", newVCO)
}
