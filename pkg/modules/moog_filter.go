package modules

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// MoogFilter is a four-pole ladder lowpass with tanh saturation at the
// input, feedback, and output stages, modeled as four cascaded one-pole
// sections the way pkg/dsp/filter.SVF holds one integrator pair per
// channel — generalized here to four integrators in series plus a
// resonance feedback path, since this codebase ships a state-variable
// topology but no four-pole ladder. Cutoff and resonance clamps follow
// the same bounds as the rest of the filter catalog.
type MoogFilter struct {
	*module.Base

	s1, s2, s3, s4 float64 // per-stage state
}

func newMoogFilter(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "moog_filter", sampleRate, 0.99, true, false, module.MaxBlockSize)
	b.Params.Declare("cutoff", 10, 0.45*sampleRate, module.ConfigFloat(cfg, "cutoff", 1000))
	b.Params.Declare("resonance", 0, 4.2, module.ConfigFloat(cfg, "resonance", 0.2))
	return &MoogFilter{Base: b}, nil
}

// ProcessAudio runs the ladder on in, writing to out. cutoff/resonance
// read their cv= wire sample-accurately when patched, falling back to
// the block-smoothed parameter otherwise.
func (f *MoogFilter) ProcessAudio(in []float32, out []float32, frames int) {
	f.SnapshotBlock()
	cutoff := f.Params.Clamp("cutoff", f.Params.Next("cutoff"))
	resonance := f.Params.Clamp("resonance", f.Params.Next("resonance"))

	sr := f.SampleRate()
	g := 1.0 - math.Exp(-2.0*math.Pi*cutoff/sr)

	for i := 0; i < frames; i++ {
		if v, ok := f.CV("cutoff", i); ok {
			g = 1.0 - math.Exp(-2.0*math.Pi*v/sr)
		}
		r := resonance
		if v, ok := f.CV("resonance", i); ok {
			r = v
		}

		x := float64(in[i])
		feedback := r * f.s4
		input := math.Tanh(x - feedback)

		f.s1 += g * (input - f.s1)
		stage1 := math.Tanh(f.s1)
		f.s2 += g * (stage1 - f.s2)
		stage2 := math.Tanh(f.s2)
		f.s3 += g * (stage2 - f.s3)
		stage3 := math.Tanh(f.s3)
		f.s4 += g * (stage3 - f.s4)

		out[i] = clampFinite(float32(math.Tanh(f.s4)))
	}

	f.PublishMirror("cutoff", cutoff)
	f.PublishMirror("resonance", resonance)
}

func init() {
	registry.Register("moog_filter", newMoogFilter)
}
