package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/gain"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// VCA is a voltage-controlled amplifier: the modular-synth staple that
// scales an audio input by a CV-modulated gain, grounded on
// pkg/dsp/gain's dB<->linear helpers the way bit_crush grounds on
// pkg/dsp/distortion. "level" is a linear 0..1 base gain; a "cv" input
// (wired via the generic cv= mechanism onto the "level" parameter)
// replaces that base gain per sample with the CV value clamped to 0..1,
// the same way other modules' CV inputs do. The CV is not added to the
// base level.
type VCA struct {
	*module.Base
}

func newVCA(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "vca", sampleRate, 0.99, true, false, module.MaxBlockSize)
	b.Params.Declare("level", 0, 1, module.ConfigFloat(cfg, "level", 1.0))
	return &VCA{Base: b}, nil
}

// ProcessAudio applies gain.Apply per sample, level smoothed at block
// rate and modulated per-sample by any patched "level" CV.
func (v *VCA) ProcessAudio(in []float32, out []float32, frames int) {
	v.SnapshotBlock()
	level := v.Params.Next("level")

	for i := 0; i < frames; i++ {
		g := v.AtBlock("level", level, i)
		out[i] = clampFinite(gain.Apply(in[i], float32(g)))
	}
	v.PublishMirror("level", level)
}

func init() {
	registry.Register("vca", newVCA)
}
