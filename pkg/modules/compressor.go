package modules

import (
	"fmt"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/dynamics"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// Compressor wraps pkg/dsp/dynamics.Compressor as a feed-forward dynamics
// effect module, rounding out the module catalog with one more effect
// type in the same spirit as bit_crush/amp_mod. Params (threshold, ratio,
// attack, release, makeup) map directly onto the underlying Compressor's
// dB/ratio/seconds setters; there is no "amount" parameter and no
// dry/wet blend.
type Compressor struct {
	*module.Base

	comp *dynamics.Compressor
}

func newCompressor(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "compressor", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("threshold", -60, 0, module.ConfigFloat(cfg, "threshold", -20))
	b.Params.Declare("ratio", 1, 20, module.ConfigFloat(cfg, "ratio", 4))
	b.Params.Declare("attack", 0.0001, 1, module.ConfigFloat(cfg, "attack", 0.005))
	b.Params.Declare("release", 0.001, 2, module.ConfigFloat(cfg, "release", 0.05))
	b.Params.Declare("makeup", 0, 24, module.ConfigFloat(cfg, "makeup", 0))

	c := &Compressor{
		Base: b,
		comp: dynamics.NewCompressor(sampleRate),
	}
	c.applyFrom(b.Params.Get("threshold"), b.Params.Get("ratio"), b.Params.Get("attack"), b.Params.Get("release"), b.Params.Get("makeup"))
	return c, nil
}

func (c *Compressor) applyFrom(threshold, ratio, attack, release, makeup float64) {
	c.comp.SetThreshold(threshold)
	c.comp.SetRatio(ratio)
	c.comp.SetAttack(attack)
	c.comp.SetRelease(release)
	c.comp.SetMakeupGain(makeup)
}

// ProcessAudio feeds the block through the compressor one sample at a
// time (the Compressor.Process signature), with per-sample CV
// overriding threshold/ratio where patched.
func (c *Compressor) ProcessAudio(in []float32, out []float32, frames int) {
	c.SnapshotBlock()
	threshold := c.Params.Next("threshold")
	ratio := c.Params.Next("ratio")
	attack := c.Params.Next("attack")
	release := c.Params.Next("release")
	makeup := c.Params.Next("makeup")
	c.applyFrom(threshold, ratio, attack, release, makeup)

	for i := 0; i < frames; i++ {
		if v, ok := c.CV("threshold", i); ok {
			c.comp.SetThreshold(v)
		}
		if v, ok := c.CV("ratio", i); ok {
			c.comp.SetRatio(v)
		}
		out[i] = clampFinite(c.comp.Process(in[i]))
	}

	c.PublishMirror("threshold", threshold)
}

// DrawUI shows the live gain-reduction reading from the last processed
// sample, the same meter a rack compressor's reduction LED stack shows.
func (c *Compressor) DrawUI(y, x int) string {
	return fmt.Sprintf("[compressor:%s] GR: %5.1f dB", c.Alias(), c.comp.GainReductionDB())
}

func init() {
	registry.Register("compressor", newCompressor)
}
