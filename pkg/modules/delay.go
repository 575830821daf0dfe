package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/delay"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// maxDelaySeconds bounds the delay module's ring buffer, sized once at
// construction rather than grown dynamically.
const maxDelaySeconds = 2.0

// Delay wraps pkg/dsp/delay.Line as an audio-rate feedback delay effect,
// rounding out the module catalog the same way bit_crush/amp_mod do:
// time (ms), feedback, and mix are block-smoothed parameters; "time"
// also accepts per-sample CV for delay-time modulation.
type Delay struct {
	*module.Base

	line *delay.Line
}

func newDelay(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "delay", sampleRate, 0.95, true, false, module.MaxBlockSize)
	b.Params.Declare("time_ms", 1, maxDelaySeconds*1000, module.ConfigFloat(cfg, "time_ms", 250))
	b.Params.Declare("feedback", 0, 0.98, module.ConfigFloat(cfg, "feedback", 0.3))
	b.Params.Declare("mix", 0, 1, module.ConfigFloat(cfg, "mix", 0.5))

	return &Delay{
		Base: b,
		line: delay.New(maxDelaySeconds, sampleRate),
	}, nil
}

func (d *Delay) ProcessAudio(in []float32, out []float32, frames int) {
	d.SnapshotBlock()
	timeMs := d.Params.Next("time_ms")
	feedback := float32(d.Params.Next("feedback"))
	mix := float32(d.Params.Next("mix"))

	for i := 0; i < frames; i++ {
		tMs := d.AtBlock("time_ms", timeMs, i)
		delaySamples := tMs * 0.001 * d.SampleRate()

		wet := d.line.Read(delaySamples)
		d.line.Write(in[i] + wet*feedback)
		out[i] = clampFinite(in[i]*(1-mix) + wet*mix)
	}
	d.PublishMirror("time_ms", timeMs)
}

func init() {
	registry.Register("delay", newDelay)
}
