package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/reverb"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// Reverb wraps pkg/dsp/reverb.Freeverb as a mono send-style reverb
// effect, feeding the same mono input to both of Freeverb's stereo
// channels and averaging its stereo output back to mono to match this
// engine's single audio output per module. Rounds out the module
// catalog in the same spirit as bit_crush/amp_mod/delay.
type Reverb struct {
	*module.Base

	fv *reverb.Freeverb
}

func newReverb(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "reverb", sampleRate, 0.95, true, false, module.MaxBlockSize)
	b.Params.Declare("room_size", 0, 1, module.ConfigFloat(cfg, "room_size", 0.5))
	b.Params.Declare("damping", 0, 1, module.ConfigFloat(cfg, "damping", 0.5))
	b.Params.Declare("mix", 0, 1, module.ConfigFloat(cfg, "mix", 0.3))

	fv := reverb.NewFreeverb(sampleRate)
	r := &Reverb{Base: b, fv: fv}
	r.applyStatic(b.Params.Get("room_size"), b.Params.Get("damping"), b.Params.Get("mix"))
	return r, nil
}

func (r *Reverb) applyStatic(roomSize, damping, mix float64) {
	r.fv.SetRoomSize(roomSize)
	r.fv.SetDamping(damping)
	r.fv.SetWetLevel(mix)
	r.fv.SetDryLevel(1 - mix)
}

func (r *Reverb) ProcessAudio(in []float32, out []float32, frames int) {
	r.SnapshotBlock()
	roomSize := r.Params.Next("room_size")
	damping := r.Params.Next("damping")
	mix := r.Params.Next("mix")
	r.applyStatic(roomSize, damping, mix)

	for i := 0; i < frames; i++ {
		l, rr := r.fv.ProcessStereo(in[i], in[i])
		out[i] = clampFinite((l + rr) * 0.5)
	}
	r.PublishMirror("mix", mix)
}

func init() {
	registry.Register("reverb", newReverb)
}
