package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/filter"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// SVFFilter wraps pkg/dsp/filter.MultiModeSVF as a second filter
// character alongside moog_filter's four-pole ladder: a zero-delay-
// feedback state-variable topology morphing continuously between
// lowpass/bandpass/highpass/notch via "mode". The cutoff clamp uses the
// same bounds as moog_filter (`[10, 0.45*sample_rate]`); Q has its own
// range of 0.5 to 20, unlike moog_filter's 0 to 4.2 resonance. The
// multi-mode morph is additional behavior on top of that cutoff/Q shape.
type SVFFilter struct {
	*module.Base

	svf *filter.MultiModeSVF
}

func newSVFFilter(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "svf_filter", sampleRate, 0.99, true, false, module.MaxBlockSize)
	b.Params.Declare("cutoff", 10, 0.45*sampleRate, module.ConfigFloat(cfg, "cutoff", 1000))
	b.Params.Declare("q", 0.5, 20, module.ConfigFloat(cfg, "q", 0.707))
	b.Params.Declare("mode", 0, 1, module.ConfigFloat(cfg, "mode", 0))

	return &SVFFilter{
		Base: b,
		svf:  filter.NewMultiModeSVF(1),
	}, nil
}

// ProcessAudio copies in into out (MultiModeSVF.Process filters
// in-place) then applies the current cutoff/Q/mode, with per-sample CV
// on cutoff and mode.
func (f *SVFFilter) ProcessAudio(in []float32, out []float32, frames int) {
	f.SnapshotBlock()
	cutoff := f.Params.Next("cutoff")
	q := f.Params.Next("q")
	mode := f.Params.Next("mode")

	copy(out[:frames], in[:frames])
	for i := 0; i < frames; i++ {
		c := f.AtBlock("cutoff", cutoff, i)
		m := f.AtBlock("mode", mode, i)
		f.svf.SetFrequencyAndQ(f.SampleRate(), c, q)
		f.svf.SetMode(m)
		f.svf.Process(out[i:i+1], 0)
		out[i] = clampFinite(out[i])
	}
	f.PublishMirror("cutoff", cutoff)
}

func init() {
	registry.Register("svf_filter", newSVFFilter)
}
