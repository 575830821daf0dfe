package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/modulation"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// LFOModule is a low-frequency control source with a waveform selector
// and bipolar/unipolar polarity, grounded directly on
// pkg/dsp/modulation.LFO.
type LFOModule struct {
	*module.Base

	lfo      *modulation.LFO
	unipolar bool
}

func newLFOModule(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_lfo", sampleRate, 0.99, false, true, module.MaxBlockSize)
	b.Params.Declare("rate", 0.01, 20, module.ConfigFloat(cfg, "rate", 1))
	b.Params.Declare("depth", 0, 1, module.ConfigFloat(cfg, "depth", 1))

	l := modulation.NewLFO(sampleRate)
	l.SetWaveform(waveformFromName(module.ConfigString(cfg, "wave", "sine")))
	l.SetFrequency(b.Params.Get("rate"))
	l.SetDepth(b.Params.Get("depth"))

	return &LFOModule{
		Base:     b,
		lfo:      l,
		unipolar: module.ConfigString(cfg, "polarity", "bipolar") == "unipolar",
	}, nil
}

func waveformFromName(name string) modulation.Waveform {
	switch name {
	case "triangle", "tri":
		return modulation.WaveformTriangle
	case "square", "sq":
		return modulation.WaveformSquare
	case "saw", "sawtooth":
		return modulation.WaveformSawtooth
	case "random", "sh":
		return modulation.WaveformRandom
	default:
		return modulation.WaveformSine
	}
}

func (l *LFOModule) ProcessControl(out []float32, frames int) {
	l.SnapshotBlock()
	rate := l.Params.Next("rate")
	depth := l.Params.Next("depth")
	l.lfo.SetFrequency(rate)
	l.lfo.SetDepth(depth)

	for i := 0; i < frames; i++ {
		v := l.lfo.Process()
		if l.unipolar {
			v = (v + 1.0) / 2.0
		}
		out[i] = clampFinite(float32(v))
	}
	l.PublishMirror("rate", rate)
}

func init() {
	registry.Register("c_lfo", newLFOModule)
}
