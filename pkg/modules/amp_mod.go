package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/modulation"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// AmpMod wraps pkg/dsp/modulation.RingModulator: a carrier-oscillator
// ring/amplitude modulator with an optional LFO-modulated carrier
// frequency, rounding out the module catalog's effects the same way
// bit_crush does for distortion.
type AmpMod struct {
	*module.Base

	rm *modulation.RingModulator
}

func newAmpMod(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "amp_mod", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("freq", 0.1, sampleRate/2, module.ConfigFloat(cfg, "freq", 440))
	b.Params.Declare("mix", 0, 1, module.ConfigFloat(cfg, "mix", 0.5))

	rm := modulation.NewRingModulator(sampleRate)
	rm.SetWaveform(waveformFromName(module.ConfigString(cfg, "wave", "sine")))

	return &AmpMod{Base: b, rm: rm}, nil
}

func (m *AmpMod) ProcessAudio(in []float32, out []float32, frames int) {
	m.SnapshotBlock()
	freq := m.Params.Next("freq")
	mix := m.Params.Next("mix")
	m.rm.SetFrequency(freq)
	m.rm.SetMix(mix)

	for i := 0; i < frames; i++ {
		if v, ok := m.CV("freq", i); ok {
			m.rm.SetFrequency(v)
		}
		if v, ok := m.CV("mix", i); ok {
			m.rm.SetMix(v)
		}
		out[i] = clampFinite(m.rm.Process(in[i]))
	}
}

func init() {
	registry.Register("amp_mod", newAmpMod)
}
