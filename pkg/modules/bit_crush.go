package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/distortion"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// BitCrush wraps pkg/dsp/distortion.BitCrusher as a lo-fi digital
// distortion module: bit-depth and sample-rate reduction with dry/wet
// mix, rounding out the filter/envelope/oscillator set with one of the
// effect types the module catalog otherwise lacks.
type BitCrush struct {
	*module.Base

	crusher *distortion.BitCrusher
}

func newBitCrush(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "bit_crush", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("bits", 1, 24, module.ConfigFloat(cfg, "bits", 16))
	b.Params.Declare("rate_ratio", 0.01, 1.0, module.ConfigFloat(cfg, "rate_ratio", 1.0))
	b.Params.Declare("mix", 0, 1, module.ConfigFloat(cfg, "mix", 1.0))

	return &BitCrush{
		Base:    b,
		crusher: distortion.NewBitCrusher(sampleRate),
	}, nil
}

func (m *BitCrush) ProcessAudio(in []float32, out []float32, frames int) {
	m.SnapshotBlock()
	bits := m.Params.Next("bits")
	ratio := m.Params.Next("rate_ratio")
	mix := m.Params.Next("mix")

	m.crusher.SetBitDepth(int(bits))
	m.crusher.SetSampleRateRatio(ratio)
	m.crusher.SetMix(mix)

	for i := 0; i < frames; i++ {
		if v, ok := m.CV("bits", i); ok {
			m.crusher.SetBitDepth(int(v))
		}
		if v, ok := m.CV("rate_ratio", i); ok {
			m.crusher.SetSampleRateRatio(v)
		}
		out[i] = clampFinite(float32(m.crusher.Process(float64(in[i]))))
	}
}

func init() {
	registry.Register("bit_crush", newBitCrush)
}
