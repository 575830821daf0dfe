package modules

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/utility"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// RandomSource emits a new colored-noise sample at a configurable clock
// rate, mapped into [min, max] scaled by depth. Grounded on
// pkg/dsp/utility.NoiseGenerator for the white/pink/brown coloring; the
// rate-clock is a plain phase accumulator in the same style the clock
// modules use for their own gate timers.
type RandomSource struct {
	*module.Base

	noise      *utility.NoiseGenerator
	phase      float64
	sampleRate float64
	held       float32
}

func newRandomSource(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_random", sampleRate, 0.99, false, true, module.MaxBlockSize)
	b.Params.Declare("rate", 0.1, 1000, module.ConfigFloat(cfg, "rate", 4))
	b.Params.Declare("min", -1, 1, module.ConfigFloat(cfg, "min", 0))
	b.Params.Declare("max", -1, 1, module.ConfigFloat(cfg, "max", 1))
	b.Params.Declare("depth", 0, 1, module.ConfigFloat(cfg, "depth", 1))

	noiseType := utility.WhiteNoise
	switch module.ConfigString(cfg, "color", "white") {
	case "pink":
		noiseType = utility.PinkNoise
	case "brown":
		noiseType = utility.BrownNoise
	}

	return &RandomSource{
		Base:       b,
		noise:      utility.NewNoiseGenerator(noiseType),
		sampleRate: sampleRate,
	}, nil
}

func (r *RandomSource) ProcessControl(out []float32, frames int) {
	r.SnapshotBlock()
	rate := r.Params.Next("rate")
	lo := r.Params.Next("min")
	hi := r.Params.Next("max")
	depth := r.Params.Next("depth")
	phaseInc := rate / r.sampleRate

	for i := 0; i < frames; i++ {
		r.phase += phaseInc
		if r.phase >= 1.0 {
			r.phase -= math.Floor(r.phase)
			n := float64(r.noise.Next())
			mid := (hi + lo) / 2
			half := (hi - lo) / 2
			r.held = float32(mid + n*half*depth)
		}
		out[i] = clampFinite(r.held)
	}
	r.PublishMirror("rate", rate)
}

func init() {
	registry.Register("c_random", newRandomSource)
}
