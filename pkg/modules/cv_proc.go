package modules

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// CVProc implements c_cv_proc, a general-purpose CV utility: scale,
// offset, clamp to [lo, hi], and optional quantization to a step size.
// It fills the same "utility" module slot modular patching tools carry,
// grounded in the same Base.CV/AtBlock sample-accurate pattern every
// other control module here uses.
type CVProc struct {
	*module.Base
}

func newCVProc(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_cv_proc", sampleRate, 0.9, false, true, module.MaxBlockSize)
	b.Params.Declare("in", -10, 10, 0)
	b.Params.Declare("scale", -100, 100, module.ConfigFloat(cfg, "scale", 1))
	b.Params.Declare("offset", -10, 10, module.ConfigFloat(cfg, "offset", 0))
	b.Params.Declare("lo", -10, 10, module.ConfigFloat(cfg, "lo", -10))
	b.Params.Declare("hi", -10, 10, module.ConfigFloat(cfg, "hi", 10))
	b.Params.Declare("quantize", 0, 10, module.ConfigFloat(cfg, "quantize", 0))
	return &CVProc{Base: b}, nil
}

func (c *CVProc) ProcessControl(out []float32, frames int) {
	c.SnapshotBlock()
	scale := c.Params.Next("scale")
	offset := c.Params.Next("offset")
	lo := c.Params.Next("lo")
	hi := c.Params.Next("hi")
	quant := c.Params.Next("quantize")
	staticIn := c.Params.Next("in")

	if lo > hi {
		lo, hi = hi, lo
	}

	for i := 0; i < frames; i++ {
		v := c.AtBlock("in", staticIn, i)
		v = v*scale + offset
		if quant > 0 {
			v = math.Round(v/quant) * quant
		}
		if v < lo {
			v = lo
		} else if v > hi {
			v = hi
		}
		out[i] = clampFinite(float32(v))
	}
}

func init() {
	registry.Register("c_cv_proc", newCVProc)
}
