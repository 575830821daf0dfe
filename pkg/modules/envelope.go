package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/envelope"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// EnvelopeGenerator is the ADSR/AR function generator, gate-driven:
// rising gate enters attack, reaching 1 enters decay and then sustain
// (or release directly, in AR mode), falling gate enters release.
// Grounded directly on pkg/dsp/envelope.ADSR, whose Stage machine already
// matches this description; "ar" mode is layered on top by skipping
// decay and sustain.
type EnvelopeGenerator struct {
	*module.Base

	env      *envelope.ADSR
	arMode   bool
	lastGate float32
}

func newEnvelopeGenerator(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_function", sampleRate, 0.99, false, true, module.MaxBlockSize)
	b.Params.Declare("attack", 0.01, 20, module.ConfigFloat(cfg, "attack", 0.01))
	b.Params.Declare("decay", 0.01, 20, module.ConfigFloat(cfg, "decay", 0.1))
	b.Params.Declare("sustain", 0, 1, module.ConfigFloat(cfg, "sustain", 0.7))
	b.Params.Declare("release", 0.01, 20, module.ConfigFloat(cfg, "release", 0.3))
	b.Params.Declare("gate", 0, 1, 0)

	e := envelope.New(sampleRate)
	g := &EnvelopeGenerator{
		Base:   b,
		env:    e,
		arMode: module.ConfigString(cfg, "mode", "adsr") == "ar",
	}
	g.applyTimes()
	return g, nil
}

func (g *EnvelopeGenerator) applyTimes() {
	g.env.SetADSR(
		g.Params.Get("attack"),
		g.Params.Get("decay"),
		g.Params.Get("sustain"),
		g.Params.Get("release"),
	)
}

// ProcessControl reads the "gate" cv input sample-accurately: a rising
// edge enters attack, a falling edge enters release. In AR mode the
// envelope also enters release as soon as attack reaches 1, skipping
// decay and sustain. A module with no gate wire never triggers — gate
// defaults to 0.
func (g *EnvelopeGenerator) ProcessControl(out []float32, frames int) {
	g.Lock()
	g.applyTimes()
	staticGate := g.Params.Get("gate")
	g.Unlock()

	lastGate := g.lastGate
	for i := 0; i < frames; i++ {
		var gf float32
		if v, ok := g.CV("gate", i); ok {
			gf = float32(v)
		} else {
			gf = float32(staticGate)
		}

		rising := gf > 0.5 && lastGate <= 0.5
		falling := gf <= 0.5 && lastGate > 0.5
		if rising {
			g.env.Trigger()
		}
		if falling {
			g.env.Release()
		}
		if stage := g.env.GetStage(); g.arMode && (stage == envelope.StageDecay || stage == envelope.StageSustain) {
			g.env.Release()
		}

		out[i] = clampFinite(g.env.Next())
		lastGate = gf
	}
	g.lastGate = lastGate
	g.PublishMirror("gate", float64(lastGate))
}

func init() {
	registry.Register("c_function", newEnvelopeGenerator)
	b := newEnvelopeGenerator
	registry.Register("envelope", b)
}
