package modules

import (
	"math"

	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// SampleAndHold outputs its last-held input sample, re-triggered either
// by an internal phase-timer or by the rising edge of a "trig" cv input
// when one is patched. The held value tracks a control input named "in"
// (wired via cv=) the same way every other cv target is addressed.
type SampleAndHold struct {
	*module.Base

	phase      float64
	sampleRate float64
	lastTrig   float32
	held       float32
}

func newSampleAndHold(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_sh", sampleRate, 0.99, false, true, module.MaxBlockSize)
	b.Params.Declare("rate", 0.1, 1000, module.ConfigFloat(cfg, "rate", 4))
	b.Params.Declare("in", -1, 1, 0)
	b.Params.Declare("trig", 0, 1, 0)
	return &SampleAndHold{Base: b, sampleRate: sampleRate}, nil
}

func (s *SampleAndHold) ProcessControl(out []float32, frames int) {
	s.SnapshotBlock()
	rate := s.Params.Next("rate")
	phaseInc := rate / s.sampleRate
	_, hasTrig := s.CV("trig", 0)

	for i := 0; i < frames; i++ {
		in, _ := s.CV("in", i)

		var triggered bool
		if hasTrig {
			trig, _ := s.CV("trig", i)
			tf := float32(trig)
			triggered = tf > 0.5 && s.lastTrig <= 0.5
			s.lastTrig = tf
		} else {
			s.phase += phaseInc
			if s.phase >= 1.0 {
				s.phase -= math.Floor(s.phase)
				triggered = true
			}
		}

		if triggered {
			s.held = float32(in)
		}
		out[i] = clampFinite(s.held)
	}
	s.PublishMirror("rate", rate)
}

func init() {
	registry.Register("c_sh", newSampleAndHold)
}
