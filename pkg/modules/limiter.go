package modules

import (
	"fmt"

	"github.com/halvorsen-audio/patchrack/pkg/dsp/dynamics"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// Limiter wraps pkg/dsp/dynamics.Limiter as a brick-wall ceiling module,
// completing the dynamics trio alongside compressor (feed-forward ratio
// compression) and c_env_fol (CV extraction): same grounding source,
// same per-sample Process idiom, rounding out the module catalog.
type Limiter struct {
	*module.Base

	lim *dynamics.Limiter
}

func newLimiter(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "limiter", sampleRate, 0.9, true, false, module.MaxBlockSize)
	b.Params.Declare("ceiling", -24, 0, module.ConfigFloat(cfg, "ceiling", -0.3))
	b.Params.Declare("release", 0.001, 1, module.ConfigFloat(cfg, "release", 0.05))
	b.Params.Declare("lookahead", 0, 0.01, module.ConfigFloat(cfg, "lookahead", 0.005))

	l := &Limiter{
		Base: b,
		lim:  dynamics.NewLimiter(sampleRate),
	}
	l.applyFrom(b.Params.Get("ceiling"), b.Params.Get("release"), b.Params.Get("lookahead"))
	return l, nil
}

func (l *Limiter) applyFrom(ceiling, release, lookahead float64) {
	l.lim.SetThreshold(ceiling)
	l.lim.SetRelease(release)
	l.lim.SetLookahead(lookahead)
}

// ProcessAudio accounts for the limiter's internal lookahead delay line:
// output lags input by lim.Process's own buffering, same as when the
// underlying Limiter is used standalone.
func (l *Limiter) ProcessAudio(in []float32, out []float32, frames int) {
	l.SnapshotBlock()
	ceiling := l.Params.Next("ceiling")
	release := l.Params.Next("release")
	lookahead := l.Params.Next("lookahead")
	l.applyFrom(ceiling, release, lookahead)

	for i := 0; i < frames; i++ {
		if v, ok := l.CV("ceiling", i); ok {
			l.lim.SetThreshold(v)
		}
		out[i] = clampFinite(l.lim.Process(in[i]))
	}

	l.PublishMirror("ceiling", ceiling)
}

// DrawUI shows the live gain-reduction reading, the brick-wall's own
// reduction meter.
func (l *Limiter) DrawUI(y, x int) string {
	return fmt.Sprintf("[limiter:%s] GR: %5.1f dB", l.Alias(), l.lim.GainReductionDB())
}

func init() {
	registry.Register("limiter", newLimiter)
}
