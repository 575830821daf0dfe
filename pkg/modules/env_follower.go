package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/dsp/envelope"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// EnvFollower wraps pkg/dsp/envelope.Detector as c_env_fol: a
// control-rate envelope follower, tracking the peak level of an audio
// signal for use as a CV source elsewhere in a patch (e.g. driving a
// filter cutoff from a performer's playing dynamics).
type EnvFollower struct {
	*module.Base

	det *envelope.Detector
	in  []float32
}

func newEnvFollower(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_env_fol", sampleRate, 0.9, true, true, module.MaxBlockSize)
	b.Params.Declare("attack", 0.0001, 2.0, module.ConfigFloat(cfg, "attack", 0.001))
	b.Params.Declare("release", 0.0001, 2.0, module.ConfigFloat(cfg, "release", 0.1))

	return &EnvFollower{
		Base: b,
		det:  envelope.NewDetector(sampleRate),
		in:   make([]float32, module.MaxBlockSize),
	}, nil
}

// ProcessAudio is how this module receives an audio-rate signal to
// follow: wired via in= like any other audio consumer, even though its
// own output is control-rate (ProcessControl fills the control buffer
// from the values recorded here).
func (m *EnvFollower) ProcessAudio(in []float32, out []float32, frames int) {
	copy(m.in[:frames], in[:frames])
	for i := 0; i < frames; i++ {
		out[i] = 0
	}
}

func (m *EnvFollower) ProcessControl(out []float32, frames int) {
	m.SnapshotBlock()
	m.det.SetAttack(m.Params.Next("attack"))
	m.det.SetRelease(m.Params.Next("release"))
	for i := 0; i < frames; i++ {
		out[i] = m.det.Detect(m.in[i])
	}
}

func init() {
	registry.Register("c_env_fol", newEnvFollower)
}
