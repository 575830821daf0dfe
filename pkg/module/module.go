// Package module defines the uniform contract every DSP unit in a patch
// implements: a capability-based interface where a module implements only
// the optional methods it needs, and the scheduler discovers them with a
// type assertion rather than a switch over a type tag.
package module

import "github.com/halvorsen-audio/patchrack/pkg/param"

// Size limits for one patch graph instance.
const (
	MaxInputs        = 512
	MaxControlInputs = 64
	MaxBlockSize     = 4096
	MaxModules       = 8192
)

// Module is the minimum every instance provides: identity within a patch.
type Module interface {
	// Alias is the patch-unique instance name.
	Alias() string
	// TypeName is the registry type tag this instance was created from.
	TypeName() string
}

// AudioProcessor is implemented by modules whose primary work function
// produces an audio-rate output. It must fully fill out for frames
// samples, frames <= MaxBlockSize.
type AudioProcessor interface {
	ProcessAudio(in []float32, out []float32, frames int)
}

// MultiAudioProcessor is implemented by modules that need their fan-in
// audio inputs individually, before the scheduler's uniform-gain mixdown
// collapses them to one buffer — e_recorder writes a separate WAV stem
// per input channel alongside the mixed take, and vocoder needs its
// modulator and carrier inputs kept distinct rather than averaged
// together. A node whose module implements this is exempt from the
// scheduler's automatic fan-in mix.
type MultiAudioProcessor interface {
	ProcessMultiAudio(ins [][]float32, out []float32, frames int)
}

// ControlProcessor is implemented by modules whose primary work function
// produces a control-rate (CV) output, or that need a per-block callback
// with no audio output of their own (e.g. a clock).
type ControlProcessor interface {
	ProcessControl(out []float32, frames int)
}

// ParamSetter is the uniform OSC/scripted/UI entry point. Implementations
// must be lock-safe and must not block.
type ParamSetter interface {
	SetParam(name string, value float64)
}

// UIDrawer renders the module's state at a given terminal cell origin.
// What it returns is opaque text; pkg/ui clears the screen and writes
// each returned line to the terminal, with no further layout or colors.
type UIDrawer interface {
	DrawUI(y, x int) string
}

// InputHandler drives the module's own normal/command-entry key state
// machine. Keys are broadcast to every module; a module not in
// command-entry mode should treat all but its nudge keys as a no-op.
type InputHandler interface {
	HandleInput(key rune)
}

// Destroyer tears down module-owned resources (writer goroutines, open
// files) beyond the generic audio/control buffers the graph already
// frees.
type Destroyer interface {
	Destroy()
}

// HasAudioOutput is implemented by modules that expose an audio output
// buffer for other modules' in= wiring.
type HasAudioOutput interface {
	AudioOutput() []float32
}

// HasControlOutput is implemented by modules that expose a control
// output buffer for other modules' cv= wiring, independent of whether
// they also implement ControlProcessor (a hybrid module may fill its
// control output from inside ProcessAudio).
type HasControlOutput interface {
	ControlOutput() []float32
}

// ParamHost exposes a module's parameter bundle so the parser can
// validate cv= target names against it (best-effort).
type ParamHost interface {
	Params() *param.Set
}

// CVReceiver accepts a resolved cv= wire before the scheduler calls the
// module's process function for the block, so the DSP inner loop can read
// the source buffer directly, sample-by-sample, instead of going through
// the block-rate parameter smoother: within a block, CV modulation is
// sample-accurate because CV buffers are read directly from the DSP
// inner loop. buf is nil to disconnect a previously wired param (e.g.
// between patch loads in a host that rebuilds graphs).
type CVReceiver interface {
	SetCVInput(param string, buf []float32)
}

// Factory builds one module instance from a parsed config string and the
// engine sample rate. Registered against a type name in pkg/registry.
type Factory func(alias string, config string, sampleRate float64) (Module, error)
