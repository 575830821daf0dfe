package module

import (
	"sync"

	"github.com/halvorsen-audio/patchrack/pkg/param"
)

// Base is embedded by concrete module implementations. It owns the
// per-module lock, the parameter bundle, and the pre-allocated audio and
// control output buffers — everything invariants say must live
// for the module's full lifetime. Concrete modules add their own DSP
// state and implement whichever of the capability interfaces in module.go
// they need; they must never hold Base.mu across an inner DSP loop.
type Base struct {
	mu sync.Mutex

	alias      string
	typeName   string
	sampleRate float64

	Params *param.Set

	audioOut   []float32
	controlOut []float32

	cv map[string][]float32
}

// NewBase allocates a module's fixed-lifetime state. blockSmoothingRate is
// forwarded to param.NewSet; pass 0 to disable block-rate smoothing
// (control-only modules with no UI/OSC-facing parameters sometimes do).
func NewBase(alias, typeName string, sampleRate float64, blockSmoothingRate float64, hasAudioOut, hasControlOut bool, maxBlockSize int) *Base {
	b := &Base{
		alias:      alias,
		typeName:   typeName,
		sampleRate: sampleRate,
		Params:     param.NewSet(blockSmoothingRate),
	}
	if hasAudioOut {
		b.audioOut = make([]float32, maxBlockSize)
	}
	if hasControlOut {
		b.controlOut = make([]float32, maxBlockSize)
	}
	return b
}

func (b *Base) Alias() string        { return b.alias }
func (b *Base) TypeName() string      { return b.typeName }
func (b *Base) SampleRate() float64   { return b.sampleRate }
func (b *Base) AudioOutput() []float32 {
	return b.audioOut
}
func (b *Base) ControlOutput() []float32 {
	return b.controlOut
}

// SetParam is the default lock-safe implementation of ParamSetter;
// concrete modules can call this directly from their own SetParam when
// no extra translation (e.g. normalized-to-Hz mapping) is needed.
func (b *Base) SetParam(name string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Params.Set(name, value)
}

// Lock/Unlock expose the module's single lock to concrete implementations
// that need finer control than SetParam/Snapshot (e.g. the clock modules
// applying a propagated BPM alongside their own fields).
func (b *Base) Lock()   { b.mu.Lock() }
func (b *Base) Unlock() { b.mu.Unlock() }

// SnapshotBlock takes the lock for the minimum time needed to push
// authoritative parameter values into their smoothers, returning nothing:
// callers read smoothed values afterward via Params.Next, unlocked.
func (b *Base) SnapshotBlock() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Params.SnapshotBlock()
}

// PublishMirror records a parameter's last effective value for the UI,
// taking the lock briefly. Call after unlocked DSP work completes.
func (b *Base) PublishMirror(name string, value float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Params.PublishMirror(name, value)
}

// Mirror reads a parameter's last published effective value.
func (b *Base) Mirror(name string) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.Params.Mirror(name)
}

// SetCVInput implements CVReceiver: the scheduler calls this once per
// block, before invoking the module's process function, for every cv=
// wire targeting this instance.
func (b *Base) SetCVInput(param string, buf []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cv == nil {
		b.cv = make(map[string][]float32)
	}
	if buf == nil {
		delete(b.cv, param)
		return
	}
	b.cv[param] = buf
}

// RawCV returns the full wired buffer for a cv= input, unclamped, for
// modules that need the raw signal (e.g. a clock reading a sync gate's
// exact 0/1 edges rather than a range-clamped copy).
func (b *Base) RawCV(name string) ([]float32, bool) {
	buf, ok := b.cv[name]
	return buf, ok
}

// CV returns the i'th sample of a wired cv= input for name, clamped to
// the parameter's declared range, and true if one is connected this
// block. A disconnected parameter should fall back to
// Params.Next(name), the smoothed block-rate value.
func (b *Base) CV(name string, i int) (float64, bool) {
	buf, ok := b.cv[name]
	if !ok || i >= len(buf) {
		return 0, false
	}
	return b.Params.Clamp(name, float64(buf[i])), true
}

// AtBlock reads the i'th sample of name's cv input if connected,
// otherwise the block-smoothed parameter value. Convenience wrapper
// around CV + Params.Next for the common case.
func (b *Base) AtBlock(name string, smoothed float64, i int) float64 {
	if v, ok := b.CV(name, i); ok {
		return v
	}
	return smoothed
}
