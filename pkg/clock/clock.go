// Package clock implements the shared-clock protocol: a process-wide
// registry of Clock instances where the primary (the one patched with no
// control inputs) broadcasts BPM and run-state to every registered
// secondary, while each clock keeps its own multiplier, pulse width, and
// user-enable flag locally. Propagation holds the registry lock and,
// while holding it, takes each clock's own sync.Mutex in turn; Process
// holds a clock's mutex only to snapshot and publish state, never across
// its sample loop.
package clock

import (
	"math"
	"sync"
)

// MaxClocks bounds how many clocks the registry will track at once.
const MaxClocks = 64

// Clock is one shared-clock instance: a gate-pulse generator whose BPM
// and run-state may be driven locally (if primary) or by the registry
// (if secondary).
type Clock struct {
	mu sync.Mutex

	bpm  float64
	mult float64
	pw   float64

	lastGate   float32
	phase      float64
	sampleRate float64
	running    bool

	userEnable bool

	hasSync       bool // secondary: registered with >0 control inputs
	pendingResync bool
	lastSyncIn    float32

	displayBPM     float64
	displayMult    float64
	displayPW      float64
	displayRunning bool
}

// New creates a clock with the given starting BPM/mult/pw. hasSync marks
// the clock as a secondary (it will not drive its own BPM/run changes
// into the registry; it only follows). sampleRate is fixed for the
// clock's lifetime.
func New(bpm, mult, pw, sampleRate float64, hasSync bool) *Clock {
	return &Clock{
		bpm:            bpm,
		mult:           mult,
		pw:             pw,
		sampleRate:     sampleRate,
		running:        true,
		userEnable:     true,
		hasSync:        hasSync,
		displayBPM:     bpm,
		displayMult:    mult,
		displayPW:      pw,
		displayRunning: true,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (c *Clock) clampLocked() {
	c.bpm = clamp(c.bpm, 1.0, 1000.0)
	c.mult = clamp(c.mult, 0.0001, 128.0)
	c.pw = clamp(c.pw, 0.001, 0.999)
}

// SetHasSync marks whether this clock currently has a sync cv= wire
// attached, i.e. whether it is acting as a secondary. A patch line's
// wiring is static once parsed, but module construction happens before
// the parser has resolved cv= tokens against it, so the module wrapper
// calls this on first use rather than New.
func (c *Clock) SetHasSync(v bool) {
	c.mu.Lock()
	c.hasSync = v
	c.mu.Unlock()
}

// Process advances the clock by frames samples, writing a 0/1 gate into
// out. syncIn, when non-nil, is the primary gate feeding a secondary's
// resync edge detector: a pending resync fires on syncIn's next
// low-to-high edge, resetting phase to 0.
func (c *Clock) Process(out []float32, syncIn []float32, frames int) {
	c.mu.Lock()
	bpm, mult, pw := c.bpm, c.mult, c.pw
	running, userEnable := c.running, c.userEnable
	phase, sr := c.phase, c.sampleRate
	pendingResync, lastSyncIn := c.pendingResync, c.lastSyncIn
	c.mu.Unlock()

	effectiveRunning := running
	if c.hasSync {
		effectiveRunning = running && userEnable
	}

	if !running {
		for i := 0; i < frames; i++ {
			out[i] = 0
		}
		c.publish(phase, 0, bpm, mult, pw, false, pendingResync, lastSyncIn)
		return
	}

	if c.hasSync && !userEnable {
		// Muted secondary: track phase against the primary pulse so a
		// later re-enable picks up in sync, but emit no gate.
		freq := bpm / 60.0 * mult
		phaseInc := freq / sr
		for i := 0; i < frames; i++ {
			if syncIn != nil && i < len(syncIn) {
				sIn := syncIn[i]
				if pendingResync && lastSyncIn <= 0.5 && sIn > 0.5 {
					phase = 0
					pendingResync = false
				}
				lastSyncIn = sIn
			}
			phase += phaseInc
			if phase >= 1.0 {
				phase -= math.Floor(phase)
			}
			out[i] = 0
		}
		c.publish(phase, 0, bpm, mult, pw, false, pendingResync, lastSyncIn)
		return
	}

	freq := bpm / 60.0 * mult
	if freq <= 0 {
		for i := 0; i < frames; i++ {
			out[i] = 0
		}
		c.publish(phase, 0, bpm, mult, pw, effectiveRunning, pendingResync, lastSyncIn)
		return
	}

	phaseInc := freq / sr
	var lastGate float32
	for i := 0; i < frames; i++ {
		if c.hasSync && syncIn != nil && i < len(syncIn) {
			sIn := syncIn[i]
			if pendingResync && lastSyncIn <= 0.5 && sIn > 0.5 {
				phase = 0
				pendingResync = false
			}
			lastSyncIn = sIn
		}
		phase += phaseInc
		if phase >= 1.0 {
			phase -= math.Floor(phase)
		}
		gate := float32(0)
		if phase < pw {
			gate = 1
		}
		out[i] = gate
		lastGate = gate
	}
	c.publish(phase, lastGate, bpm, mult, pw, effectiveRunning, pendingResync, lastSyncIn)
}

func (c *Clock) publish(phase float64, lastGate float32, bpm, mult, pw float64, displayRunning bool, pendingResync bool, lastSyncIn float32) {
	c.mu.Lock()
	c.phase = phase
	c.lastGate = lastGate
	c.displayBPM = bpm
	c.displayMult = mult
	c.displayPW = pw
	c.displayRunning = displayRunning
	c.pendingResync = pendingResync
	c.lastSyncIn = lastSyncIn
	c.mu.Unlock()
}

// Nudge applies a relative or absolute change from a keystroke or OSC
// command. What counts as legal depends on whether this clock is a
// primary (hasSync false): only primaries may change bpm/running through
// the shared propagation path; secondaries treat "run" as their local
// user_enable instead.
type Nudge struct {
	BPMDelta   float64
	MultScale  float64
	PWDelta    float64
	ToggleRun  bool
	SetBPM     *float64
	SetMult    *float64
	SetPW      *float64
	SetRunning *bool
	SetEnable  *bool
}

// Apply mutates local state per n and reports whether a BPM or run change
// needs to propagate to the rest of the registry (only possible for a
// primary, i.e. hasSync == false).
func (c *Clock) Apply(n Nudge) (propagateBPM bool, newBPM float64, propagateRun bool, newRunning bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n.BPMDelta != 0 && !c.hasSync {
		c.bpm += n.BPMDelta
		propagateBPM = true
	}
	if n.SetBPM != nil && !c.hasSync {
		c.bpm = *n.SetBPM
		propagateBPM = true
	}
	if n.MultScale != 0 {
		c.mult *= n.MultScale
		if c.hasSync {
			c.pendingResync = true
		}
	}
	if n.SetMult != nil {
		c.mult = *n.SetMult
		if c.hasSync {
			c.pendingResync = true
		}
	}
	if n.PWDelta != 0 {
		c.pw += n.PWDelta
	}
	if n.SetPW != nil {
		c.pw = *n.SetPW
	}
	if n.ToggleRun {
		if c.hasSync {
			c.userEnable = !c.userEnable
		} else {
			c.running = !c.running
			propagateRun = true
		}
	}
	if n.SetRunning != nil {
		if c.hasSync {
			c.userEnable = *n.SetRunning
		} else {
			c.running = *n.SetRunning
			propagateRun = true
		}
	}
	if n.SetEnable != nil {
		c.userEnable = *n.SetEnable
	}

	c.clampLocked()
	newBPM = c.bpm
	newRunning = c.running
	return
}

// Display returns the values the UI and OSC mirror show.
func (c *Clock) Display() (bpm, mult, pw float64, gate float32, running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.displayBPM, c.displayMult, c.displayPW, c.lastGate, c.displayRunning
}

// setBPM and setRunning apply a registry-driven propagation directly,
// bypassing the propagate/clamp path in Apply (the registry already
// clamped via the originating primary's Apply call).
func (c *Clock) setBPM(bpm float64) {
	c.mu.Lock()
	c.bpm = bpm
	c.displayBPM = bpm
	c.phase = 0
	c.lastGate = 0
	c.mu.Unlock()
}

func (c *Clock) setRunning(running bool) {
	c.mu.Lock()
	c.running = running
	c.displayRunning = running && c.userEnable
	c.phase = 0
	c.lastGate = 0
	c.mu.Unlock()
}

// Registry is the process-wide set of registered clocks that BPM/run
// propagation broadcasts to.
type Registry struct {
	mu     sync.Mutex
	clocks []*Clock
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds c to the registry, up to MaxClocks; beyond that the
// clock simply never receives propagated BPM/run changes — registration
// fails silently rather than erroring.
func (r *Registry) Register(c *Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.clocks) < MaxClocks {
		r.clocks = append(r.clocks, c)
	}
}

// Unregister removes c from the registry.
func (r *Registry) Unregister(c *Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.clocks {
		if e == c {
			r.clocks = append(r.clocks[:i], r.clocks[i+1:]...)
			return
		}
	}
}

// PropagateBPM resets every registered clock's phase and adopts the new
// BPM.
func (r *Registry) PropagateBPM(bpm float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clocks {
		c.setBPM(bpm)
	}
}

// PropagateRun resets every registered clock's phase and adopts the new
// run state.
func (r *Registry) PropagateRun(running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clocks {
		c.setRunning(running)
	}
}

var global = NewRegistry()

// Global returns the process-wide clock registry every c_clock /
// c_clock_u / c_clock_s module instance registers itself with.
func Global() *Registry { return global }
