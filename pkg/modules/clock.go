package modules

import (
	"fmt"

	"github.com/halvorsen-audio/patchrack/pkg/clock"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// ClockModule wraps a pkg/clock.Clock as a patch module implementing
// shared-clock protocol: primary (no "sync" cv wire) versus
// secondary role is detected lazily from whether a cv= wire targets
// "sync", since module construction happens before the parser resolves
// cv= wiring.
type ClockModule struct {
	*module.Base

	clk         *clock.Clock
	roleChecked bool
}

func newClockModule(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_clock", sampleRate, 0, true, true, module.MaxBlockSize)
	bpm := module.ConfigFloat(cfg, "bpm", 120)
	mult := module.ConfigFloat(cfg, "mult", 1)
	pw := module.ConfigFloat(cfg, "pw", 0.5)

	c := &ClockModule{
		Base: b,
		clk:  clock.New(bpm, mult, pw, sampleRate, false),
	}
	clock.Global().Register(c.clk)
	return c, nil
}

// ProcessControl advances the clock, writing its gate to both the
// control output (for cv= fan-out to other modules) and, since clocks
// have no audio input of their own, nowhere else.
func (c *ClockModule) ProcessControl(out []float32, frames int) {
	if !c.roleChecked {
		_, hasSync := c.CV("sync", 0)
		c.clk.SetHasSync(hasSync)
		c.roleChecked = true
	}

	syncBuf, _ := c.RawCV("sync")
	c.clk.Process(out, syncBuf, frames)
}

// HandleInput implements the clock's keystroke mini-language: -/= bpm
// (primary only), _/+ mult, [/] pulse width, SPACE run/stop (or local
// enable on a secondary).
func (c *ClockModule) HandleInput(key rune) {
	var n clock.Nudge
	switch key {
	case '-':
		n.BPMDelta = -1
	case '=':
		n.BPMDelta = 1
	case '_':
		n.MultScale = 0.5
	case '+':
		n.MultScale = 2
	case '[':
		n.PWDelta = -0.01
	case ']':
		n.PWDelta = 0.01
	case ' ':
		n.ToggleRun = true
	default:
		return
	}
	propBPM, newBPM, propRun, newRunning := c.clk.Apply(n)
	if propBPM {
		clock.Global().PropagateBPM(newBPM)
	}
	if propRun {
		clock.Global().PropagateRun(newRunning)
	}
}

// SetParam maps "bpm"/"mult"/"pw"/"run" OSC addresses onto the clock's
// Nudge interface, propagating bpm/run changes the same way a keystroke
// does.
func (c *ClockModule) SetParam(name string, value float64) {
	var n clock.Nudge
	switch name {
	case "bpm":
		n.SetBPM = &value
	case "mult":
		n.SetMult = &value
	case "pw":
		n.SetPW = &value
	case "run":
		running := value > 0.5
		n.SetRunning = &running
	default:
		return
	}
	propBPM, newBPM, propRun, newRunning := c.clk.Apply(n)
	if propBPM {
		clock.Global().PropagateBPM(newBPM)
	}
	if propRun {
		clock.Global().PropagateRun(newRunning)
	}
}

// DrawUI renders bpm/mult/pw/gate/run state for the terminal UI.
func (c *ClockModule) DrawUI(y, x int) string {
	bpm, mult, pw, gate, running := c.clk.Display()
	runStr := "off"
	if running {
		runStr = "on"
	}
	return fmt.Sprintf("[CLK:%s] bpm: %.1f | mult: %.2f | pw: %.2f | gate: %d | run: %s",
		c.Alias(), bpm, mult, pw, int(gate), runStr)
}

// Destroy unregisters this clock from the shared registry.
func (c *ClockModule) Destroy() {
	clock.Global().Unregister(c.clk)
}

func init() {
	registry.Register("c_clock", newClockModule)
	registry.Register("c_clock_s", newClockModule)
	registry.Register("c_clock_u", newClockModule)
}
