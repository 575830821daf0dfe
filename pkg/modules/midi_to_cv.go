package modules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halvorsen-audio/patchrack/pkg/midi"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/param"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

// MidiToCV implements c_midi_to_cv: a control source that reads one CC
// number off the process-wide midi.CCTable (cc<32 merged 14-bit with its
// cc+32 LSB pair, else raw 7-bit), per-sample one-pole smoothed, filtered
// by an optional fixed MIDI channel. A static file-scope smoother becomes
// a *param.Smoother field here, and the ":1 chan" / ":2 cc" command-entry
// mini-language is reproduced in HandleInput.
type MidiToCV struct {
	*module.Base

	cc   int
	channel int

	smooth *param.Smoother
	lastVal float32

	enteringCommand bool
	cmdBuf          strings.Builder
}

func newMidiToCV(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_midi_to_cv", sampleRate, 0, false, true, module.MaxBlockSize)

	cc := clampInt(int(module.ConfigFloat(cfg, "cc", 1)), 0, 127)
	chanN := clampInt(int(module.ConfigFloat(cfg, "chan", 0)), 0, 16)

	return &MidiToCV{
		Base:    b,
		cc:      cc,
		channel: chanN,
		smooth:  param.NewSmoother(param.ExponentialSmoothing, 0.15),
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *MidiToCV) ProcessControl(out []float32, frames int) {
	table := midi.Global()

	var v float32
	if table.MatchesChannel(uint8(m.channel)) {
		v = table.Value(uint8(m.cc))
	}

	for i := 0; i < frames; i++ {
		m.smooth.SetTarget(float64(v))
		sm := float32(m.smooth.Next())
		out[i] = sm
		m.lastVal = sm
	}
}

// HandleInput reproduces the ":1 <chan>" / ":2 <cc>" command-entry
// mini-language.
func (m *MidiToCV) HandleInput(key rune) {
	if !m.enteringCommand {
		if key == ':' {
			m.enteringCommand = true
			m.cmdBuf.Reset()
		}
		return
	}

	switch {
	case key == '\n':
		m.enteringCommand = false
		m.applyCommand(m.cmdBuf.String())
	case key == 27: // ESC
		m.enteringCommand = false
	case key == 127 || key == 8: // backspace
		s := m.cmdBuf.String()
		if len(s) > 0 {
			m.cmdBuf.Reset()
			m.cmdBuf.WriteString(s[:len(s)-1])
		}
	case key >= 32 && key < 127:
		m.cmdBuf.WriteRune(key)
	}
}

func (m *MidiToCV) applyCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) != 2 {
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return
	}
	switch fields[0] {
	case "1":
		m.channel = clampInt(n, 0, 16)
	case "2":
		m.cc = clampInt(n, 0, 127)
	}
}

func (m *MidiToCV) DrawUI(y, x int) string {
	return fmt.Sprintf("[c_midi_to_cv:%s] chan: %d | cc: %d | val: %.3f | Command mode: :1 [chan#] :2 [cc#]",
		m.Alias(), m.channel, m.cc, m.lastVal)
}

func init() {
	registry.Register("c_midi_to_cv", newMidiToCV)
}
