package control

import (
	"fmt"
	"io"

	"github.com/halvorsen-audio/patchrack/pkg/midi"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// MIDIListener is the background thread that polls
// a MIDI input endpoint and writes every Control-Change message into the
// process-wide midi.CCTable, where c_midi_to_cv instances read it. A
// missing MIDI device is a degraded-and-continue condition,
// not fatal — NewMIDIListener logs and returns a listener whose Close is
// a no-op rather than an error when no input port is found.
type MIDIListener struct {
	stop func()
}

// NewMIDIListener opens the named MIDI input port (or the system default
// when name is ""), wiring its Control-Change traffic into
// midi.Global(). logOut receives the bound port name and any decode
// diagnostics.
func NewMIDIListener(name string, logOut io.Writer) *MIDIListener {
	in, err := findInPort(name)
	if err != nil {
		fmt.Fprintf(logOut, "midi: no input port available (%v); midi-to-cv modules will read zero\n", err)
		return &MIDIListener{stop: func() {}}
	}

	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		var ch, cc, val uint8
		if msg.GetControlChange(&ch, &cc, &val) {
			midi.Global().Write(ch, cc, val)
		}
	})
	if err != nil {
		fmt.Fprintf(logOut, "midi: failed to listen on %q (%v); midi-to-cv modules will read zero\n", in, err)
		return &MIDIListener{stop: func() {}}
	}

	fmt.Fprintf(logOut, "midi: listening on %q\n", in)
	return &MIDIListener{stop: stop}
}

// Close stops the listener goroutine, safe to call even when no device
// was found.
func (l *MIDIListener) Close() {
	if l.stop != nil {
		l.stop()
	}
}

func findInPort(name string) (gomidi.In, error) {
	if name != "" {
		return gomidi.FindInPort(name)
	}
	ins := gomidi.GetInPorts()
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI input ports found")
	}
	return ins[0], nil
}
