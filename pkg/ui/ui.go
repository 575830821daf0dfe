// Package ui implements the terminal UI thread:
// it polls stdin at a ~100ms cadence and broadcasts each key to every
// module's HandleInput, then redraws each module's DrawUI line. Screen
// layout, color attributes, and keystroke-to-glyph mapping are explicitly
// out of scope here — this is a minimal, dependency-light renderer,
// not a curses replacement. The raw-mode, non-blocking syscall.Read loop
// feeds module.InputHandler.HandleInput instead of a simulated device.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"golang.org/x/term"
)

// Terminal drives the UI thread: raw-mode stdin reading, keystroke
// broadcast, and periodic redraw.
type Terminal struct {
	g   *graph.Graph
	out io.Writer

	fd           int
	oldState     *term.State
	nonblockSet  bool
	isTerminal   bool
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	tickInterval time.Duration
}

// New wraps a graph for interactive terminal control. out is the render
// target, normally os.Stdout.
func New(g *graph.Graph, out io.Writer) *Terminal {
	return &Terminal{
		g:            g,
		out:          out,
		fd:           int(os.Stdin.Fd()),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
		tickInterval: 100 * time.Millisecond,
	}
}

// Run puts stdin in raw mode and loops until Stop is called, polling for
// a key roughly every tickInterval and redrawing every module's line
// after each poll. When stdin is not a terminal (e.g. the patch itself
// was piped in and no tty remains), Run only redraws — keystrokes are
// unavailable and every module simply never receives HandleInput.
func (t *Terminal) Run() {
	defer close(t.done)

	if term.IsTerminal(t.fd) {
		oldState, err := term.MakeRaw(t.fd)
		if err == nil {
			t.oldState = oldState
			t.isTerminal = true
			if err := syscall.SetNonblock(t.fd, true); err == nil {
				t.nonblockSet = true
			}
		}
	}

	buf := make([]byte, 1)
	for {
		select {
		case <-t.stopCh:
			t.restore()
			return
		default:
		}

		if t.isTerminal && t.nonblockSet {
			n, err := syscall.Read(t.fd, buf)
			if n > 0 {
				key := translateKey(buf[0])
				t.broadcast(key)
			}
			if err != nil && err != syscall.EAGAIN && err != syscall.EWOULDBLOCK {
				t.restore()
				return
			}
		}

		t.redraw()
		time.Sleep(t.tickInterval)
	}
}

// translateKey maps raw-mode byte quirks to the characters module state
// machines expect: CR (Enter in raw mode) to LF, and DEL (modern
// terminals' Backspace) to BS.
func translateKey(b byte) rune {
	switch b {
	case '\r':
		return '\n'
	case 0x7F:
		return 0x08
	default:
		return rune(b)
	}
}

// broadcast forwards key to every module's HandleInput. Each module's
// own state machine decides whether the key is addressed to it.
func (t *Terminal) broadcast(key rune) {
	for _, n := range t.g.Nodes {
		if h, ok := n.Mod.(module.InputHandler); ok {
			h.HandleInput(key)
		}
	}
}

func (t *Terminal) redraw() {
	fmt.Fprint(t.out, "\x1b[H\x1b[2J")
	for i, n := range t.g.Nodes {
		if d, ok := n.Mod.(module.UIDrawer); ok {
			fmt.Fprintln(t.out, d.DrawUI(i, 0))
		}
	}
}

func (t *Terminal) restore() {
	if t.nonblockSet {
		_ = syscall.SetNonblock(t.fd, false)
		t.nonblockSet = false
	}
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
}

// Stop ends Run's polling loop and restores the terminal to its original
// (cooked) mode.
func (t *Terminal) Stop() {
	t.stopped.Do(func() {
		close(t.stopCh)
	})
	<-t.done
}
