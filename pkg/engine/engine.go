// Package engine is the top-level driver: it opens an audio stream,
// wires the scheduler's Process callback to it, and starts/stops the
// control-plane threads (OSC, MIDI, terminal UI) around it. Built on
// portaudio's OpenDefaultStream/Start/Stop/Terminate lifecycle, driving
// a mono full-duplex stream through a parsed patch graph.
package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/gordonklaus/portaudio"
	"github.com/halvorsen-audio/patchrack/pkg/control"
	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/scheduler"
	"github.com/halvorsen-audio/patchrack/pkg/ui"
)

// Options configures Engine construction.
type Options struct {
	// OSCBasePort is the first UDP port NewOSCServer tries.
	OSCBasePort int
	// MIDIPortName selects a MIDI input by name; "" uses the system
	// default (degraded-and-continue if none found).
	MIDIPortName string
	// Interactive enables the terminal UI thread. Disable for headless
	// / scripted runs (e.g. tests) where no tty is available.
	Interactive bool
	// Log receives startup/shutdown diagnostics; normally os.Stderr.
	Log io.Writer
}

// Engine owns the running audio stream and the control-plane threads
// layered around one patch graph.
type Engine struct {
	g    *graph.Graph
	sch  *scheduler.Scheduler
	opts Options

	stream *portaudio.Stream
	osc    *control.OSCServer
	midi   *control.MIDIListener
	term   *ui.Terminal

	scratchIn []float32
}

// New wires a parsed graph to a scheduler; the audio stream itself is
// not opened until Start.
func New(g *graph.Graph, opts Options) *Engine {
	if opts.Log == nil {
		opts.Log = io.Discard
	}
	if opts.OSCBasePort == 0 {
		opts.OSCBasePort = 9000
	}
	return &Engine{
		g:    g,
		sch:  scheduler.New(g),
		opts: opts,
	}
}

// Start opens the audio device, begins the callback, and launches the
// OSC, MIDI, and (if Options.Interactive) terminal UI threads. A failure
// to open the audio device is fatal; OSC/MIDI failures are not — they
// degrade to "no listener" and Start still returns nil.
func (e *Engine) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("engine: portaudio init: %w", err)
	}

	frames := e.g.MaxBlockSize
	e.scratchIn = make([]float32, frames)

	stream, err := portaudio.OpenDefaultStream(
		1, 1, // mono in, mono out
		e.g.SampleRate,
		frames,
		e.callback,
	)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("engine: open audio stream: %w", err)
	}
	e.stream = stream
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("engine: start audio stream: %w", err)
	}

	if srv, err := control.NewOSCServer(e.g, e.opts.OSCBasePort, e.opts.Log); err != nil {
		fmt.Fprintf(e.opts.Log, "engine: osc server unavailable: %v\n", err)
	} else {
		e.osc = srv
		go e.osc.Serve()
	}

	e.midi = control.NewMIDIListener(e.opts.MIDIPortName, e.opts.Log)

	if e.opts.Interactive {
		e.term = ui.New(e.g, os.Stdout)
		go e.term.Run()
	}

	return nil
}

// callback is the portaudio stream function: one audio block through the
// scheduler, in to out, every time portaudio wants more samples.
func (e *Engine) callback(in, out []float32) {
	frames := len(out)
	if frames > len(e.scratchIn) {
		frames = len(e.scratchIn)
	}
	copy(e.scratchIn, in[:frames])
	e.sch.Process(e.scratchIn[:frames], out[:frames], frames)
}

// Stop tears down threads and the audio stream in reverse of Start's
// startup order, then destroys the graph's modules: the audio stream is
// stopped before module teardown so no in-flight callback can dereference
// a destroyed module.
func (e *Engine) Stop() {
	if e.term != nil {
		e.term.Stop()
	}
	if e.midi != nil {
		e.midi.Close()
	}
	if e.osc != nil {
		_ = e.osc.Close()
	}
	if e.stream != nil {
		_ = e.stream.Stop()
		_ = e.stream.Close()
	}
	portaudio.Terminate()
	e.g.Destroy()
}

// HasAudioProducer reports whether any module in the graph can produce
// audio output. Callers check this before Start opens a stream and bail
// out early when a patch has nothing to drive the speakers.
func HasAudioProducer(g *graph.Graph) bool {
	for _, n := range g.Nodes {
		if out, ok := n.Mod.(module.HasAudioOutput); ok && out.AudioOutput() != nil {
			return true
		}
	}
	return false
}
