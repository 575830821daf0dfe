// Package scheduler drives one block of a graph.Graph through its
// modules in declared order: call each node's audio/control work
// functions in sequence, with per-node fan-in mixing and dual
// audio/control dispatch ahead of each call.
package scheduler

import (
	"github.com/halvorsen-audio/patchrack/pkg/graph"
	"github.com/halvorsen-audio/patchrack/pkg/module"
)

// Scheduler runs one graph.Graph.
type Scheduler struct {
	g *graph.Graph
}

// New wraps a graph for block-rate execution.
func New(g *graph.Graph) *Scheduler {
	return &Scheduler{g: g}
}

// Process runs one audio callback. in is the driver's input block (may be
// nil for silence); out must have capacity >= frames and is filled with
// the final output. frames must be <= the graph's MaxBlockSize.
func (s *Scheduler) Process(in []float32, out []float32, frames int) {
	nodes := s.g.Nodes
	for i, n := range nodes {
		mod := n.Mod

		if cr, ok := mod.(module.CVReceiver); ok {
			for _, ci := range n.ControlInputs {
				cr.SetCVInput(ci.Param, ci.Source)
			}
		}

		if mp, ok := mod.(module.MultiAudioProcessor); ok {
			ins := n.AudioInputs
			if len(ins) == 0 && i == 0 && in != nil {
				ins = [][]float32{in}
			}
			audioOut := nodeAudioOutput(n)
			mp.ProcessMultiAudio(ins, audioOut, frames)
			if cp, ok := mod.(module.ControlProcessor); ok {
				controlOut := nodeControlOutput(n)
				cp.ProcessControl(controlOut, frames)
			}
			continue
		}

		scratch := n.Mix(frames)
		switch {
		case len(n.AudioInputs) > 0:
			mixFanIn(scratch, n.AudioInputs, frames)
		case i == 0:
			copyOrZero(scratch, in, frames)
		default:
			for j := range scratch {
				scratch[j] = 0
			}
		}

		if ap, ok := mod.(module.AudioProcessor); ok {
			audioOut := nodeAudioOutput(n)
			ap.ProcessAudio(scratch, audioOut, frames)
		}
		if cp, ok := mod.(module.ControlProcessor); ok {
			controlOut := nodeControlOutput(n)
			cp.ProcessControl(controlOut, frames)
		}
	}

	last := s.g.Last()
	if last != nil {
		if audioOut := nodeAudioOutput(last); audioOut != nil {
			copy(out[:frames], audioOut[:frames])
			return
		}
	}
	for i := 0; i < frames; i++ {
		out[i] = 0
	}
}

// mixFanIn sums every connected input into dst and scales by 1/N, the
// uniform-gain fan-in rule this engine uses to avoid clipping on
// multi-source ports.
func mixFanIn(dst []float32, sources [][]float32, frames int) {
	for i := 0; i < frames; i++ {
		dst[i] = 0
	}
	n := len(sources)
	if n == 0 {
		return
	}
	for _, src := range sources {
		limit := frames
		if len(src) < limit {
			limit = len(src)
		}
		for i := 0; i < limit; i++ {
			dst[i] += src[i]
		}
	}
	scale := float32(1.0 / float64(n))
	for i := 0; i < frames; i++ {
		dst[i] *= scale
	}
}

func copyOrZero(dst, src []float32, frames int) {
	if src == nil {
		for i := 0; i < frames; i++ {
			dst[i] = 0
		}
		return
	}
	limit := frames
	if len(src) < limit {
		limit = len(src)
	}
	copy(dst[:limit], src[:limit])
	for i := limit; i < frames; i++ {
		dst[i] = 0
	}
}

func nodeAudioOutput(n *graph.Node) []float32 {
	if out, ok := n.Mod.(module.HasAudioOutput); ok {
		return out.AudioOutput()
	}
	return nil
}

func nodeControlOutput(n *graph.Node) []float32 {
	if out, ok := n.Mod.(module.HasControlOutput); ok {
		return out.ControlOutput()
	}
	return nil
}
