// Package graph holds the parsed patch graph: an ordered list of module
// instances plus the audio/control wiring resolved from aliases. The
// ordered-list-of-processors shape generalizes "call Process on every
// processor in sequence" to the full module.Module capability set with
// fan-in audio mixing and named-parameter CV routing.
package graph

import (
	"github.com/halvorsen-audio/patchrack/pkg/module"
)

// ControlInput pairs a source control-output buffer with the name of the
// parameter on the current module it modulates.
type ControlInput struct {
	Source []float32
	Param  string
}

// Node wraps one module instance with its resolved wiring.
type Node struct {
	Alias string
	Mod   module.Module

	AudioInputs   [][]float32
	ControlInputs []ControlInput

	// mix is the per-node fan-in scratch buffer (step 2a),
	// reused every block — no per-block allocation.
	mix []float32
}

// Mix returns the node's fan-in scratch buffer, sized to frames.
func (n *Node) Mix(frames int) []float32 {
	return n.mix[:frames]
}

// Graph is the ordered, wired patch. Order is insertion (= declaration)
// order, which the parser guarantees is also a valid execution order
// because it rejects forward references.
type Graph struct {
	Nodes        []*Node
	byAlias      map[string]*Node
	SampleRate   float64
	MaxBlockSize int
}

// New creates an empty graph.
func New(sampleRate float64, maxBlockSize int) *Graph {
	return &Graph{
		byAlias:      make(map[string]*Node),
		SampleRate:   sampleRate,
		MaxBlockSize: maxBlockSize,
	}
}

// Lookup resolves an alias to its node, if declared so far.
func (g *Graph) Lookup(alias string) (*Node, bool) {
	n, ok := g.byAlias[alias]
	return n, ok
}

// Append adds a newly instantiated module to the graph in declaration
// order and returns its node for wiring.
func (g *Graph) Append(alias string, mod module.Module) *Node {
	n := &Node{
		Alias: alias,
		Mod:   mod,
		mix:   make([]float32, g.MaxBlockSize),
	}
	g.Nodes = append(g.Nodes, n)
	g.byAlias[alias] = n
	return n
}

// Last returns the final node in declaration order, or nil if empty.
func (g *Graph) Last() *Node {
	if len(g.Nodes) == 0 {
		return nil
	}
	return g.Nodes[len(g.Nodes)-1]
}

// Destroy tears down every module in reverse of instantiation order.
func (g *Graph) Destroy() {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		if d, ok := g.Nodes[i].Mod.(module.Destroyer); ok {
			d.Destroy()
		}
	}
}
