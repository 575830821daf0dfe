package modules

import (
	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
)

type logicOp int

const (
	logicAnd logicOp = iota
	logicOr
	logicXor
	logicNot
)

func logicOpFromName(name string) logicOp {
	switch name {
	case "or":
		return logicOr
	case "xor":
		return logicXor
	case "not":
		return logicNot
	default:
		return logicAnd
	}
}

// Logic implements c_logic, a boolean gate combinator (and/or/xor/not
// over two 0/1 gate inputs, "not" reading only "a"), filling the same
// "logic" module slot modular patching tools carry. Inputs are 0/1
// gates read per-sample via cv= wiring the same way the envelope
// generator reads its gate input.
type Logic struct {
	*module.Base

	op logicOp
}

func newLogic(alias, config string, sampleRate float64) (module.Module, error) {
	cfg := module.ParseConfig(config)
	b := module.NewBase(alias, "c_logic", sampleRate, 0, false, true, module.MaxBlockSize)
	b.Params.Declare("a", 0, 1, 0)
	b.Params.Declare("b", 0, 1, 0)

	return &Logic{
		Base: b,
		op:   logicOpFromName(module.ConfigString(cfg, "op", "and")),
	}, nil
}

func (l *Logic) ProcessControl(out []float32, frames int) {
	for i := 0; i < frames; i++ {
		a, _ := l.CV("a", i)
		b, _ := l.CV("b", i)
		ag := a > 0.5
		bg := b > 0.5

		var result bool
		switch l.op {
		case logicAnd:
			result = ag && bg
		case logicOr:
			result = ag || bg
		case logicXor:
			result = ag != bg
		case logicNot:
			result = !ag
		}

		v := float32(0)
		if result {
			v = 1
		}
		out[i] = v
	}
}

func init() {
	registry.Register("c_logic", newLogic)
}
