package vm

import (
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/value"
)

// ClosureFrame is the runtime counterpart of value.Function's documented
// Closure contract: the values a closure captured at OP_CLOSURE time,
// parallel to the compiled template's Upvalues descriptors. Capture is by
// value-copy (see value.UpvalueDesc's doc comment) — ClosureFrame just
// holds the snapshot, not live shared cells.
type ClosureFrame struct {
	Upvalues []value.Value
}

// makeClosure implements OP_CLOSURE: it takes the compiled Function
// template out of the constant pool and produces a fresh Function value
// specialized with its own captured upvalues, so two closures created from
// the same function literal (e.g. a counter factory called twice) don't
// share captured state (spec §4.4).
func (m *VM) makeClosure(f *CallFrame, chunk *bytecode.Chunk, constIdx byte) {
	template := chunk.Constants[constIdx].AsObject().(*value.Function)

	instance := *template // shallow copy: same Chunk/Name/Arity/ParamTypes, own Closure
	upvalues := make([]value.Value, len(template.Upvalues))
	for i, desc := range template.Upvalues {
		if desc.FromLocal {
			upvalues[i] = m.stack[f.SlotOffset+desc.Index]
		} else if f.Closure != nil {
			upvalues[i] = f.Closure.Upvalues[desc.Index]
		}
	}
	instance.Closure = &ClosureFrame{Upvalues: upvalues}

	m.push(value.FromObject(&instance))
}
