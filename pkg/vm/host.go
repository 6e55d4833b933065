package vm

import (
	"github.com/yasakei/neutron/pkg/process"
	"github.com/yasakei/neutron/pkg/value"
)

// The methods below satisfy pkg/module.Host. They exist only because
// pkg/module cannot import pkg/vm (use() already imports pkg/module, so
// the reverse would cycle) and so cannot call the unexported alloc*
// helpers gc.go defines for the rest of the VM — built-in modules get
// the same GC-tracked allocation through this exported surface instead.

// AllocString allocates a GC-tracked string, for built-in modules that
// hand a freshly computed string back to Neutron code.
func (m *VM) AllocString(s string) *value.String { return m.allocString(s) }

// AllocArray allocates a GC-tracked array from elements the caller owns.
func (m *VM) AllocArray(elements []value.Value) *value.Array { return m.allocArray(elements) }

// AllocMapObject allocates a GC-tracked, empty object-literal map.
func (m *VM) AllocMapObject() *value.MapObject { return m.allocMapObject() }

// AllocBuffer allocates a GC-tracked n-byte buffer.
func (m *VM) AllocBuffer(n int) *value.Buffer { return m.allocBuffer(n) }

// Invoke calls a Neutron-level callable from a built-in module's native
// function — e.g. a module exposing its own map/reduce-style helper that
// takes a user function argument. Thin wrapper over the same invoke()
// array methods and the process scheduler use to re-enter the
// interpreter.
func (m *VM) Invoke(callee value.Value, args []value.Value) (value.Value, error) {
	return m.invoke(callee, args)
}

// Scheduler returns the VM's process scheduler, lazily creating it on
// first use so a program that never touches `use process;` never pays for
// a goroutine-backed PID table.
func (m *VM) Scheduler() *process.Scheduler {
	if m.scheduler == nil {
		m.scheduler = process.NewScheduler(m)
	}
	return m.scheduler
}
