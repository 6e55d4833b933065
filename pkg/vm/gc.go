package vm

import (
	"github.com/yasakei/neutron/pkg/bytecode"
	"github.com/yasakei/neutron/pkg/value"
)

// track registers a freshly allocated heap object with the collector. The
// GC threshold is only ever consulted at run()'s per-instruction safe
// point (see maybeCollect), never inside track itself, so an object is
// never swept away mid-instruction before the opcode that allocated it has
// had a chance to make it reachable from a real root (push it, store it in
// a field, etc).
func (m *VM) track(o value.Object) value.Object {
	m.heap = append(m.heap, o)
	return o
}

func (m *VM) allocString(s string) *value.String {
	return m.track(value.NewDataString(s)).(*value.String)
}

func (m *VM) allocArray(elements []value.Value) *value.Array {
	return m.track(value.NewArray(elements)).(*value.Array)
}

func (m *VM) allocMapObject() *value.MapObject {
	return m.track(value.NewMapObject()).(*value.MapObject)
}

func (m *VM) allocInstance(c *value.Class) *value.Instance {
	return m.track(value.NewInstance(c)).(*value.Instance)
}

func (m *VM) allocClass(name string, super *value.Class) *value.Class {
	return m.track(value.NewClass(name, super)).(*value.Class)
}

func (m *VM) allocBuffer(n int) *value.Buffer {
	return m.track(value.NewBuffer(n)).(*value.Buffer)
}

// protect adds v's heap object (if it has one) to the temporary-root list,
// which collect() traces unconditionally (spec §4.3: "temp-root list
// protects in-progress allocations"). Native iteration helpers — array
// `map`/`filter`/`sort` calling back into user code across many recursive
// run() invocations — use this to keep partially-built Go-side
// accumulators (a []value.Value the VM's real roots can't see) alive
// across a collection that might be triggered deep inside one of those
// recursive calls.
func (m *VM) protect(v value.Value) {
	if v.IsObject() {
		m.tempRoots = append(m.tempRoots, v.AsObject())
	}
}

// unprotectAll clears the temporary-root list once the caller has made its
// accumulator reachable some other way (typically: wrapped it in a new
// Array and pushed that onto the operand stack).
func (m *VM) unprotectAll() {
	m.tempRoots = m.tempRoots[:0]
}

// maybeCollect is called once per dispatched instruction (run()'s safe
// point) and runs a full stop-the-world mark-sweep pass if the heap roster
// has grown past nextGC (spec §4.3).
func (m *VM) maybeCollect() {
	if len(m.heap) <= m.nextGC || m.gcPaused > 0 {
		return
	}
	m.collect()
}

// collect performs one mark-sweep pass over the exact root set spec §4.3
// names: the operand stack, globals, every call frame's Function (and
// transitively its Chunk constants and closure upvalues), the temp-root
// list, the interned-string table, and the pending-exception slot.
func (m *VM) collect() {
	for _, v := range m.stack {
		m.markValue(v)
	}
	for _, v := range m.globals {
		m.markValue(v)
	}
	for i := range m.frames {
		m.markObject(m.frames[i].Fn)
		if m.frames[i].Closure != nil {
			for _, uv := range m.frames[i].Closure.Upvalues {
				m.markValue(uv)
			}
		}
	}
	for _, ef := range m.exceptions {
		if ef.HasException {
			m.markValue(ef.Pending)
		}
	}
	for _, o := range m.tempRoots {
		m.markObject(o)
	}
	for _, s := range m.interned.All() {
		m.markObject(s)
	}
	if m.hasPending {
		m.markValue(m.pending)
	}

	kept := m.heap[:0]
	for _, o := range m.heap {
		if o.Marked() {
			o.SetMarked(false)
			kept = append(kept, o)
		}
	}
	m.heap = kept
	m.nextGC = len(m.heap) * 2
	if m.nextGC < initialGCThreshold {
		m.nextGC = initialGCThreshold
	}
}

func (m *VM) markValue(v value.Value) {
	if v.IsObject() {
		m.markObject(v.AsObject())
	}
}

// markObject marks o and, if this is the first time it's been reached this
// pass, blackens it by tracing whatever it in turn references (spec
// §4.3's "blackenObject dispatch").
func (m *VM) markObject(o value.Object) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	m.blacken(o)
}

func (m *VM) blacken(o value.Object) {
	switch obj := o.(type) {
	case *value.Array:
		for _, v := range obj.Elements {
			m.markValue(v)
		}
	case *value.MapObject:
		for _, v := range obj.Entries {
			m.markValue(v)
		}
	case *value.Instance:
		m.markObject(obj.Class)
		for _, v := range obj.Fields() {
			m.markValue(v)
		}
	case *value.Class:
		for _, v := range obj.Methods {
			m.markValue(v)
		}
		m.markValue(obj.Initializer)
		if obj.Super != nil {
			m.markObject(obj.Super)
		}
		if env := environmentOf(obj.Enclosing); env != nil {
			for _, v := range env.All() {
				m.markValue(v)
			}
		}
	case *value.Function:
		if chunk, ok := obj.Chunk.(*bytecode.Chunk); ok {
			for _, v := range chunk.Constants {
				m.markValue(v)
			}
		}
		if cf, ok := obj.Closure.(*ClosureFrame); ok && cf != nil {
			for _, v := range cf.Upvalues {
				m.markValue(v)
			}
		}
	case *value.BoundMethod:
		m.markValue(obj.Receiver)
		m.markObject(obj.Method)
	case *value.BoundArrayMethod:
		m.markObject(obj.Receiver)
	case *value.BoundStringMethod:
		m.markObject(obj.Receiver)
	case *value.Module:
		if env := environmentOf(obj.Env); env != nil {
			for _, v := range env.All() {
				m.markValue(v)
			}
		}
	case *value.String, *value.Buffer, *value.NativeFn:
		// leaves: no outgoing references.
	}
}
