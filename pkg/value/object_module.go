package value

// Module is a named, lazily loaded unit exporting a set of bindings (spec
// §3.2, §4.5). Env is stored as interface{} (contract: *environment.
// Environment) for the same import-cycle reason as Class.Enclosing.
//
// Handle holds an opaque reference to a dynamically loaded library for
// native modules (nil for source modules and built-ins). Per spec §4.5,
// dynamic libraries are never unloaded during the VM's lifetime, so
// Handle is retained for the process's whole life rather than closed when
// the Module object itself becomes unreachable.
type Module struct {
	header
	Name   string
	Env    interface{}
	Handle interface{}
	Native bool
}

func NewModule(name string, env interface{}) *Module {
	return &Module{Name: name, Env: env}
}

func (m *Module) ObjectKind() Kind { return KindModule }
func (m *Module) ToString() string { return "<module " + m.Name + ">" }

// Buffer is a raw, fixed-size byte vector (spec §3.2).
type Buffer struct {
	header
	Bytes []byte
}

func NewBuffer(n int) *Buffer { return &Buffer{Bytes: make([]byte, n)} }

func (b *Buffer) ObjectKind() Kind { return KindBuffer }
func (b *Buffer) ToString() string { return "<buffer>" }

// Slice returns a new Buffer covering [start, end), matching
// original_source's buffer.slice(a,b) (SPEC_FULL.md §4).
func (b *Buffer) Slice(start, end int) (*Buffer, bool) {
	if start < 0 || end > len(b.Bytes) || start > end {
		return nil, false
	}
	out := make([]byte, end-start)
	copy(out, b.Bytes[start:end])
	return &Buffer{Bytes: out}, true
}
