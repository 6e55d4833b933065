// Package value defines Neutron's runtime value representation: the
// tagged Value union described in spec §3.1 and the heap object hierarchy
// of §3.2.
//
// Design Philosophy:
//
// Neutron is dynamically typed with optional annotations. Every runtime
// value is one of a small, closed set of kinds — never an open interface
// hierarchy. Representing Value as an explicit tagged struct (instead of
// a Go interface{} the way an untagged value representation would) gives exhaustiveness at
// every switch site and lets the VM and GC dispatch on a single byte
// instead of a type assertion.
//
// Kinds:
//
//	nil, bool, number (float64 — the sole numeric type), string, array,
//	object (generic string-keyed map), callable (Function / NativeFn /
//	BoundMethod / BoundArrayMethod / BoundStringMethod), module, class,
//	instance, buffer (fixed-size byte array)
//
// Equality: same-kind comparison. Booleans, numbers, and strings compare
// by content; everything else compares by heap-object identity, except
// that interned strings collapse content equality into pointer equality
// by construction (see intern.go).
package value

import "fmt"

// Kind tags the payload a Value carries.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindCallable
	KindModule
	KindClass
	KindInstance
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindCallable:
		return "callable"
	case KindModule:
		return "module"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBuffer:
		return "buffer"
	default:
		return "unknown"
	}
}

// Value is Neutron's tagged runtime value. Boolean and number payloads are
// stored inline; every other kind points at a heap Object the garbage
// collector can trace.
type Value struct {
	kind Kind
	b    bool
	n    float64
	obj  Object
}

// Object is the interface every heap-allocated value implements. It gives
// the collector (pkg/vm's mark-sweep pass) a single mark bit and every
// heap kind a human-readable rendering.
type Object interface {
	// ObjectKind reports which Value Kind this object backs, so callers
	// that only hold an Object can still type-switch precisely.
	ObjectKind() Kind
	// ToString renders the object the way `say`/string-concatenation
	// would.
	ToString() string
	// Marked/SetMarked implement the GC mark bit (spec §4.3).
	Marked() bool
	SetMarked(bool)
}

// header is embedded by every heap object to provide the mark bit.
type header struct {
	marked bool
}

func (h *header) Marked() bool     { return h.marked }
func (h *header) SetMarked(m bool) { h.marked = m }

// Constructors for the inline kinds.

func Nil() Value                { return Value{kind: KindNil} }
func Bool(b bool) Value         { return Value{kind: KindBool, b: b} }
func Number(n float64) Value    { return Value{kind: KindNumber, n: n} }
func FromObject(o Object) Value { return Value{kind: o.ObjectKind(), obj: o} }

// Kind reports the value's tag.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsObject() bool { return v.obj != nil }

// AsBool/AsNumber do not check the kind: on a value of another kind they
// return the zero payload (false / 0), so callers check Kind() (or use the
// Is* predicates) first, matching the VM's own type-checked opcode handlers.
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObject() Object  { return v.obj }

// AsString returns the Go string content of a String object, or panics if
// the value is not a string.
func (v Value) AsString() string {
	s, ok := v.obj.(*String)
	if !ok {
		panic(fmt.Sprintf("value: AsString called on %v", v.kind))
	}
	return s.Chars
}

// Truthy implements spec §3.1: nil and false are falsy, everything else —
// including 0, "", and an empty array — is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements spec §3.1's equality rule: same-kind comparison,
// booleans/numbers/strings by content, everything else by heap identity
// (which interning collapses into pointer equality for strings anyway,
// making the String case simultaneously a content and identity check).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		as, bs := a.obj.(*String), b.obj.(*String)
		if as == bs {
			return true
		}
		return as.Chars == bs.Chars
	default:
		return a.obj == b.obj
	}
}

// ToString renders a Value the way `say` and string concatenation do.
func (v Value) ToString() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	default:
		if v.obj == nil {
			return "nil"
		}
		return v.obj.ToString()
	}
}

func formatNumber(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
