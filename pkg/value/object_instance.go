package value

// InlineFieldCapacity is N from spec §3.2: the number of (key-pointer,
// value) pairs an Instance stores inline before spilling to the overflow
// map. Interned field-name strings make the inline slot key a pointer
// compare, keeping the common-case lookup cache-friendly.
const InlineFieldCapacity = 8

type inlineField struct {
	key   *String // nil means this slot is empty
	value Value
}

// Instance is an object of a Class (spec §3.2): a class pointer, an
// inline field table of fixed capacity for the first InlineFieldCapacity
// fields, and an overflow map allocated lazily once the inline slots are
// exhausted.
type Instance struct {
	header
	Class   *Class
	inline  [InlineFieldCapacity]inlineField
	inlineN int
	// overflow holds fields beyond InlineFieldCapacity, keyed by the
	// interned field-name string's content (overflow lookups are by
	// content since the table key is a plain Go string).
	overflow map[string]Value
}

// NewInstance allocates a bare instance of class c with no fields set.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c}
}

// GetField probes the inline slots first, then the overflow map, matching
// spec §3.2's "field lookup probes inline first, then overflow".
func (ins *Instance) GetField(name *String) (Value, bool) {
	for i := 0; i < ins.inlineN; i++ {
		if ins.inline[i].key == name || ins.inline[i].key.Chars == name.Chars {
			return ins.inline[i].value, true
		}
	}
	if ins.overflow != nil {
		if v, ok := ins.overflow[name.Chars]; ok {
			return v, true
		}
	}
	return Nil(), false
}

// SetField stores a field value, updating an existing inline/overflow
// slot if present, otherwise filling the next inline slot or, once those
// are exhausted, falling back to the overflow map.
func (ins *Instance) SetField(name *String, v Value) {
	for i := 0; i < ins.inlineN; i++ {
		if ins.inline[i].key == name || ins.inline[i].key.Chars == name.Chars {
			ins.inline[i].value = v
			return
		}
	}
	if ins.overflow != nil {
		if _, ok := ins.overflow[name.Chars]; ok {
			ins.overflow[name.Chars] = v
			return
		}
	}
	if ins.inlineN < InlineFieldCapacity {
		ins.inline[ins.inlineN] = inlineField{key: name, value: v}
		ins.inlineN++
		return
	}
	if ins.overflow == nil {
		ins.overflow = make(map[string]Value)
	}
	ins.overflow[name.Chars] = v
}

// Fields returns every (name, value) pair currently set, inline then
// overflow, for the GC's blacken pass and for diagnostics.
func (ins *Instance) Fields() []Value {
	out := make([]Value, 0, ins.inlineN+len(ins.overflow))
	for i := 0; i < ins.inlineN; i++ {
		out = append(out, ins.inline[i].value)
	}
	for _, v := range ins.overflow {
		out = append(out, v)
	}
	return out
}

func (ins *Instance) ObjectKind() Kind { return KindInstance }

func (ins *Instance) ToString() string {
	if ins.Class == nil {
		return "<instance>"
	}
	return "<instance of " + ins.Class.Name + ">"
}
