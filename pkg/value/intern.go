package value

// InternTable is the VM-wide content-keyed table of deduplicated strings
// (spec §3.2, invariant 2: "for any two interned strings a, b, a.chars ==
// b.chars ⇒ a == b" by pointer).
//
// The table is itself a GC root (spec §4.3) — every interned string is
// kept alive for the VM's lifetime. §9 flags this as a potential leak for
// long-running programs with dynamic string content; this implementation
// preserves that behavior rather than switching to weak references, since
// a reimplementation "must avoid use-after-free from pointer-equality
// checks" and a weak table would require auditing every pointer-equality
// call site in the VM and compiler. Documented, not fixed.
type InternTable struct {
	strings map[string]*String
}

// NewInternTable creates an empty intern table.
func NewInternTable() *InternTable {
	return &InternTable{strings: make(map[string]*String)}
}

// Intern returns the unique interned String object for s, allocating one
// if this content hasn't been seen before.
func (t *InternTable) Intern(s string) *String {
	if existing, ok := t.strings[s]; ok {
		return existing
	}
	str := &String{Chars: s, Interned: true}
	t.strings[s] = str
	return str
}

// All returns every interned string currently held, for the GC root walk.
func (t *InternTable) All() []*String {
	out := make([]*String, 0, len(t.strings))
	for _, s := range t.strings {
		out = append(out, s)
	}
	return out
}

// Remove drops s from the table. Only used if a future reimplementation
// moves to weak references (see the type doc); never called by the
// stock mark-sweep collector, which treats the table as a strong root.
func (t *InternTable) Remove(s string) {
	delete(t.strings, s)
}
