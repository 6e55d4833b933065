// Package environment implements the lexical scope chain described in
// spec §4.4: a name→Value map plus a pointer to an enclosing Environment.
// It backs module-level bindings and compile-time resolution; local
// variables inside a function body live directly in the VM's operand-
// stack locals window and are resolved by slot index instead (spec
// §4.1), so Environment never needs to represent those.
//
// Grounded on original_source/include/environment.h, the closest direct
// analog available — nothing else examined implemented closures, so
// this has no prior Environment type to generalize from.
package environment

import (
	"fmt"

	"github.com/yasakei/neutron/pkg/value"
	"golang.org/x/exp/maps"
)

// Environment is one link in the lexical scope chain.
type Environment struct {
	values    map[string]value.Value
	types     map[string]value.TypeTag
	Enclosing *Environment
}

// New creates an empty environment enclosed by parent (nil for the
// outermost/global scope).
func New(parent *Environment) *Environment {
	return &Environment{
		values:    make(map[string]value.Value),
		types:     make(map[string]value.TypeTag),
		Enclosing: parent,
	}
}

// Define adds or updates a binding in this environment only (never walks
// the chain) — used for `var` declarations and module-level `fun`/`class`.
func (e *Environment) Define(name string, v value.Value) {
	e.values[name] = v
}

// DefineTyped is Define plus recording the annotation tag, enforced on
// future assignment through SET_GLOBAL_TYPED (spec §4.2).
func (e *Environment) DefineTyped(name string, v value.Value, tag value.TypeTag) {
	e.values[name] = v
	e.types[name] = tag
}

// TypeOf returns the annotation tag recorded for name in this environment
// only (not the chain — globals are compiled with DEFINE_TYPED_GLOBAL at
// module scope, so annotation lookups never need to cross scopes).
func (e *Environment) TypeOf(name string) (value.TypeTag, bool) {
	t, ok := e.types[name]
	return t, ok
}

// Get walks the chain inside-out until name is found, or reports a
// ReferenceError-shaped error (spec §7) if it's never bound.
func (e *Environment) Get(name string) (value.Value, error) {
	for env := e; env != nil; env = env.Enclosing {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return value.Nil(), fmt.Errorf("undefined variable '%s'", name)
}

// Assign walks the chain and updates the nearest existing binding,
// reporting a ReferenceError-shaped error if name is never bound anywhere
// in the chain (Neutron has no implicit-global-creation-on-assign
// semantics at the Environment level; DEFINE_GLOBAL is what creates one).
func (e *Environment) Assign(name string, v value.Value) error {
	for env := e; env != nil; env = env.Enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return nil
		}
	}
	return fmt.Errorf("undefined variable '%s'", name)
}

// Snapshot returns a shallow copy of this environment's own bindings,
// used by the module loader's globals-swap protocol (spec §4.5) to save
// the caller's globals before executing a module body in isolation.
func (e *Environment) Snapshot() map[string]value.Value {
	return maps.Clone(e.values)
}

// Restore replaces this environment's own bindings with snapshot,
// completing the globals-swap protocol's "restore the saved globals" step.
func (e *Environment) Restore(snapshot map[string]value.Value) {
	e.values = maps.Clone(snapshot)
}

// Bindings returns every name this environment (not its chain) currently
// binds — used when the module loader "harvests the resulting globals"
// from a freshly executed module body into the module's own Environment.
func (e *Environment) Bindings() map[string]value.Value {
	return e.values
}

// All returns every Value reachable directly from this environment (not
// its chain), for the GC's blacken pass over a live Module's bindings.
func (e *Environment) All() []value.Value {
	out := make([]value.Value, 0, len(e.values))
	for _, v := range e.values {
		out = append(out, v)
	}
	return out
}
