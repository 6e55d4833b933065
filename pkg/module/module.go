// Package module implements the built-in half of the module loader
// described in spec §4.5: statically linked modules exposed to Neutron
// code via `use name;` without any filesystem search, as distinct from
// the source-module and native-dynamic-library tiers pkg/vm's module.go
// implements directly.
//
// Each builtin_*.go file owns one module and registers itself through
// register() in an init(); builtins never reach back into pkg/vm, so
// they take the VM through the small Host interface below instead of the
// concrete type — pkg/vm already depends on pkg/module (for use()'s
// lookup), so the reverse dependency would be an import cycle.
package module

import (
	"github.com/yasakei/neutron/pkg/process"
	"github.com/yasakei/neutron/pkg/value"
)

// Host is the slice of *vm.VM a built-in module needs: GC-tracked
// allocation (so values it hands back to Neutron code are swept like
// anything else on the heap), the ability to call back into a
// Neutron-level function passed as a callback argument, and the process
// scheduler backing the `process` built-in module (§4.7).
type Host interface {
	AllocString(s string) *value.String
	AllocArray(elements []value.Value) *value.Array
	AllocMapObject() *value.MapObject
	AllocBuffer(n int) *value.Buffer
	Invoke(callee value.Value, args []value.Value) (value.Value, error)
	Scheduler() *process.Scheduler
}

// Builtin is one statically linked module's native surface.
type Builtin interface {
	// Natives returns the functions this module exports, keyed by the
	// name they're bound under inside the module's Environment. host is
	// always the *vm.VM that called use(), passed as interface{} to
	// match value.NativeFn.Fn's signature; implementations type-assert
	// it to Host.
	Natives(host interface{}) map[string]*value.NativeFn
}

// Builtins maps a `use`-able module name to its implementation. Every
// builtin_*.go file populates this from its own init().
var Builtins = map[string]Builtin{}

func register(name string, b Builtin) {
	Builtins[name] = b
}

// fn is a small constructor to cut the NativeFn literal boilerplate
// every builtin_*.go file would otherwise repeat.
func fn(name string, arity int, f func(h Host, args []value.Value) (value.Value, error)) *value.NativeFn {
	return &value.NativeFn{
		Name: name, Arity: arity,
		Fn: func(vmh interface{}, args []value.Value) (value.Value, error) {
			return f(vmh.(Host), args)
		},
	}
}
