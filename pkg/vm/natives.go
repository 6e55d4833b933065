package vm

import (
	"github.com/yasakei/neutron/pkg/value"
)

// defineNatives installs the small set of always-present global natives
// every Neutron program can call without a `use` statement (spec §6: `say`
// is core syntax, not a built-in-module export). Everything else (json,
// http, crypto, ...) lives behind `use name;` in pkg/module.
func (m *VM) defineNatives() {
	m.globals["say"] = value.FromObject(&value.NativeFn{
		Name: "say", Arity: 1,
		Fn: func(vmh interface{}, args []value.Value) (value.Value, error) {
			m.out.Print(args[0].ToString() + "\n")
			return value.Nil(), nil
		},
	})
	m.globals["typeOf"] = value.FromObject(&value.NativeFn{
		Name: "typeOf", Arity: 1,
		Fn: func(vmh interface{}, args []value.Value) (value.Value, error) {
			return value.FromObject(m.allocString(args[0].Kind().String())), nil
		},
	})
}
