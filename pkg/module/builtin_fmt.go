package module

import (
	"fmt"
	"strings"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("fmt", fmtModule{})
}

type fmtModule struct{}

func (fmtModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"sprintf": fn("sprintf", -1, func(h Host, args []value.Value) (value.Value, error) {
			if len(args) == 0 {
				return value.FromObject(h.AllocString("")), nil
			}
			rest := make([]interface{}, len(args)-1)
			for i, a := range args[1:] {
				rest[i] = a.ToString()
			}
			return value.FromObject(h.AllocString(fmt.Sprintf(args[0].ToString(), rest...))), nil
		}),
		"upper": fn("upper", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(strings.ToUpper(args[0].ToString()))), nil
		}),
		"lower": fn("lower", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(strings.ToLower(args[0].ToString()))), nil
		}),
		"trim": fn("trim", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(strings.TrimSpace(args[0].ToString()))), nil
		}),
		"replace": fn("replace", 3, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(strings.ReplaceAll(
				args[0].ToString(), args[1].ToString(), args[2].ToString()))), nil
		}),
	}
}
