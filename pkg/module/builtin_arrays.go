package module

import (
	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("arrays", arraysModule{})
}

type arraysModule struct{}

// Natives covers the free-function array helpers that don't fit the
// fixed bound-method table the VM dispatches inline (value.ArrayMethodName):
// range/sum/unique/flatten operate on arrays as plain arguments instead
// of as a receiver, so they live in a module rather than in pkg/vm's
// callArrayMethod.
func (arraysModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"range": fn("range", 2, func(h Host, args []value.Value) (value.Value, error) {
			start, end := int(args[0].AsNumber()), int(args[1].AsNumber())
			if end < start {
				return value.FromObject(h.AllocArray(nil)), nil
			}
			out := make([]value.Value, 0, end-start)
			for i := start; i < end; i++ {
				out = append(out, value.Number(float64(i)))
			}
			return value.FromObject(h.AllocArray(out)), nil
		}),
		"sum": fn("sum", 1, func(h Host, args []value.Value) (value.Value, error) {
			arr, ok := args[0].AsObject().(*value.Array)
			if !ok {
				return value.Number(0), nil
			}
			total := 0.0
			for _, e := range arr.Elements {
				if e.IsNumber() {
					total += e.AsNumber()
				}
			}
			return value.Number(total), nil
		}),
		"unique": fn("unique", 1, func(h Host, args []value.Value) (value.Value, error) {
			arr, ok := args[0].AsObject().(*value.Array)
			if !ok {
				return value.FromObject(h.AllocArray(nil)), nil
			}
			out := make([]value.Value, 0, len(arr.Elements))
			for _, e := range arr.Elements {
				dup := false
				for _, seen := range out {
					if value.Equal(seen, e) {
						dup = true
						break
					}
				}
				if !dup {
					out = append(out, e)
				}
			}
			return value.FromObject(h.AllocArray(out)), nil
		}),
		"flatten": fn("flatten", 1, func(h Host, args []value.Value) (value.Value, error) {
			arr, ok := args[0].AsObject().(*value.Array)
			if !ok {
				return value.FromObject(h.AllocArray(nil)), nil
			}
			var out []value.Value
			var walk func(*value.Array)
			walk = func(a *value.Array) {
				for _, e := range a.Elements {
					if inner, ok := e.AsObject().(*value.Array); ok && e.IsObject() {
						walk(inner)
					} else {
						out = append(out, e)
					}
				}
			}
			walk(arr)
			return value.FromObject(h.AllocArray(out)), nil
		}),
	}
}
