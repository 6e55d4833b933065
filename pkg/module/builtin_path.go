package module

import (
	"path/filepath"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("path", pathModule{})
}

type pathModule struct{}

func (pathModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"join": fn("join", -1, func(h Host, args []value.Value) (value.Value, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.ToString()
			}
			return value.FromObject(h.AllocString(filepath.Join(parts...))), nil
		}),
		"base": fn("base", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(filepath.Base(args[0].ToString()))), nil
		}),
		"dir": fn("dir", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(filepath.Dir(args[0].ToString()))), nil
		}),
		"ext": fn("ext", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(filepath.Ext(args[0].ToString()))), nil
		}),
		"abs": fn("abs", 1, func(h Host, args []value.Value) (value.Value, error) {
			out, err := filepath.Abs(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(out)), nil
		}),
	}
}
