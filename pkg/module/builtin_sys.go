package module

import (
	"os"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("sys", sysModule{})
}

type sysModule struct{}

// Natives wires the file-system primitives an earlier primitives module
// exposed as Smalltalk selectors (fileRead/fileWrite/fileExists/
// fileDelete) into a `use sys;` module, plus argv/env access.
func (sysModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"readFile": fn("readFile", 1, func(h Host, args []value.Value) (value.Value, error) {
			data, err := os.ReadFile(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(string(data))), nil
		}),
		"writeFile": fn("writeFile", 2, func(h Host, args []value.Value) (value.Value, error) {
			err := os.WriteFile(args[0].ToString(), []byte(args[1].ToString()), 0644)
			return value.Bool(err == nil), err
		}),
		"exists": fn("exists", 1, func(h Host, args []value.Value) (value.Value, error) {
			_, err := os.Stat(args[0].ToString())
			return value.Bool(err == nil), nil
		}),
		"remove": fn("remove", 1, func(h Host, args []value.Value) (value.Value, error) {
			err := os.Remove(args[0].ToString())
			return value.Bool(err == nil), err
		}),
		"env": fn("env", 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.FromObject(h.AllocString(os.Getenv(args[0].ToString()))), nil
		}),
		"args": fn("args", 0, func(h Host, args []value.Value) (value.Value, error) {
			elems := make([]value.Value, len(os.Args))
			for i, a := range os.Args {
				elems[i] = value.FromObject(h.AllocString(a))
			}
			return value.FromObject(h.AllocArray(elems)), nil
		}),
		"exit": fn("exit", 1, func(h Host, args []value.Value) (value.Value, error) {
			os.Exit(int(args[0].AsNumber()))
			return value.Nil(), nil
		}),
	}
}
