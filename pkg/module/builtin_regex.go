package module

import (
	"regexp"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("regex", regexModule{})
}

type regexModule struct{}

func (regexModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"match": fn("match", 2, func(h Host, args []value.Value) (value.Value, error) {
			ok, err := regexp.MatchString(args[0].ToString(), args[1].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.Bool(ok), nil
		}),
		"findAll": fn("findAll", 2, func(h Host, args []value.Value) (value.Value, error) {
			re, err := regexp.Compile(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			matches := re.FindAllString(args[1].ToString(), -1)
			elems := make([]value.Value, len(matches))
			for i, m := range matches {
				elems[i] = value.FromObject(h.AllocString(m))
			}
			return value.FromObject(h.AllocArray(elems)), nil
		}),
		"replace": fn("replace", 3, func(h Host, args []value.Value) (value.Value, error) {
			re, err := regexp.Compile(args[0].ToString())
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(
				re.ReplaceAllString(args[1].ToString(), args[2].ToString()))), nil
		}),
	}
}
