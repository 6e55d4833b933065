package module

import (
	"math"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("math", mathModule{})
}

type mathModule struct{}

func (mathModule) Natives(interface{}) map[string]*value.NativeFn {
	unary := func(name string, f func(float64) float64) *value.NativeFn {
		return fn(name, 1, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(f(args[0].AsNumber())), nil
		})
	}
	return map[string]*value.NativeFn{
		"sqrt":  unary("sqrt", math.Sqrt),
		"floor": unary("floor", math.Floor),
		"ceil":  unary("ceil", math.Ceil),
		"round": unary("round", math.Round),
		"abs":   unary("abs", math.Abs),
		"sin":   unary("sin", math.Sin),
		"cos":   unary("cos", math.Cos),
		"tan":   unary("tan", math.Tan),
		"log":   unary("log", math.Log),
		"pow": fn("pow", 2, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil
		}),
		"max": fn("max", 2, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(math.Max(args[0].AsNumber(), args[1].AsNumber())), nil
		}),
		"min": fn("min", 2, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(math.Min(args[0].AsNumber(), args[1].AsNumber())), nil
		}),
		"pi": fn("pi", 0, func(h Host, args []value.Value) (value.Value, error) {
			return value.Number(math.Pi), nil
		}),
	}
}
