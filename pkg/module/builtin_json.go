package module

import (
	"encoding/json"

	"github.com/yasakei/neutron/pkg/value"
)

func init() {
	register("json", jsonModule{})
}

type jsonModule struct{}

func (jsonModule) Natives(interface{}) map[string]*value.NativeFn {
	return map[string]*value.NativeFn{
		"parse": fn("parse", 1, func(h Host, args []value.Value) (value.Value, error) {
			var raw interface{}
			if err := json.Unmarshal([]byte(args[0].ToString()), &raw); err != nil {
				return value.Nil(), err
			}
			return fromJSON(h, raw), nil
		}),
		"stringify": fn("stringify", 1, func(h Host, args []value.Value) (value.Value, error) {
			data, err := json.Marshal(toJSON(args[0]))
			if err != nil {
				return value.Nil(), err
			}
			return value.FromObject(h.AllocString(string(data))), nil
		}),
	}
}

// fromJSON converts a decoded encoding/json value (float64/string/bool/
// nil/[]interface{}/map[string]interface{}) into Neutron values, routing
// allocation through the host so the result is GC-tracked like anything
// else on the heap (spec §4.3).
func fromJSON(h Host, v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Nil()
	case bool:
		return value.Bool(t)
	case float64:
		return value.Number(t)
	case string:
		return value.FromObject(h.AllocString(t))
	case []interface{}:
		elems := make([]value.Value, len(t))
		for i, e := range t {
			elems[i] = fromJSON(h, e)
		}
		return value.FromObject(h.AllocArray(elems))
	case map[string]interface{}:
		m := h.AllocMapObject()
		for k, e := range t {
			m.Set(k, fromJSON(h, e))
		}
		return value.FromObject(m)
	default:
		return value.Nil()
	}
}

// toJSON is fromJSON's inverse: Neutron values back to plain Go values
// encoding/json can marshal.
func toJSON(v value.Value) interface{} {
	if v.IsNil() {
		return nil
	}
	if v.IsBool() {
		return v.AsBool()
	}
	if v.IsNumber() {
		return v.AsNumber()
	}
	if v.IsString() {
		return v.ToString()
	}
	switch obj := v.AsObject().(type) {
	case *value.Array:
		out := make([]interface{}, len(obj.Elements))
		for i, e := range obj.Elements {
			out[i] = toJSON(e)
		}
		return out
	case *value.MapObject:
		out := make(map[string]interface{}, len(obj.Order))
		for _, k := range obj.Order {
			val, _ := obj.Get(k)
			out[k] = toJSON(val)
		}
		return out
	default:
		return v.ToString()
	}
}
