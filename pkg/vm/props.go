package vm

import "github.com/yasakei/neutron/pkg/value"

// getProperty implements GET_PROPERTY (spec §3.2/§4.2): dot-access
// resolves instance fields first, then class methods (wrapped as a
// BoundMethod); module access reads the module's own environment; object
// (map) access reads a key; array/string access resolves one of the fixed
// bound-method names so `arr.push` evaluates to a callable without being
// called yet.
func (m *VM) getProperty(recv value.Value, name string) (value.Value, error) {
	switch recv.Kind() {
	case value.KindInstance:
		inst := recv.AsObject().(*value.Instance)
		key := m.interned.Intern(name)
		if v, ok := inst.GetField(key); ok {
			return v, nil
		}
		if mv, ok := inst.Class.FindMethod(name); ok {
			fn, ok := mv.AsObject().(*value.Function)
			if !ok {
				return value.Nil(), m.fail(RuntimeErrorKind, "malformed method '%s'", name)
			}
			return value.FromObject(&value.BoundMethod{Receiver: recv, Method: fn}), nil
		}
		return value.Nil(), m.fail(ReferenceErrorKind, "undefined property '%s' on instance of %s", name, inst.Class.Name)

	case value.KindClass:
		cls := recv.AsObject().(*value.Class)
		if mv, ok := cls.FindMethod(name); ok {
			return mv, nil
		}
		return value.Nil(), m.fail(ReferenceErrorKind, "undefined method '%s' on class %s", name, cls.Name)

	case value.KindModule:
		mod := recv.AsObject().(*value.Module)
		env := environmentOf(mod.Env)
		v, err := env.Get(name)
		if err != nil {
			return value.Nil(), m.fail(ReferenceErrorKind, "module '%s' has no member '%s'", mod.Name, name)
		}
		return v, nil

	case value.KindObject:
		obj := recv.AsObject().(*value.MapObject)
		if v, ok := obj.Get(name); ok {
			return v, nil
		}
		return value.Nil(), nil

	case value.KindArray:
		arr := recv.AsObject().(*value.Array)
		if arrayMethodName(name) {
			return value.FromObject(&value.BoundArrayMethod{Receiver: arr, Name: value.ArrayMethodName(name)}), nil
		}
		return value.Nil(), m.fail(ReferenceErrorKind, "arrays have no property '%s'", name)

	case value.KindString:
		s := recv.AsObject().(*value.String)
		if stringMethodName(name) {
			return value.FromObject(&value.BoundStringMethod{Receiver: s, Name: value.StringMethodName(name)}), nil
		}
		return value.Nil(), m.fail(ReferenceErrorKind, "strings have no property '%s'", name)

	default:
		return value.Nil(), m.fail(TypeErrorKind, "cannot read property '%s' of %s", name, recv.Kind())
	}
}

func arrayMethodName(name string) bool {
	switch value.ArrayMethodName(name) {
	case value.ArrayLength, value.ArrayPush, value.ArrayPop, value.ArraySlice, value.ArrayMap,
		value.ArrayFilter, value.ArrayFind, value.ArrayIndexOf, value.ArrayJoin, value.ArrayReverse, value.ArraySort:
		return true
	}
	return false
}

func stringMethodName(name string) bool {
	switch value.StringMethodName(name) {
	case value.StringLength, value.StringContains, value.StringSplit, value.StringSubstring:
		return true
	}
	return false
}

// setProperty implements SET_PROPERTY.
func (m *VM) setProperty(recv value.Value, name string, v value.Value) error {
	switch recv.Kind() {
	case value.KindInstance:
		inst := recv.AsObject().(*value.Instance)
		inst.SetField(m.interned.Intern(name), v)
		return nil
	case value.KindObject:
		obj := recv.AsObject().(*value.MapObject)
		obj.Set(name, v)
		return nil
	case value.KindModule:
		mod := recv.AsObject().(*value.Module)
		environmentOf(mod.Env).Define(name, v)
		return nil
	default:
		return m.fail(TypeErrorKind, "cannot set property '%s' on %s", name, recv.Kind())
	}
}

// indexGet implements INDEX_GET: arr[i], obj["key"], str[i], buf[i].
func (m *VM) indexGet(recv, idx value.Value) (value.Value, error) {
	switch recv.Kind() {
	case value.KindArray:
		arr := recv.AsObject().(*value.Array)
		if !idx.IsNumber() {
			return value.Nil(), m.fail(TypeErrorKind, "array index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(arr.Elements) {
			return value.Nil(), m.fail(RangeErrorKind, "array index %d out of range [0,%d)", i, len(arr.Elements))
		}
		return arr.Elements[i], nil

	case value.KindObject:
		obj := recv.AsObject().(*value.MapObject)
		if !idx.IsString() {
			return value.Nil(), m.fail(TypeErrorKind, "object index must be a string")
		}
		if v, ok := obj.Get(idx.ToString()); ok {
			return v, nil
		}
		return value.Nil(), nil

	case value.KindString:
		s := recv.AsObject().(*value.String).Chars
		if !idx.IsNumber() {
			return value.Nil(), m.fail(TypeErrorKind, "string index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(s) {
			return value.Nil(), m.fail(RangeErrorKind, "string index %d out of range [0,%d)", i, len(s))
		}
		return value.FromObject(m.allocString(string(s[i]))), nil

	case value.KindBuffer:
		buf := recv.AsObject().(*value.Buffer)
		if !idx.IsNumber() {
			return value.Nil(), m.fail(TypeErrorKind, "buffer index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(buf.Bytes) {
			return value.Nil(), m.fail(RangeErrorKind, "buffer index %d out of range [0,%d)", i, len(buf.Bytes))
		}
		return value.Number(float64(buf.Bytes[i])), nil

	default:
		return value.Nil(), m.fail(TypeErrorKind, "cannot index into %s", recv.Kind())
	}
}

// indexSet implements INDEX_SET.
func (m *VM) indexSet(recv, idx, v value.Value) error {
	switch recv.Kind() {
	case value.KindArray:
		arr := recv.AsObject().(*value.Array)
		if !idx.IsNumber() {
			return m.fail(TypeErrorKind, "array index must be a number")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(arr.Elements) {
			return m.fail(RangeErrorKind, "array index %d out of range [0,%d)", i, len(arr.Elements))
		}
		arr.Elements[i] = v
		return nil

	case value.KindObject:
		obj := recv.AsObject().(*value.MapObject)
		if !idx.IsString() {
			return m.fail(TypeErrorKind, "object index must be a string")
		}
		obj.Set(idx.ToString(), v)
		return nil

	case value.KindBuffer:
		buf := recv.AsObject().(*value.Buffer)
		if !idx.IsNumber() || !v.IsNumber() {
			return m.fail(TypeErrorKind, "buffer index and value must be numbers")
		}
		i := int(idx.AsNumber())
		if i < 0 || i >= len(buf.Bytes) {
			return m.fail(RangeErrorKind, "buffer index %d out of range [0,%d)", i, len(buf.Bytes))
		}
		n := v.AsNumber()
		if n < 0 || n > 255 {
			return m.fail(RangeErrorKind, "buffer byte value %v out of range [0,255]", n)
		}
		buf.Bytes[i] = byte(n)
		return nil

	default:
		return m.fail(TypeErrorKind, "cannot index-assign into %s", recv.Kind())
	}
}
