package vm

import (
	"sort"
	"strings"

	"github.com/yasakei/neutron/pkg/value"
)

// maxFrames bounds recursion depth; exceeding it raises the StackError
// spec §7 names rather than letting a runaway Go-level recursion panic.
const maxFrames = 2048

// callValue implements spec §4.2's callValue dispatch: the stack already
// holds [callee, arg0...argN-1] with callee at position
// len(stack)-argCount-1. Each branch either pushes a new CallFrame (for
// Function/BoundMethod/Class-with-initializer — control returns to run()'s
// loop, which executes the new frame next) or resolves synchronously,
// replacing callee+args with a result in place (NativeFn, BoundArrayMethod,
// BoundStringMethod, Class-without-initializer).
func (m *VM) callValue(callee value.Value, argCount int) error {
	if !callee.IsObject() {
		return m.fail(TypeErrorKind, "%s is not callable", callee.Kind())
	}
	switch obj := callee.AsObject().(type) {
	case *value.Function:
		return m.callFunction(obj, argCount, false, false)
	case *value.NativeFn:
		return m.callNative(obj, argCount)
	case *value.BoundMethod:
		return m.callBoundMethod(obj, argCount)
	case *value.BoundArrayMethod:
		return m.callArrayMethod(obj, argCount)
	case *value.BoundStringMethod:
		return m.callStringMethod(obj, argCount)
	case *value.Class:
		return m.callClass(obj, argCount)
	default:
		return m.fail(TypeErrorKind, "%s is not callable", callee.Kind())
	}
}

func (m *VM) currentFile() string {
	if len(m.frames) == 0 {
		return "<script>"
	}
	return m.frames[len(m.frames)-1].File
}

func (m *VM) callFunction(fn *value.Function, argCount int, isBound, isInit bool) error {
	if fn.Arity != argCount {
		return m.fail(ArgumentErrorKind, "expected %d arguments but got %d", fn.Arity, argCount)
	}
	if len(m.frames) >= maxFrames {
		return m.fail(StackErrorKind, "stack overflow")
	}
	var closure *ClosureFrame
	if fn.Closure != nil {
		closure = fn.Closure.(*ClosureFrame)
	}
	slotOffset := len(m.stack) - argCount - 1
	m.frames = append(m.frames, CallFrame{
		Fn: fn, Closure: closure, IP: 0, SlotOffset: slotOffset,
		File: m.currentFile(), IsBoundMethod: isBound, IsInitializer: isInit,
	})
	return nil
}

func (m *VM) callNative(fn *value.NativeFn, argCount int) error {
	if fn.Arity >= 0 && fn.Arity != argCount {
		return m.fail(ArgumentErrorKind, "expected %d arguments but got %d", fn.Arity, argCount)
	}
	args := m.popCallArgs(argCount)
	result, err := fn.Fn(m, args)
	if err != nil {
		if ne, ok := err.(*RuntimeError); ok {
			return ne
		}
		return m.fail(RuntimeErrorKind, "%s", err.Error())
	}
	m.push(result)
	return nil
}

func (m *VM) callBoundMethod(bm *value.BoundMethod, argCount int) error {
	slot := len(m.stack) - argCount - 1
	m.stack[slot] = bm.Receiver
	isInit := bm.Method.Name == "init" || bm.Method.Name == "initialize"
	return m.callFunction(bm.Method, argCount, true, isInit)
}

func (m *VM) callClass(cls *value.Class, argCount int) error {
	slot := len(m.stack) - argCount - 1
	inst := m.allocInstance(cls)
	m.stack[slot] = value.FromObject(inst)

	if !cls.Initializer.IsNil() {
		fn, ok := cls.Initializer.AsObject().(*value.Function)
		if !ok {
			return m.fail(RuntimeErrorKind, "class %s has a malformed initializer", cls.Name)
		}
		return m.callFunction(fn, argCount, true, true)
	}
	if argCount != 0 {
		return m.fail(ArgumentErrorKind, "class %s takes no arguments", cls.Name)
	}
	return nil
}

// doReturn unwinds the top call frame per spec §4.2: discard it, resize
// the stack to where its callee slot sat, and push the return value — or,
// for an initializer frame, the receiver itself (an initializer's
// explicit return value is discarded; it always yields `this`).
func (m *VM) doReturn(result value.Value, minFrameDepth int) (bool, error) {
	f := m.frames[len(m.frames)-1]
	receiver := m.stack[f.SlotOffset]
	m.frames = m.frames[:len(m.frames)-1]
	m.stack = m.stack[:f.SlotOffset]

	if f.IsInitializer {
		m.push(receiver)
	} else {
		m.push(result)
	}

	if len(m.frames) <= minFrameDepth {
		return true, nil
	}
	return false, nil
}

// popCallArgs pops argCount arguments (restoring source order) followed by
// the callee itself, leaving the stack as it was before the call.
func (m *VM) popCallArgs(argCount int) []value.Value {
	args := make([]value.Value, argCount)
	for i := argCount - 1; i >= 0; i-- {
		args[i] = m.pop()
	}
	m.pop()
	return args
}

// invoke calls callee with args from native Go code (used by array
// map/filter/find/sort and the process scheduler to re-enter the
// interpreter for a user-supplied function) and returns its Neutron
// result as a plain Go value, leaving the operand stack exactly as it
// found it.
func (m *VM) invoke(callee value.Value, args []value.Value) (value.Value, error) {
	base := len(m.stack)
	m.push(callee)
	for _, a := range args {
		m.push(a)
	}
	beforeFrames := len(m.frames)
	if err := m.callValue(callee, len(args)); err != nil {
		return value.Nil(), err
	}
	if len(m.frames) > beforeFrames {
		if _, err := m.run(len(m.frames) - 1); err != nil {
			return value.Nil(), err
		}
	}
	result := m.stack[len(m.stack)-1]
	m.stack = m.stack[:base]
	return result, nil
}

// callArrayMethod dispatches the fixed array method table (spec §4.2).
func (m *VM) callArrayMethod(bm *value.BoundArrayMethod, argCount int) error {
	args := m.popCallArgs(argCount)
	arr := bm.Receiver

	switch bm.Name {
	case value.ArrayLength:
		m.push(value.Number(float64(len(arr.Elements))))

	case value.ArrayPush:
		arr.Elements = append(arr.Elements, args...)
		m.push(value.Number(float64(len(arr.Elements))))

	case value.ArrayPop:
		if len(arr.Elements) == 0 {
			return m.fail(RangeErrorKind, "pop from an empty array")
		}
		last := arr.Elements[len(arr.Elements)-1]
		arr.Elements = arr.Elements[:len(arr.Elements)-1]
		m.push(last)

	case value.ArraySlice:
		start, end := 0, len(arr.Elements)
		if len(args) > 0 {
			start = int(args[0].AsNumber())
		}
		if len(args) > 1 {
			end = int(args[1].AsNumber())
		}
		if start < 0 {
			start = 0
		}
		if end > len(arr.Elements) {
			end = len(arr.Elements)
		}
		if start > end {
			return m.fail(RangeErrorKind, "slice start %d greater than end %d", start, end)
		}
		out := make([]value.Value, end-start)
		copy(out, arr.Elements[start:end])
		m.push(value.FromObject(m.allocArray(out)))

	case value.ArrayMap:
		if len(args) != 1 {
			return m.fail(ArgumentErrorKind, "map expects one function argument")
		}
		out := make([]value.Value, len(arr.Elements))
		for i, e := range arr.Elements {
			r, err := m.invoke(args[0], []value.Value{e})
			if err != nil {
				return err
			}
			out[i] = r
			m.protect(r)
		}
		m.unprotectAll()
		m.push(value.FromObject(m.allocArray(out)))

	case value.ArrayFilter:
		if len(args) != 1 {
			return m.fail(ArgumentErrorKind, "filter expects one function argument")
		}
		out := make([]value.Value, 0, len(arr.Elements))
		for _, e := range arr.Elements {
			r, err := m.invoke(args[0], []value.Value{e})
			if err != nil {
				return err
			}
			if r.Truthy() {
				out = append(out, e)
				m.protect(e)
			}
		}
		m.unprotectAll()
		m.push(value.FromObject(m.allocArray(out)))

	case value.ArrayFind:
		if len(args) != 1 {
			return m.fail(ArgumentErrorKind, "find expects one function argument")
		}
		for _, e := range arr.Elements {
			r, err := m.invoke(args[0], []value.Value{e})
			if err != nil {
				return err
			}
			if r.Truthy() {
				m.push(e)
				return nil
			}
		}
		m.push(value.Nil())

	case value.ArrayIndexOf:
		if len(args) != 1 {
			return m.fail(ArgumentErrorKind, "indexOf expects one argument")
		}
		idx := -1
		for i, e := range arr.Elements {
			if value.Equal(e, args[0]) {
				idx = i
				break
			}
		}
		m.push(value.Number(float64(idx)))

	case value.ArrayJoin:
		sep := ","
		if len(args) > 0 {
			sep = args[0].ToString()
		}
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = e.ToString()
		}
		m.push(value.FromObject(m.allocString(strings.Join(parts, sep))))

	case value.ArrayReverse:
		for i, j := 0, len(arr.Elements)-1; i < j; i, j = i+1, j-1 {
			arr.Elements[i], arr.Elements[j] = arr.Elements[j], arr.Elements[i]
		}
		m.push(value.FromObject(arr))

	case value.ArraySort:
		if err := m.sortArray(arr, args); err != nil {
			return err
		}
		m.push(value.FromObject(arr))

	default:
		return m.fail(RuntimeErrorKind, "unknown array method %s", bm.Name)
	}
	return nil
}

// sortArray sorts arr in place, ascending by default (numbers
// numerically, strings lexicographically) or by a supplied comparator
// function returning a negative/zero/positive number, matching the
// three-way contract original_source's sort() primitive documents.
func (m *VM) sortArray(arr *value.Array, args []value.Value) error {
	var sortErr error
	less := func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		a, b := arr.Elements[i], arr.Elements[j]
		if len(args) == 1 {
			r, err := m.invoke(args[0], []value.Value{a, b})
			if err != nil {
				sortErr = err
				return false
			}
			if !r.IsNumber() {
				sortErr = m.fail(TypeErrorKind, "sort comparator must return a number")
				return false
			}
			return r.AsNumber() < 0
		}
		if a.IsNumber() && b.IsNumber() {
			return a.AsNumber() < b.AsNumber()
		}
		return a.ToString() < b.ToString()
	}
	sort.SliceStable(arr.Elements, less)
	return sortErr
}

// callStringMethod dispatches the fixed string method table (spec §4.2).
func (m *VM) callStringMethod(bm *value.BoundStringMethod, argCount int) error {
	args := m.popCallArgs(argCount)
	s := bm.Receiver.Chars

	switch bm.Name {
	case value.StringLength:
		m.push(value.Number(float64(len(s))))
	case value.StringContains:
		if len(args) != 1 {
			return m.fail(ArgumentErrorKind, "contains expects one argument")
		}
		m.push(value.Bool(strings.Contains(s, args[0].ToString())))
	case value.StringSplit:
		sep := ""
		if len(args) > 0 {
			sep = args[0].ToString()
		}
		var parts []string
		if sep == "" {
			parts = strings.Split(s, "")
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.FromObject(m.allocString(p))
		}
		m.push(value.FromObject(m.allocArray(out)))
	case value.StringSubstring:
		if len(args) != 2 {
			return m.fail(ArgumentErrorKind, "substring expects two arguments")
		}
		start, end := int(args[0].AsNumber()), int(args[1].AsNumber())
		if start < 0 || end > len(s) || start > end {
			return m.fail(RangeErrorKind, "substring bounds [%d,%d) out of range for length %d", start, end, len(s))
		}
		m.push(value.FromObject(m.allocString(s[start:end])))
	default:
		return m.fail(RuntimeErrorKind, "unknown string method %s", bm.Name)
	}
	return nil
}
