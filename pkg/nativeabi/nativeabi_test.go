package nativeabi

import (
	"testing"

	"github.com/yasakei/neutron/pkg/value"
	"github.com/yasakei/neutron/pkg/vm"
)

func TestPredicatesMatchConstructedHandles(t *testing.T) {
	nilH := NewNil()
	boolH := NewBool(true)
	numH := NewNumber(42)

	if !IsNil(nilH) || IsBool(nilH) || IsNumber(nilH) || IsString(nilH) {
		t.Fatalf("nil handle did not report as nil-only")
	}
	if !IsBool(boolH) || IsNil(boolH) {
		t.Fatalf("bool handle did not report as bool-only")
	}
	if !GetBool(boolH) {
		t.Fatalf("GetBool(true) = false")
	}
	if !IsNumber(numH) {
		t.Fatalf("number handle did not report as number")
	}
	if got := GetNumber(numH); got != 42 {
		t.Fatalf("GetNumber() = %v, want 42", got)
	}
}

func TestInvalidHandleAccessorsDoNotPanic(t *testing.T) {
	bogus := ValueHandle(0)
	if IsNil(bogus) || IsBool(bogus) || IsNumber(bogus) || IsString(bogus) {
		t.Fatalf("a released/bogus handle should not match any predicate")
	}
	if GetNumber(bogus) != 0 {
		t.Fatalf("GetNumber on a bogus handle should default to 0")
	}
	if GetString(bogus) != "" {
		t.Fatalf("GetString on a bogus handle should default to \"\"")
	}
}

func TestNewStringAllocatesThroughTheOwningVM(t *testing.T) {
	m := vm.New()
	vmh := WrapVM(m)
	defer ReleaseVM(vmh)

	h, err := NewString(vmh, "hello")
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	if !IsString(h) {
		t.Fatalf("handle from NewString is not a string")
	}
	if got := GetString(h); got != "hello" {
		t.Fatalf("GetString() = %q, want %q", got, "hello")
	}
}

func TestDefineNativeRegistersACallableGlobal(t *testing.T) {
	m := vm.New()

	DefineNative(m, "double", 1, func(vmh VMHandle, args []ValueHandle) ValueHandle {
		return WrapValue(value.Number(GetNumber(args[0]) * 2))
	})

	global, ok := m.Globals()["double"]
	if !ok {
		t.Fatalf("define_native did not install a global named %q", "double")
	}
	fn, ok := global.AsObject().(*value.NativeFn)
	if !ok {
		t.Fatalf("global %q is not a *value.NativeFn", "double")
	}
	if fn.Arity != 1 {
		t.Fatalf("arity = %d, want 1", fn.Arity)
	}

	result, err := fn.Fn(nil, []value.Value{value.Number(21)})
	if err != nil {
		t.Fatalf("calling native: %v", err)
	}
	if result.AsNumber() != 42 {
		t.Fatalf("double(21) = %v, want 42", result.AsNumber())
	}
}

func TestDefineNativeByHandleRejectsAnInvalidVMHandle(t *testing.T) {
	if err := DefineNativeByHandle(VMHandle(0), "noop", 0, func(VMHandle, []ValueHandle) ValueHandle {
		return NewNil()
	}); err == nil {
		t.Fatalf("expected an error for a bogus VM handle")
	}
}
