// Package nativeabi implements the narrow C ABI native extensions are
// built against (spec §4.8): opaque VM/Value handles, type predicates,
// accessors, constructors, and native-function registration. The
// C-callable exported symbols themselves live in cmd/neutronabi, a
// package main cgo can actually export from; this package holds the
// Go-side logic so it stays reachable by ordinary Go tests instead of
// only existing behind a cgo build.
//
// Grounded on original_source/include/capi.h and
// original_source/src/core/capi.cpp: the same four operation groups
// (predicates, accessors, constructors, define_native) and the same
// native-function signature — (vm, argc, argv) -> value — adapted from
// reinterpret_cast over raw pointers to runtime/cgo.Handle, which gives
// the garbage collector a safe way to hand out opaque handles across
// the cgo boundary. The C++ original overwrites one static thread_local
// Value on every call and trusts the caller to copy it out before the
// next call; here every constructor mints its own handle that stays
// valid — and keeps its Value reachable — until the embedder releases
// it, so ReleaseValue is this ABI's one addition with no analog on the
// C++ side.
package nativeabi

import (
	"fmt"
	"runtime/cgo"

	"github.com/yasakei/neutron/pkg/value"
	"github.com/yasakei/neutron/pkg/vm"
)

// VMHandle and ValueHandle are the Go-side counterparts of capi.h's
// opaque NeutronVM*/NeutronValue* pointers.
type VMHandle uintptr

// ValueHandle is the Go-side counterpart of capi.h's NeutronValue*.
type ValueHandle uintptr

// WrapVM mints a handle for m, for cmd/neutronabi to hand to
// neutron_module_init as its NeutronVM* argument.
func WrapVM(m *vm.VM) VMHandle {
	return VMHandle(cgo.NewHandle(m))
}

// ReleaseVM releases a VM handle once a native module's init call, or a
// single native function invocation, returns.
func ReleaseVM(h VMHandle) {
	cgo.Handle(h).Delete()
}

func vmOf(h VMHandle) (m *vm.VM, err error) {
	defer func() {
		if recover() != nil {
			m, err = nil, fmt.Errorf("nativeabi: invalid VM handle")
		}
	}()
	v, ok := cgo.Handle(h).Value().(*vm.VM)
	if !ok {
		return nil, fmt.Errorf("nativeabi: invalid VM handle")
	}
	return v, nil
}

// WrapValue mints a handle for v, for cmd/neutronabi to hand to a
// native function as one of its argv entries, or to return as its
// result.
func WrapValue(v value.Value) ValueHandle {
	return ValueHandle(cgo.NewHandle(v))
}

// ReleaseValue frees a value handle. The embedder calls this once done
// with a NeutronValue*, replacing the C++ ABI's thread-local return
// slot, which never needed an explicit free because the next call
// silently clobbered it.
func ReleaseValue(h ValueHandle) {
	cgo.Handle(h).Delete()
}

func valueOf(h ValueHandle) (val value.Value, err error) {
	defer func() {
		if recover() != nil {
			val, err = value.Nil(), fmt.Errorf("nativeabi: invalid value handle")
		}
	}()
	v, ok := cgo.Handle(h).Value().(value.Value)
	if !ok {
		return value.Nil(), fmt.Errorf("nativeabi: invalid value handle")
	}
	return v, nil
}

// --- Predicates ---

func IsNil(h ValueHandle) bool    { return kindIs(h, value.KindNil) }
func IsBool(h ValueHandle) bool   { return kindIs(h, value.KindBool) }
func IsNumber(h ValueHandle) bool { return kindIs(h, value.KindNumber) }
func IsString(h ValueHandle) bool { return kindIs(h, value.KindString) }

func kindIs(h ValueHandle, k value.Kind) bool {
	v, err := valueOf(h)
	return err == nil && v.Kind() == k
}

// --- Accessors ---

// GetBool returns h's boolean payload, or false if h is not a bool
// handle (mirroring capi.cpp's unchecked std::get<bool>, but without the
// crash: a type mismatch here is a native-extension bug, not something
// worth taking the whole VM down for).
func GetBool(h ValueHandle) bool {
	v, err := valueOf(h)
	if err != nil {
		return false
	}
	return v.AsBool()
}

// GetNumber returns h's numeric payload, or 0 if h is not a number handle.
func GetNumber(h ValueHandle) float64 {
	v, err := valueOf(h)
	if err != nil {
		return 0
	}
	return v.AsNumber()
}

// GetString returns h's string payload, or "" if h is not a string
// handle. cmd/neutronabi's exported neutron_get_string additionally
// reports the byte length the way capi.cpp's out-parameter does.
func GetString(h ValueHandle) string {
	v, err := valueOf(h)
	if err != nil || !v.IsString() {
		return ""
	}
	return v.AsString()
}

// --- Constructors ---

func NewNil() ValueHandle        { return WrapValue(value.Nil()) }
func NewBool(b bool) ValueHandle { return WrapValue(value.Bool(b)) }
func NewNumber(n float64) ValueHandle {
	return WrapValue(value.Number(n))
}

// NewString allocates a GC-tracked Neutron string through the VM owning
// vmh, the same AllocString path pkg/module's built-ins use
// (pkg/vm/host.go), so a string a native extension hands back is
// tracked by the collector exactly like one produced from Neutron
// source.
func NewString(vmh VMHandle, s string) (ValueHandle, error) {
	m, err := vmOf(vmh)
	if err != nil {
		return 0, err
	}
	return WrapValue(value.FromObject(m.AllocString(s))), nil
}

// --- Native function registration ---

// NativeFn is the Go-side shape of the C ABI's native function pointer:
// (VM*, argc, argv) -> Value*, expressed with handles on both sides of
// the boundary. cmd/neutronabi's exported thunk adapts a C function
// pointer of that same shape to this type.
type NativeFn func(vmh VMHandle, args []ValueHandle) ValueHandle

// DefineNativeByHandle is DefineNative taking a VM handle instead of a
// *vm.VM, for cmd/neutronabi's exported neutron_define_native, which
// only ever has the opaque handle a native module's init call received.
func DefineNativeByHandle(vmh VMHandle, name string, arity int, fn NativeFn) error {
	m, err := vmOf(vmh)
	if err != nil {
		return err
	}
	DefineNative(m, name, arity, fn)
	return nil
}

// DefineNative registers fn as a global Neutron callable under name,
// the Go-side half of capi.cpp's neutron_define_native. Each call from
// Neutron code mints a fresh VM handle and one handle per argument,
// invokes fn, unwraps its result, and releases every handle it minted —
// a native extension only needs to call ReleaseValue itself for values
// it constructs but doesn't end up returning.
func DefineNative(m *vm.VM, name string, arity int, fn NativeFn) {
	m.Globals()[name] = value.FromObject(&value.NativeFn{
		Name:  name,
		Arity: arity,
		Fn: func(_ interface{}, args []value.Value) (value.Value, error) {
			vmh := WrapVM(m)
			defer ReleaseVM(vmh)

			argHandles := make([]ValueHandle, len(args))
			for i, a := range args {
				argHandles[i] = WrapValue(a)
			}
			defer func() {
				for _, h := range argHandles {
					ReleaseValue(h)
				}
			}()

			resultHandle := fn(vmh, argHandles)
			defer ReleaseValue(resultHandle)

			result, err := valueOf(resultHandle)
			if err != nil {
				return value.Nil(), fmt.Errorf("native function %q returned an invalid value handle", name)
			}
			return result, nil
		},
	})
}
