// Command neutronabi builds the C-callable shared library native
// extensions link against: the exported symbols spec §4.8 describes,
// implemented over pkg/nativeabi's handle-based Go logic. Build it with:
//
//	go build -buildmode=c-shared -o libneutronabi.so ./cmd/neutronabi
//
// which produces libneutronabi.so plus a generated libneutronabi.h a
// native extension's neutron_module_init can #include — the same role
// original_source/include/capi.h played for the runtime this is
// grounded on (original_source/src/core/capi.cpp holds that runtime's
// matching extern "C" implementations, reproduced here symbol-for-symbol
// so an existing native extension's call sites don't need renaming).
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef uintptr_t NeutronVM;
typedef uintptr_t NeutronValue;
typedef NeutronValue (*NeutronNativeFn)(NeutronVM vm, int argc, NeutronValue* argv);

static NeutronValue neutronabi_call_native(NeutronNativeFn fn, NeutronVM vm, int argc, NeutronValue* argv) {
	return fn(vm, argc, argv);
}
*/
import "C"

import (
	"unsafe"

	"github.com/yasakei/neutron/pkg/nativeabi"
)

// main is never called — a c-shared build only needs this package to
// compile as package main, all real work happens through the exported
// functions below.
func main() {}

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

// --- Predicates ---

//export neutron_is_nil
func neutron_is_nil(v C.NeutronValue) C.int {
	return boolToC(nativeabi.IsNil(nativeabi.ValueHandle(v)))
}

//export neutron_is_boolean
func neutron_is_boolean(v C.NeutronValue) C.int {
	return boolToC(nativeabi.IsBool(nativeabi.ValueHandle(v)))
}

//export neutron_is_number
func neutron_is_number(v C.NeutronValue) C.int {
	return boolToC(nativeabi.IsNumber(nativeabi.ValueHandle(v)))
}

//export neutron_is_string
func neutron_is_string(v C.NeutronValue) C.int {
	return boolToC(nativeabi.IsString(nativeabi.ValueHandle(v)))
}

// --- Accessors ---

//export neutron_get_boolean
func neutron_get_boolean(v C.NeutronValue) C.int {
	return boolToC(nativeabi.GetBool(nativeabi.ValueHandle(v)))
}

//export neutron_get_number
func neutron_get_number(v C.NeutronValue) C.double {
	return C.double(nativeabi.GetNumber(nativeabi.ValueHandle(v)))
}

// neutron_get_string mirrors capi.cpp's out-parameter length convention,
// but — unlike the C++ version's pointer into a live std::string — hands
// back a copy the caller owns; free it with neutron_free_string.
//
//export neutron_get_string
func neutron_get_string(v C.NeutronValue, length *C.size_t) *C.char {
	s := nativeabi.GetString(nativeabi.ValueHandle(v))
	if length != nil {
		*length = C.size_t(len(s))
	}
	return C.CString(s)
}

//export neutron_free_string
func neutron_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

// --- Constructors ---

//export neutron_new_nil
func neutron_new_nil() C.NeutronValue {
	return C.NeutronValue(nativeabi.NewNil())
}

//export neutron_new_boolean
func neutron_new_boolean(b C.int) C.NeutronValue {
	return C.NeutronValue(nativeabi.NewBool(b != 0))
}

//export neutron_new_number
func neutron_new_number(n C.double) C.NeutronValue {
	return C.NeutronValue(nativeabi.NewNumber(float64(n)))
}

//export neutron_new_string
func neutron_new_string(vm C.NeutronVM, chars *C.char, length C.size_t) C.NeutronValue {
	s := C.GoStringN(chars, C.int(length))
	h, err := nativeabi.NewString(nativeabi.VMHandle(vm), s)
	if err != nil {
		return C.NeutronValue(nativeabi.NewNil())
	}
	return C.NeutronValue(h)
}

// neutron_release_value has no analog in capi.cpp, which never frees
// its thread-local return slot. Handles minted by this ABI are backed
// by runtime/cgo.Handle entries that outlive any single call, so the
// embedder must release each one it no longer needs.
//
//export neutron_release_value
func neutron_release_value(v C.NeutronValue) {
	nativeabi.ReleaseValue(nativeabi.ValueHandle(v))
}

// --- Native function registration ---

//export neutron_define_native
func neutron_define_native(vm C.NeutronVM, name *C.char, fn C.NeutronNativeFn, arity C.int) {
	goName := C.GoString(name)
	cFn := fn
	nativeabi.DefineNativeByHandle(nativeabi.VMHandle(vm), goName, int(arity),
		func(vmh nativeabi.VMHandle, args []nativeabi.ValueHandle) nativeabi.ValueHandle {
			argv := make([]C.NeutronValue, len(args))
			for i, h := range args {
				argv[i] = C.NeutronValue(h)
			}
			var argvPtr *C.NeutronValue
			if len(argv) > 0 {
				argvPtr = &argv[0]
			}
			result := C.neutronabi_call_native(cFn, C.NeutronVM(vmh), C.int(len(args)), argvPtr)
			return nativeabi.ValueHandle(result)
		})
}
