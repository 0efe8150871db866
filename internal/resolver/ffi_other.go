//go:build !(darwin || freebsd || linux)

package resolver

import (
	"fmt"
	"runtime"
	"unsafe"
)

func unsupported() {
	panic(fmt.Sprintf("resolver: calling native module code is not supported on %s", runtime.GOOS))
}

func newParamsFunc(uintptr) ParamsFunc {
	return func(unsafe.Pointer) { unsupported() }
}

func newInitFunc(uintptr) InitFunc {
	return func(_, _, _ unsafe.Pointer) { unsupported() }
}

func newSingleTraceFunc(uintptr) SingleTraceFunc {
	return func(unsafe.Pointer, *int32, unsafe.Pointer, unsafe.Pointer) bool {
		unsupported()
		return false
	}
}

func newMultiTraceFunc(uintptr) MultiTraceFunc {
	return func(unsafe.Pointer, *int32, *int32, unsafe.Pointer, unsafe.Pointer) { unsupported() }
}
