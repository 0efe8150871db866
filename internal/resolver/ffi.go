//go:build darwin || freebsd || linux

package resolver

import "github.com/ebitengine/purego"

// The constructors below are the only place a symbol address becomes a Go
// function. Nothing checks that the library really exports these
// signatures: a module built against a different engine ABI crashes on
// first call.

func newParamsFunc(addr uintptr) ParamsFunc {
	var fn ParamsFunc
	purego.RegisterFunc(&fn, addr)
	return fn
}

func newInitFunc(addr uintptr) InitFunc {
	var fn InitFunc
	purego.RegisterFunc(&fn, addr)
	return fn
}

func newSingleTraceFunc(addr uintptr) SingleTraceFunc {
	var fn SingleTraceFunc
	purego.RegisterFunc(&fn, addr)
	return fn
}

func newMultiTraceFunc(addr uintptr) MultiTraceFunc {
	var fn MultiTraceFunc
	purego.RegisterFunc(&fn, addr)
	return fn
}
