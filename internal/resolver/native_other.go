//go:build !(darwin || freebsd || linux)

package resolver

import (
	"fmt"
	"runtime"
)

type nativeLoader struct{}

// NativeLoader returns a loader that fails: module libraries are only
// supported where the dynamic linker is reachable without cgo.
func NativeLoader() Loader { return nativeLoader{} }

func (nativeLoader) Open(path string) (Library, error) {
	return nil, fmt.Errorf("dynamic module loading is not supported on %s", runtime.GOOS)
}
