//go:build darwin || freebsd || linux

package resolver

import (
	"sync"

	"github.com/ebitengine/purego"
)

// dlMu serializes every call into the dynamic linker. dlopen and dlsym are
// not reentrant on every platform this builds for.
var dlMu sync.Mutex

type nativeLoader struct{}

// NativeLoader returns the loader backed by the platform dynamic linker.
// Libraries are opened lazily bound and with local symbol visibility.
func NativeLoader() Loader { return nativeLoader{} }

func (nativeLoader) Open(path string) (Library, error) {
	dlMu.Lock()
	defer dlMu.Unlock()

	h, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	return &nativeLibrary{path: path, handle: h}, nil
}

type nativeLibrary struct {
	path   string
	handle uintptr
	once   sync.Once
	err    error
}

func (l *nativeLibrary) Path() string { return l.path }

func (l *nativeLibrary) Symbol(name string) (uintptr, error) {
	dlMu.Lock()
	defer dlMu.Unlock()
	return purego.Dlsym(l.handle, name)
}

func (l *nativeLibrary) Close() error {
	l.once.Do(func() {
		dlMu.Lock()
		defer dlMu.Unlock()
		l.err = purego.Dlclose(l.handle)
	})
	return l.err
}
