// Package resolvertest provides an in-memory resolver.Loader for tests.
package resolvertest

import (
	"fmt"
	"sync"

	"github.com/cseis-labs/csmod/internal/resolver"
)

// Loader serves libraries registered with AddLibrary and counts how they
// are opened and closed. Symbol addresses are fake and must never be
// called.
type Loader struct {
	mu      sync.Mutex
	libs    map[string][]string
	gate    <-chan struct{}
	opens   int
	closes  int
	current int
}

// NewLoader returns an empty fake loader.
func NewLoader() *Loader {
	return &Loader{libs: make(map[string][]string)}
}

// AddLibrary makes path openable, exporting the given symbols.
func (l *Loader) AddLibrary(path string, symbols ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.libs[path] = append([]string(nil), symbols...)
}

// AddModule makes path openable with all three entry points of module.
func (l *Loader) AddModule(path, module string) {
	l.AddLibrary(path,
		resolver.ParamsSymbol(module),
		resolver.InitSymbol(module),
		resolver.ExecSymbol(module),
	)
}

// Gate makes every Open wait until ch is closed.
func (l *Loader) Gate(ch <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gate = ch
}

// Open implements resolver.Loader.
func (l *Loader) Open(path string) (resolver.Library, error) {
	l.mu.Lock()
	gate := l.gate
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	symbols, ok := l.libs[path]
	if !ok {
		return nil, fmt.Errorf("%s: cannot open shared object file: No such file or directory", path)
	}
	l.opens++
	l.current++
	return &library{loader: l, path: path, symbols: symbols}, nil
}

// Opens returns how many times a library was opened.
func (l *Loader) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Closes returns how many times a library was closed.
func (l *Loader) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// OpenCount returns how many libraries are open right now.
func (l *Loader) OpenCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

type library struct {
	loader  *Loader
	path    string
	symbols []string
	closed  bool
}

func (lib *library) Path() string { return lib.path }

func (lib *library) Symbol(name string) (uintptr, error) {
	for i, s := range lib.symbols {
		if s == name {
			return uintptr(0x1000 + 0x10*i), nil
		}
	}
	return 0, fmt.Errorf("%s: undefined symbol: %s", lib.path, name)
}

func (lib *library) Close() error {
	lib.loader.mu.Lock()
	defer lib.loader.mu.Unlock()
	if lib.closed {
		return fmt.Errorf("%s: already closed", lib.path)
	}
	lib.closed = true
	lib.loader.closes++
	lib.loader.current--
	return nil
}
