package resolver

import (
	"errors"
	"fmt"
)

// ErrResolverClosed is returned by Acquire after Close.
var ErrResolverClosed = errors.New("resolver is closed")

// LibraryNotFoundError reports a module library that is missing or that
// the dynamic linker refused to load.
type LibraryNotFoundError struct {
	Module     string
	Version    Version
	Path       string
	Diagnostic string // dynamic linker message
}

func (e *LibraryNotFoundError) Error() string {
	return fmt.Sprintf("opening shared library %s: does module %s exist? does version %s exist?\nsystem message: %s",
		e.Path, e.Module, e.Version.label(), e.Diagnostic)
}

// SymbolNotFoundError reports an entry point absent from a loaded library.
type SymbolNotFoundError struct {
	Module     string
	Version    Version
	Path       string
	Symbol     string
	Diagnostic string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("module %s version %s: symbol %s not found in %s\nsystem message: %s",
		e.Module, e.Version.label(), e.Symbol, e.Path, e.Diagnostic)
}
