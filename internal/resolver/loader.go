package resolver

// Loader opens shared libraries. The native implementation wraps the
// platform dynamic linker; tests substitute a fake.
type Loader interface {
	Open(path string) (Library, error)
}

// Library is an open shared library.
type Library interface {
	Path() string

	// Symbol returns the address of an exported symbol. The address never
	// leaves this package untyped.
	Symbol(name string) (uintptr, error)

	Close() error
}
