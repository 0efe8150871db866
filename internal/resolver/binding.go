package resolver

import (
	"sync"
	"unsafe"

	"github.com/cseis-labs/csmod/internal/catalog"
)

// Entry point signatures. The pointer arguments are engine objects the
// executor owns; this package never dereferences them.
type (
	// ParamsFunc fills a parameter definition.
	ParamsFunc func(paramDef unsafe.Pointer)

	// InitFunc runs the init phase.
	InitFunc func(params, initEnv, log unsafe.Pointer)

	// SingleTraceFunc processes one trace. port receives the output port
	// and the return value reports whether the trace is kept.
	SingleTraceFunc func(trace unsafe.Pointer, port *int32, execEnv, log unsafe.Pointer) bool

	// MultiTraceFunc processes a gather of traces. numToKeep receives how
	// many traces the module retains for its next call.
	MultiTraceFunc func(gather unsafe.Pointer, port, numToKeep *int32, execEnv, log unsafe.Pointer)
)

// Exec is the exec entry point typed by module category. It is either a
// SingleTraceExec or a MultiTraceExec.
type Exec interface {
	Symbol() string
	exec()
}

// SingleTraceExec is the exec entry point of single-trace and input modules.
type SingleTraceExec struct {
	Name string
	Call SingleTraceFunc
}

func (e SingleTraceExec) Symbol() string { return e.Name }
func (SingleTraceExec) exec()            {}

// MultiTraceExec is the exec entry point of ensemble and whole-file modules.
type MultiTraceExec struct {
	Name string
	Call MultiTraceFunc
}

func (e MultiTraceExec) Symbol() string { return e.Name }
func (MultiTraceExec) exec()            {}

// Binding is a module library with its entry points resolved. The
// functions are only valid until the binding is closed.
type Binding struct {
	Module   string
	Version  Version
	Path     string
	Category catalog.Category

	Params ParamsFunc
	Init   InitFunc
	Exec   Exec

	lib       Library
	onClose   func(*Binding)
	closeOnce sync.Once
	closeErr  error
}

// SingleTrace returns the single-trace exec function, or nil when the
// module is not single-trace.
func (b *Binding) SingleTrace() SingleTraceFunc {
	if e, ok := b.Exec.(SingleTraceExec); ok {
		return e.Call
	}
	return nil
}

// MultiTrace returns the multi-trace exec function, or nil when the module
// is not multi-trace.
func (b *Binding) MultiTrace() MultiTraceFunc {
	if e, ok := b.Exec.(MultiTraceExec); ok {
		return e.Call
	}
	return nil
}

// Close releases the library. It is safe to call more than once.
func (b *Binding) Close() error {
	b.closeOnce.Do(func() {
		if b.lib == nil {
			return
		}
		b.closeErr = b.lib.Close()
		if b.onClose != nil {
			b.onClose(b)
		}
	})
	return b.closeErr
}

// singleTraceCategory reports whether a category's exec symbol takes a single trace.
// Input modules generate one trace per call; whole-file modules see the
// whole gather.
func singleTraceCategory(c catalog.Category) bool {
	return c == catalog.SingleTrace || c == catalog.Input
}
