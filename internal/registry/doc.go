// Package registry holds the fixed set of standard modules built into the
// processing engine. Standard modules are linked into the engine itself and
// are never loaded from the library root, so a catalog name that matches one
// here is always served by the engine.
package registry
