// Package catalog holds the validated set of dynamically resolved processing
// modules: their names, execution categories and port arities, together with
// the library root their native artifacts live under.
//
// A Catalog is built once from a catalog document and never mutated. The
// Holder owns the process's current catalog and replaces it all at once when
// the document is reloaded, so readers always see one complete catalog.
package catalog
