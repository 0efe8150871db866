// Package cli implements the csmod command tree: catalog inspection and
// validation, the standard module list, module resolution probes, settings,
// and the HTTP introspection server.
package cli
