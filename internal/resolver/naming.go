package resolver

import (
	"strings"

	"github.com/cseis-labs/csmod/internal/catalog"
)

// Symbol name prefixes. The full name is prefix + lowercased module + "_".
const (
	paramsPrefix = "_params_mod_"
	initPrefix   = "_init_mod_"
	execPrefix   = "_exec_mod_"
)

// ParamsSymbol returns the parameter definition symbol for a module.
func ParamsSymbol(module string) string { return symbolName(paramsPrefix, module) }

// InitSymbol returns the init phase symbol for a module.
func InitSymbol(module string) string { return symbolName(initPrefix, module) }

// ExecSymbol returns the exec phase symbol for a module.
func ExecSymbol(module string) string { return symbolName(execPrefix, module) }

func symbolName(prefix, module string) string {
	return prefix + strings.ToLower(module) + "_"
}

// artifactPath derives the versioned artifact path from the unversioned one
// the catalog checked at load time.
func artifactPath(entry catalog.Entry, v Version) string {
	return entry.Artifact + v.Suffix()
}
