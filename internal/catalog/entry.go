package catalog

import (
	"fmt"
	"strings"
)

// Port arity bounds for every declared module.
const (
	MinPorts = 0
	MaxPorts = 2
)

// DefaultPrefix is prepended to the lowercased module name to form the
// artifact file name.
const DefaultPrefix = "libas_"

// artifactExt is the shared-library extension of module artifacts.
const artifactExt = ".so"

// Category is the execution kind of a module.
type Category int

const (
	SingleTrace Category = iota + 1
	MultiTrace
	WholeFile
	Input
)

// Categories lists the closed category set in declaration order.
var Categories = []Category{SingleTrace, MultiTrace, WholeFile, Input}

// categoryAliases maps every accepted spelling (lowercased) to its category.
// The upper-case tokens are the ones the engine's legacy module lists use,
// including the historical EXE_MULTIE_TRACE misspelling.
var categoryAliases = map[string]Category{
	"single-trace":     SingleTrace,
	"single":           SingleTrace,
	"exe_single_trace": SingleTrace,
	"multi-trace":      MultiTrace,
	"multi":            MultiTrace,
	"ensemble":         MultiTrace,
	"exe_multi_trace":  MultiTrace,
	"exe_multie_trace": MultiTrace,
	"whole-file":       WholeFile,
	"file":             WholeFile,
	"exe_file":         WholeFile,
	"input":            Input,
	"input-source":     Input,
	"exec_type_input":  Input,
}

// ParseCategory maps a document spelling onto the closed category set.
func ParseCategory(s string) (Category, error) {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("unknown module category %q", s)
}

// String returns the canonical spelling.
func (c Category) String() string {
	switch c {
	case SingleTrace:
		return "single-trace"
	case MultiTrace:
		return "multi-trace"
	case WholeFile:
		return "whole-file"
	case Input:
		return "input"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText renders the canonical spelling for JSON and YAML output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any spelling ParseCategory does.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Entry is one declared module. Entries are values; a Catalog hands out
// copies so nothing outside the package can change them.
type Entry struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	InPorts  int      `json:"inport"`
	OutPorts int      `json:"outport"`

	// Artifact is the unversioned library path checked at load time.
	Artifact string `json:"artifact"`
}

// ArtifactFile returns the unversioned artifact file name for a module:
// <prefix><lowercased name>.so.
func ArtifactFile(prefix, name string) string {
	return prefix + strings.ToLower(name) + artifactExt
}
