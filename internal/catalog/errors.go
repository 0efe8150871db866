package catalog

import "fmt"

// ConfigLoadError reports a catalog document that cannot be turned into a
// catalog at all: unreadable, malformed, schema-invalid, or pointing at an
// unusable library root.
type ConfigLoadError struct {
	Path   string // document path, empty for in-memory documents
	Module string // offending module, if the problem is per-entry
	Err    error
}

func (e *ConfigLoadError) Error() string {
	switch {
	case e.Path != "" && e.Module != "":
		return fmt.Sprintf("loading catalog %s: module %s: %v", e.Path, e.Module, e.Err)
	case e.Path != "":
		return fmt.Sprintf("loading catalog %s: %v", e.Path, e.Err)
	case e.Module != "":
		return fmt.Sprintf("loading catalog: module %s: %v", e.Module, e.Err)
	default:
		return fmt.Sprintf("loading catalog: %v", e.Err)
	}
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// PortArityError reports a declared port count outside [MinPorts, MaxPorts].
type PortArityError struct {
	Module string
	Port   string // "inport" or "outport"
	Count  int
}

func (e *PortArityError) Error() string {
	if e.Count < MinPorts {
		return fmt.Sprintf("module %s %s %d < %d", e.Module, e.Port, e.Count, MinPorts)
	}
	return fmt.Sprintf("module %s %s %d > %d", e.Module, e.Port, e.Count, MaxPorts)
}

// ArtifactMissingError reports a declared module whose library is absent
// from the library root. It does not stop the catalog from loading.
type ArtifactMissingError struct {
	Module string
	Path   string
}

func (e *ArtifactMissingError) Error() string {
	return fmt.Sprintf("can't find module %s: %s does not exist", e.Module, e.Path)
}
