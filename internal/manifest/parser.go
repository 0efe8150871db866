package manifest

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// SchemaError reports a document that does not satisfy the catalog schema.
type SchemaError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "catalog document %s is invalid", e.Path)
	} else {
		b.WriteString("catalog document is invalid")
	}
	for _, issue := range e.Issues {
		loc := issue.Path
		if loc == "" {
			loc = "/"
		}
		fmt.Fprintf(&b, "\n  %s: %s", loc, issue.Message)
	}
	return b.String()
}

// DetectFormat picks the document format from the file extension. Anything
// that is not .xml or .json is read as YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// ParseFile reads, validates and decodes the catalog document at path.
func ParseFile(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, DetectFormat(path))
	if err != nil {
		if se, ok := err.(*SchemaError); ok {
			se.Path = path
			return nil, se
		}
		return nil, fmt.Errorf("parsing catalog document %s: %w", path, err)
	}
	return doc, nil
}

// Parse validates and decodes a catalog document held in memory.
func Parse(data []byte, format Format) (*Document, error) {
	if format == FormatXML {
		return parseXML(data)
	}

	// JSON is a subset of YAML, so both go through the YAML decoder.
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &SchemaError{Issues: result.Issues}
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	doc.LibDir = strings.TrimSpace(doc.LibDir)
	return &doc, nil
}

func parseXML(data []byte) (*Document, error) {
	var raw xmlDocument
	dec := xml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}

	doc := &Document{LibDir: strings.TrimSpace(raw.LibDir)}
	for _, m := range raw.Modules {
		doc.Modules = append(doc.Modules, ModuleDecl{
			Name:     strings.TrimSpace(m.Name),
			Category: strings.TrimSpace(m.Type),
			InPorts:  m.InPorts,
			OutPorts: m.OutPorts,
		})
	}

	result, err := ValidateDocument(doc)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &SchemaError{Issues: result.Issues}
	}
	return doc, nil
}

// readFile reads the contents of a file at the given path.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	return data, nil
}
