package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cseis-labs/csmod/internal/manifest"
	"github.com/cseis-labs/csmod/internal/platform"
	"github.com/rs/zerolog"
)

// Options tune how a catalog document is turned into a Catalog.
type Options struct {
	// Prefix is prepended to lowercased module names to form artifact names.
	// Empty means DefaultPrefix.
	Prefix string

	// LibraryRoot overrides the document's libdir when non-empty.
	LibraryRoot string

	Logger zerolog.Logger
}

func (o Options) prefix() string {
	if o.Prefix == "" {
		return DefaultPrefix
	}
	return o.Prefix
}

// Catalog is an immutable, validated set of declared modules.
type Catalog struct {
	path     string
	root     string
	prefix   string
	entries  []Entry
	index    map[string]int
	problems []error
}

// Load reads the catalog document at path and builds a Catalog from it.
func Load(path string, opts Options) (*Catalog, error) {
	doc, err := manifest.ParseFile(path)
	if err != nil {
		opts.Logger.Error().Err(err).Str("path", path).Msg("error loading catalog document")
		return nil, &ConfigLoadError{Path: path, Err: err}
	}

	c, err := build(doc, opts, path)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info().
		Str("path", path).
		Str("libdir", c.root).
		Int("modules", len(c.entries)).
		Int("problems", len(c.problems)).
		Msg("catalog loaded")
	return c, nil
}

// Build validates an already decoded document.
//
// Declaration problems abort the build. Every one is reported in the
// returned error, which unwraps to one *PortArityError per port count outside
// [MinPorts, MaxPorts] and one *ConfigLoadError per nameless, duplicate or
// uncategorizable declaration. A module whose artifact is missing is
// logged and recorded in Problems but stays in the catalog: the pipeline may
// never instantiate it.
func Build(doc *manifest.Document, opts Options) (*Catalog, error) {
	return build(doc, opts, "")
}

func build(doc *manifest.Document, opts Options, path string) (*Catalog, error) {
	logger := opts.Logger

	root := opts.LibraryRoot
	if root == "" {
		root = doc.LibDir
	}
	if root == "" {
		return nil, &ConfigLoadError{Path: path, Err: errors.New("no library root: set libdir in the document or the libdir setting")}
	}
	if err := platform.ReadableDir(root); err != nil {
		logger.Error().Err(err).Str("libdir", root).Msg("can not find lib path")
		return nil, &ConfigLoadError{Path: path, Err: fmt.Errorf("library root %s is not a readable directory: %w", root, err)}
	}

	c := &Catalog{
		path:   path,
		root:   platform.WithTrailingSeparator(root),
		prefix: opts.prefix(),
		index:  make(map[string]int, len(doc.Modules)),
	}

	var errs []error
	seen := make(map[string]bool, len(doc.Modules))
	for _, decl := range doc.Modules {
		if decl.Name == "" {
			errs = append(errs, &ConfigLoadError{Path: path, Err: errors.New("module declaration without a name")})
			continue
		}
		if seen[decl.Name] {
			errs = append(errs, &ConfigLoadError{Path: path, Module: decl.Name, Err: errors.New("declared more than once")})
			continue
		}
		seen[decl.Name] = true

		category, err := ParseCategory(decl.Category)
		if err != nil {
			errs = append(errs, &ConfigLoadError{Path: path, Module: decl.Name, Err: err})
		}
		if arity := checkArity(decl); len(arity) > 0 {
			for _, e := range arity {
				logger.Error().Str("module", decl.Name).Msg(e.Error())
			}
			errs = append(errs, arity...)
		}
		if len(errs) > 0 {
			continue
		}

		entry := Entry{
			Name:     decl.Name,
			Category: category,
			InPorts:  decl.InPorts,
			OutPorts: decl.OutPorts,
			Artifact: filepath.Join(c.root, ArtifactFile(c.prefix, decl.Name)),
		}
		if !platform.FileExists(entry.Artifact) {
			missing := &ArtifactMissingError{Module: entry.Name, Path: entry.Artifact}
			logger.Error().Str("module", entry.Name).Str("artifact", entry.Artifact).Msg("can't find module")
			c.problems = append(c.problems, missing)
		}

		c.index[entry.Name] = len(c.entries)
		c.entries = append(c.entries, entry)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

func checkArity(decl manifest.ModuleDecl) []error {
	var errs []error
	if decl.InPorts < MinPorts || decl.InPorts > MaxPorts {
		errs = append(errs, &PortArityError{Module: decl.Name, Port: "inport", Count: decl.InPorts})
	}
	if decl.OutPorts < MinPorts || decl.OutPorts > MaxPorts {
		errs = append(errs, &PortArityError{Module: decl.Name, Port: "outport", Count: decl.OutPorts})
	}
	return errs
}

// Path returns the document the catalog was loaded from, if any.
func (c *Catalog) Path() string { return c.path }

// LibraryRoot returns the library directory, always ending in a separator.
func (c *Catalog) LibraryRoot() string { return c.root }

// Prefix returns the artifact name prefix in effect.
func (c *Catalog) Prefix() string { return c.prefix }

// Len returns the number of declared modules.
func (c *Catalog) Len() int { return len(c.entries) }

// Entry looks up a module by its exact, case-sensitive name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Entries returns the declared modules in document order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Names returns the declared module names in document order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Name
	}
	return out
}

// Problems returns the non-fatal findings recorded while loading.
func (c *Catalog) Problems() []error {
	out := make([]error, len(c.problems))
	copy(out, c.problems)
	return out
}
