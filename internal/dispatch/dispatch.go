// Package dispatch is the module query surface handed to the pipeline
// executor. It decides whether a module is built in, declared in the
// catalog, or unknown, and only then asks the resolver for a binding.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/cseis-labs/csmod/internal/registry"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrStandardModule is returned by Resolve for built-in modules. They are
// linked into the engine and never loaded from a library.
var ErrStandardModule = errors.New("standard module is built into the engine")

// ModuleNotDeclaredError reports a name that is neither built in nor
// declared in the catalog.
type ModuleNotDeclaredError struct {
	Module  string
	Version resolver.Version
}

func (e *ModuleNotDeclaredError) Error() string {
	if e.Version.IsZero() {
		return fmt.Sprintf("module %s is not a standard module and is not declared in the catalog", e.Module)
	}
	return fmt.Sprintf("module %s version %s is not a standard module and is not declared in the catalog", e.Module, e.Version)
}

// CatalogSource supplies the current catalog. *catalog.Holder satisfies it.
type CatalogSource interface {
	Get() *catalog.Catalog
}

// Dispatcher answers the executor's module queries.
type Dispatcher struct {
	source   CatalogSource
	resolver *resolver.Resolver
	logger   zerolog.Logger
	metrics  *metrics.Collector
}

// New creates a dispatcher over source and r.
func New(source CatalogSource, r *resolver.Resolver, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{source: source, resolver: r, logger: logger}
}

// WithMetrics records standard and undeclared lookups on m.
func (d *Dispatcher) WithMetrics(m *metrics.Collector) *Dispatcher {
	d.metrics = m
	return d
}

// IsStandard reports whether name is a built-in module.
func (d *Dispatcher) IsStandard(name string) bool {
	return registry.IsStandard(name)
}

// CatalogEntry returns the declaration of name in the current catalog.
func (d *Dispatcher) CatalogEntry(name string) (catalog.Entry, bool) {
	return d.source.Get().Entry(name)
}

// LibraryRoot returns the current catalog's library directory.
func (d *Dispatcher) LibraryRoot() string {
	return d.source.Get().LibraryRoot()
}

// Resolve returns a handle on the bindings of a declared module. The caller
// must Release it. A catalog declaration takes precedence, so a library can
// stand in for a built-in module of the same name. Otherwise built-in names
// yield ErrStandardModule and unknown names a *ModuleNotDeclaredError;
// neither touches a library.
func (d *Dispatcher) Resolve(name string, v resolver.Version) (*resolver.Handle, error) {
	entry, ok := d.source.Get().Entry(name)
	if ok {
		return d.resolver.Acquire(entry, v)
	}

	if registry.IsStandard(name) {
		d.count(metrics.OutcomeStandard)
		return nil, fmt.Errorf("resolving %s: %w", name, ErrStandardModule)
	}

	d.count(metrics.OutcomeUndeclared)
	d.logger.Warn().Str("module", name).Str("version", v.String()).Msg("module not declared")
	return nil, &ModuleNotDeclaredError{Module: name, Version: v}
}

func (d *Dispatcher) count(outcome string) {
	if d.metrics != nil {
		d.metrics.ResolutionsTotal.WithLabelValues(outcome).Inc()
	}
}

// ProbeResult is the outcome of binding one declared module.
type ProbeResult struct {
	Module   string           `json:"module"`
	Category catalog.Category `json:"category"`
	Path     string           `json:"path"`
	Standard bool             `json:"standard,omitempty"`
	Err      error            `json:"-"`
	Error    string           `json:"error,omitempty"`
}

// OK reports whether the module bound cleanly.
func (p ProbeResult) OK() bool { return p.Err == nil }

// ResolveAll binds and releases every declared module, at most limit at a
// time, and reports each outcome in catalog order. Standard marks declared
// names that shadow a built-in module.
func (d *Dispatcher) ResolveAll(ctx context.Context, v resolver.Version, limit int) ([]ProbeResult, error) {
	entries := d.source.Get().Entries()
	results := make([]ProbeResult, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, e := range entries {
		i, e := i, e
		results[i] = ProbeResult{Module: e.Name, Category: e.Category, Path: e.Artifact + v.Suffix()}
		results[i].Standard = registry.IsStandard(e.Name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := d.resolver.Acquire(e, v)
			if err != nil {
				results[i].Err = err
				results[i].Error = err.Error()
				return nil
			}
			h.Release()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Failed returns the results that did not bind, sorted by module name.
func Failed(results []ProbeResult) []ProbeResult {
	var out []ProbeResult
	for _, r := range results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}
