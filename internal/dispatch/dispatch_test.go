package dispatch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/manifest"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/cseis-labs/csmod/internal/resolver/resolvertest"
	"github.com/rs/zerolog"
)

type staticSource struct{ c *catalog.Catalog }

func (s staticSource) Get() *catalog.Catalog { return s.c }

type fixture struct {
	lib        string
	loader     *resolvertest.Loader
	resolver   *resolver.Resolver
	dispatcher *dispatch.Dispatcher
}

// newFixture declares modules (all multi-trace, one port each) in a fresh
// library root. Modules listed in deployed also get a loadable fake library.
func newFixture(t *testing.T, declared []string, deployed ...string) *fixture {
	t.Helper()
	lib := t.TempDir()
	loader := resolvertest.NewLoader()

	doc := &manifest.Document{LibDir: lib}
	for _, name := range declared {
		doc.Modules = append(doc.Modules, manifest.ModuleDecl{Name: name, Category: "multi-trace", InPorts: 1, OutPorts: 1})
	}
	for _, name := range deployed {
		path := filepath.Join(lib, catalog.ArtifactFile(catalog.DefaultPrefix, name))
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		loader.AddModule(path, name)
	}

	c, err := catalog.Build(doc, catalog.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	r := resolver.New(resolver.Options{Loader: loader, Logger: zerolog.Nop()})
	t.Cleanup(func() { r.Close() })

	return &fixture{
		lib:        lib,
		loader:     loader,
		resolver:   r,
		dispatcher: dispatch.New(staticSource{c}, r, zerolog.Nop()),
	}
}

func TestResolve_Declared(t *testing.T) {
	f := newFixture(t, []string{"SUPHASEVEL"}, "SUPHASEVEL")

	h, err := f.dispatcher.Resolve("SUPHASEVEL", resolver.Unversioned())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	defer h.Release()

	b := h.Binding()
	if b.Module != "SUPHASEVEL" {
		t.Errorf("Module = %q", b.Module)
	}
	if b.MultiTrace() == nil {
		t.Error("MultiTrace() is nil")
	}
}

func TestResolve_StandardModule(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.dispatcher.Resolve("NMO", resolver.Unversioned())
	if !errors.Is(err, dispatch.ErrStandardModule) {
		t.Fatalf("Resolve() error = %v, want ErrStandardModule", err)
	}
	if f.loader.Opens() != 0 {
		t.Errorf("standard module reached the loader")
	}
}

func TestResolve_DeclarationShadowsStandard(t *testing.T) {
	f := newFixture(t, []string{"STACK"}, "STACK")

	h, err := f.dispatcher.Resolve("STACK", resolver.Unversioned())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	h.Release()
}

func TestResolve_NotDeclared(t *testing.T) {
	f := newFixture(t, []string{"SUPHASEVEL"}, "SUPHASEVEL", "FOO")

	_, err := f.dispatcher.Resolve("FOO", resolver.MajorMinor(1, 0))
	var mnd *dispatch.ModuleNotDeclaredError
	if !errors.As(err, &mnd) {
		t.Fatalf("Resolve() error = %v, want *ModuleNotDeclaredError", err)
	}
	if mnd.Module != "FOO" || mnd.Version != resolver.MajorMinor(1, 0) {
		t.Errorf("error = %+v", mnd)
	}
	if f.loader.Opens() != 0 {
		t.Errorf("undeclared module reached the loader")
	}
}

func TestResolve_CaseSensitive(t *testing.T) {
	f := newFixture(t, []string{"SUPHASEVEL"}, "SUPHASEVEL")

	_, err := f.dispatcher.Resolve("suphasevel", resolver.Unversioned())
	var mnd *dispatch.ModuleNotDeclaredError
	if !errors.As(err, &mnd) {
		t.Fatalf("Resolve() error = %v, want *ModuleNotDeclaredError", err)
	}
}

func TestResolve_MissingLibrary(t *testing.T) {
	f := newFixture(t, []string{"SUPHASEVEL"})

	_, err := f.dispatcher.Resolve("SUPHASEVEL", resolver.Unversioned())
	var lnf *resolver.LibraryNotFoundError
	if !errors.As(err, &lnf) {
		t.Fatalf("Resolve() error = %v, want *LibraryNotFoundError", err)
	}
}

func TestQueries(t *testing.T) {
	f := newFixture(t, []string{"SUPHASEVEL"}, "SUPHASEVEL")
	d := f.dispatcher

	if !d.IsStandard("STACK") || d.IsStandard("SUPHASEVEL") {
		t.Error("IsStandard() mismatch")
	}
	e, ok := d.CatalogEntry("SUPHASEVEL")
	if !ok {
		t.Fatal("CatalogEntry(SUPHASEVEL) not found")
	}
	if e.InPorts != 1 || e.OutPorts != 1 {
		t.Errorf("ports = %d/%d", e.InPorts, e.OutPorts)
	}
	if _, ok := d.CatalogEntry("NMO"); ok {
		t.Error("CatalogEntry(NMO) should be absent")
	}
	if want := f.lib + string(filepath.Separator); d.LibraryRoot() != want {
		t.Errorf("LibraryRoot() = %q, want %q", d.LibraryRoot(), want)
	}
}

func TestResolveAll(t *testing.T) {
	f := newFixture(t, []string{"ALPHA", "BETA", "GAMMA", "STACK"}, "ALPHA", "GAMMA", "STACK")

	results, err := f.dispatcher.ResolveAll(context.Background(), resolver.Unversioned(), 2)
	if err != nil {
		t.Fatalf("ResolveAll() error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("len(results) = %d, want 4", len(results))
	}

	failed := dispatch.Failed(results)
	if len(failed) != 1 || failed[0].Module != "BETA" {
		t.Fatalf("Failed() = %+v, want only BETA", failed)
	}
	var lnf *resolver.LibraryNotFoundError
	if !errors.As(failed[0].Err, &lnf) {
		t.Errorf("BETA error = %v, want *LibraryNotFoundError", failed[0].Err)
	}
	if !results[3].Standard {
		t.Error("STACK should be flagged as shadowing a standard module")
	}

	if f.loader.OpenCount() != 0 {
		t.Errorf("OpenCount() = %d after probe, want 0", f.loader.OpenCount())
	}
}

func TestResolveAll_Cancelled(t *testing.T) {
	f := newFixture(t, []string{"ALPHA"}, "ALPHA")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.dispatcher.ResolveAll(ctx, resolver.Unversioned(), 1); !errors.Is(err, context.Canceled) {
		t.Errorf("ResolveAll() error = %v, want context.Canceled", err)
	}
}
