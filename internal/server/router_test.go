package server_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/manifest"
	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/cseis-labs/csmod/internal/resolver/resolvertest"
	"github.com/cseis-labs/csmod/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type fakeHolder struct {
	c         *catalog.Catalog
	reloadErr error
	reloads   int
	replaced  []string
}

func (f *fakeHolder) Get() *catalog.Catalog { return f.c }

func (f *fakeHolder) Reload() error {
	f.reloads++
	return f.reloadErr
}

func (f *fakeHolder) Replace(path string) error {
	f.replaced = append(f.replaced, path)
	return f.reloadErr
}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	lib := t.TempDir()
	if err := os.WriteFile(filepath.Join(lib, "libas_suphasevel.so"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	c, err := catalog.Build(&manifest.Document{
		LibDir: lib,
		Modules: []manifest.ModuleDecl{
			{Name: "SUPHASEVEL", Category: "single-trace", InPorts: 1, OutPorts: 1},
			{Name: "SUVELAN", Category: "multi-trace", InPorts: 1, OutPorts: 2},
		},
	}, catalog.Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return c
}

func newServer(t *testing.T, holder *fakeHolder) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	router := server.NewRouter(server.Config{
		Catalog:  holder,
		Metrics:  metrics.NewWithRegistry(reg),
		Gatherer: reg,
		Logger:   zerolog.Nop(),
		Version:  "test",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, reg
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, &fakeHolder{c: newCatalog(t)})

	var body map[string]any
	if code := getJSON(t, srv.URL+"/health", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v", body["status"])
	}
	if body["modules"] != float64(2) {
		t.Errorf("modules = %v, want 2", body["modules"])
	}
	if body["problems"] != float64(1) {
		t.Errorf("problems = %v, want 1", body["problems"])
	}
}

func TestListModules(t *testing.T) {
	srv, _ := newServer(t, &fakeHolder{c: newCatalog(t)})

	var body struct {
		Count   int `json:"count"`
		Modules []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
			OutPort  int    `json:"outport"`
		} `json:"modules"`
		Problems []string `json:"problems"`
	}
	if code := getJSON(t, srv.URL+"/modules", &body); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if body.Count != 2 || len(body.Modules) != 2 {
		t.Fatalf("count = %d, modules = %d, want 2", body.Count, len(body.Modules))
	}
	if body.Modules[1].Name != "SUVELAN" || body.Modules[1].Category != "multi-trace" || body.Modules[1].OutPort != 2 {
		t.Errorf("modules[1] = %+v", body.Modules[1])
	}
	if len(body.Problems) != 1 || !strings.Contains(body.Problems[0], "SUVELAN") {
		t.Errorf("problems = %v", body.Problems)
	}

	if code := getJSON(t, srv.URL+"/modules?category=single", &body); code != http.StatusOK {
		t.Fatalf("filtered status = %d", code)
	}
	if body.Count != 1 || body.Modules[0].Name != "SUPHASEVEL" {
		t.Errorf("filtered = %+v", body.Modules)
	}

	if code := getJSON(t, srv.URL+"/modules?category=bogus", nil); code != http.StatusBadRequest {
		t.Errorf("bogus category status = %d, want 400", code)
	}
}

func TestGetModule(t *testing.T) {
	srv, _ := newServer(t, &fakeHolder{c: newCatalog(t)})

	tests := []struct {
		name     string
		status   int
		declared bool
		standard bool
	}{
		{"SUPHASEVEL", http.StatusOK, true, false},
		{"NMO", http.StatusOK, false, true},
		{"NOPE", http.StatusNotFound, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			code := getJSON(t, srv.URL+"/modules/"+tt.name, &body)
			if code != tt.status {
				t.Fatalf("status = %d, want %d", code, tt.status)
			}
			if code != http.StatusOK {
				return
			}
			if body["declared"] != tt.declared || body["standard"] != tt.standard {
				t.Errorf("body = %v", body)
			}
		})
	}
}

func TestListStandard(t *testing.T) {
	srv, _ := newServer(t, &fakeHolder{c: newCatalog(t)})

	var body struct {
		Count   int      `json:"count"`
		Modules []string `json:"modules"`
	}
	if code := getJSON(t, srv.URL+"/standard", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body.Count != 83 || len(body.Modules) != 83 {
		t.Errorf("count = %d, modules = %d, want 83", body.Count, len(body.Modules))
	}
}

func TestReload(t *testing.T) {
	holder := &fakeHolder{c: newCatalog(t)}
	srv, _ := newServer(t, holder)

	resp, err := http.Post(srv.URL+"/reload", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	holder.reloadErr = errors.New("bad document")
	resp, err = http.Post(srv.URL+"/reload", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("failed reload status = %d, want 422", resp.StatusCode)
	}
	if holder.reloads != 2 {
		t.Errorf("reloads = %d, want 2", holder.reloads)
	}
}

func TestReload_ReplacesDocument(t *testing.T) {
	holder := &fakeHolder{c: newCatalog(t)}
	srv, _ := newServer(t, holder)

	resp, err := http.Post(srv.URL+"/reload?path=/etc/cseis/site.yaml", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if len(holder.replaced) != 1 || holder.replaced[0] != "/etc/cseis/site.yaml" {
		t.Errorf("replaced = %v, want [/etc/cseis/site.yaml]", holder.replaced)
	}
	if holder.reloads != 0 {
		t.Errorf("reloads = %d, want 0", holder.reloads)
	}

	holder.reloadErr = errors.New("bad document")
	resp, err = http.Post(srv.URL+"/reload?path=/etc/cseis/broken.yaml", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("failed replace status = %d, want 422", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t, &fakeHolder{c: newCatalog(t)})

	getJSON(t, srv.URL+"/modules/SUPHASEVEL", nil)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `csmod_http_requests_total{method="GET",route="/modules/{name}",status="2xx"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", buf.String())
	}
}

func TestResolveModule(t *testing.T) {
	c := newCatalog(t)
	loader := resolvertest.NewLoader()
	e, _ := c.Entry("SUPHASEVEL")
	loader.AddModule(e.Artifact, "SUPHASEVEL")

	r := resolver.New(resolver.Options{Loader: loader, Logger: zerolog.Nop()})
	defer r.Close()
	holder := &fakeHolder{c: c}

	router := server.NewRouter(server.Config{
		Catalog:    holder,
		Dispatcher: dispatch.New(holder, r, zerolog.Nop()),
		Resolver:   r,
		Logger:     zerolog.Nop(),
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	tests := []struct {
		name   string
		status int
	}{
		{"SUPHASEVEL", http.StatusOK},
		{"NMO", http.StatusOK},
		{"NOPE", http.StatusNotFound},
		{"SUVELAN", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			if code := getJSON(t, srv.URL+"/modules/"+tt.name+"/resolve", &body); code != tt.status {
				t.Fatalf("status = %d, want %d (%v)", code, tt.status, body)
			}
		})
	}

	var body map[string]any
	getJSON(t, srv.URL+"/modules/SUPHASEVEL/resolve", &body)
	if body["exec"] != "_exec_mod_suphasevel_" || body["category"] != "single-trace" {
		t.Errorf("body = %v", body)
	}

	var stats resolver.Stats
	getJSON(t, srv.URL+"/stats", &stats)
	if stats.OpenLibraries != 0 || stats.NativeOpens != 2 {
		t.Errorf("stats = %+v, want every library released", stats)
	}
}
