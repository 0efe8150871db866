//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // HOME, holds .csmod/
	LibDir  string // library root the catalog points at
}

// setupTestEnv creates isolated temp directories and points HOME at one of
// them so settings never touch the real user directory.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		LibDir:  t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	return env
}

// probeSource is a module exporting all three entry points. exec reports
// output port 1 and keeps the trace.
const probeSource = `#include <stdbool.h>
#include <stddef.h>

static int phase;

void _params_mod_probe_(void *def) { phase = 1; }
void _init_mod_probe_(void *params, void *env, void *log) { phase = 2; }
bool _exec_mod_probe_(void *trace, int *port, void *env, void *log) {
	if (port != NULL) *port = 1;
	return phase == 2;
}
`

// buildModule compiles src into libDir/libas_<name>.so<suffix>. The test is
// skipped when no C compiler is available.
func buildModule(t *testing.T, libDir, name, suffix, src string) string {
	t.Helper()

	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("no C compiler available")
	}

	srcPath := filepath.Join(t.TempDir(), name+".c")
	writeFile(t, srcPath, src)

	out := filepath.Join(libDir, "libas_"+strings.ToLower(name)+".so"+suffix)
	cmd := exec.Command(cc, "-shared", "-fPIC", "-o", out, srcPath)
	if msg, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("compiling %s: %v\n%s", name, err, msg)
	}
	return out
}

// writeCatalog writes a catalog document declaring modules (name:category
// pairs, one port in and out) in libDir.
func writeCatalog(t *testing.T, dir, libDir string, modules ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("libdir: " + libDir + "\nmodules:\n")
	for _, m := range modules {
		name, category, _ := strings.Cut(m, ":")
		b.WriteString("  - name: " + name + "\n    category: " + category + "\n    inport: 1\n    outport: 1\n")
	}
	path := filepath.Join(dir, "modules.yaml")
	writeFile(t, path, b.String())
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}
