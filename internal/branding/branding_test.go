package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "csmod" {
		t.Errorf("CLIName() = %q, want %q", got, "csmod")
	}
	if got := HomeDir(); got != ".csmod" {
		t.Errorf("HomeDir() = %q, want %q", got, ".csmod")
	}
	if got := EnvPrefix(); got != "CSMOD" {
		t.Errorf("EnvPrefix() = %q, want %q", got, "CSMOD")
	}
}

func TestEnvVar(t *testing.T) {
	cases := map[string]string{
		"libdir":        "CSMOD_LIBDIR",
		"module_prefix": "CSMOD_MODULE_PREFIX",
		"HOME":          "CSMOD_HOME",
	}
	for in, want := range cases {
		if got := EnvVar(in); got != want {
			t.Errorf("EnvVar(%q) = %q, want %q", in, got, want)
		}
	}
}
