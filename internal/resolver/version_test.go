package resolver

import (
	"testing"

	"github.com/cseis-labs/csmod/internal/catalog"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in         string
		wantSuffix string
		wantMM     bool
	}{
		{"", "", false},
		{"  ", "", false},
		{"1.0", ".1.0", true},
		{"2.13", ".2.13", true},
		{"1.0.3", ".1.0.3", false},
		{"1", ".1", false},
		{"v1.0", ".v1.0", false},
		{"01.0", ".01.0", false},
		{"1.0-beta", ".1.0-beta", false},
		{"nightly", ".nightly", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := ParseVersion(tt.in)
			if got := v.Suffix(); got != tt.wantSuffix {
				t.Errorf("Suffix() = %q, want %q", got, tt.wantSuffix)
			}
			if got := v.kind == versionMajorMinor; got != tt.wantMM {
				t.Errorf("major.minor = %v, want %v", got, tt.wantMM)
			}
		})
	}
}

func TestVersionShapes(t *testing.T) {
	if s := Unversioned().Suffix(); s != "" {
		t.Errorf("Unversioned().Suffix() = %q", s)
	}
	if !Unversioned().IsZero() || !(Version{}).IsZero() {
		t.Error("unversioned should be the zero value")
	}
	if s := MajorMinor(1, 0).Suffix(); s != ".1.0" {
		t.Errorf("MajorMinor(1, 0).Suffix() = %q", s)
	}
	if s := VersionString("custom").Suffix(); s != ".custom" {
		t.Errorf("VersionString(custom).Suffix() = %q", s)
	}
	if !VersionString("").IsZero() {
		t.Error("VersionString(\"\") should be unversioned")
	}
	if MajorMinor(1, 0) != ParseVersion("1.0") {
		t.Error("ParseVersion(1.0) should equal MajorMinor(1, 0)")
	}
}

func TestSymbolNames(t *testing.T) {
	if got := ParamsSymbol("STACK"); got != "_params_mod_stack_" {
		t.Errorf("ParamsSymbol() = %q", got)
	}
	if got := InitSymbol("SuPhaseVel"); got != "_init_mod_suphasevel_" {
		t.Errorf("InitSymbol() = %q", got)
	}
	if got := ExecSymbol("INPUT_SU"); got != "_exec_mod_input_su_" {
		t.Errorf("ExecSymbol() = %q", got)
	}
}

func TestArtifactPath(t *testing.T) {
	e := catalog.Entry{Name: "STACK", Artifact: "/opt/lib/libas_stack.so"}
	tests := []struct {
		v    Version
		want string
	}{
		{Unversioned(), "/opt/lib/libas_stack.so"},
		{MajorMinor(1, 0), "/opt/lib/libas_stack.so.1.0"},
		{VersionString("beta"), "/opt/lib/libas_stack.so.beta"},
	}
	for _, tt := range tests {
		if got := artifactPath(e, tt.v); got != tt.want {
			t.Errorf("artifactPath(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}
