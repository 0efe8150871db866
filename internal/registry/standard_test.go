package registry

import (
	"slices"
	"testing"
)

func TestStandardNames_Sorted(t *testing.T) {
	if !slices.IsSorted(standardNames) {
		t.Fatal("standardNames must be sorted")
	}
	for i := 1; i < len(standardNames); i++ {
		if standardNames[i] == standardNames[i-1] {
			t.Errorf("duplicate standard name %q", standardNames[i])
		}
	}
}

func TestCount(t *testing.T) {
	if Count() != SingleTraceCount+MultiTraceCount {
		t.Errorf("Count() = %d, want %d", Count(), SingleTraceCount+MultiTraceCount)
	}
	if Count() != 83 {
		t.Errorf("Count() = %d, want 83", Count())
	}
}

func TestIsStandard(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"STACK", true},
		{"ATTRIBUTE", true},
		{"TRC_SPLIT", true},
		{"FFT_2D", true},
		{"stack", false},
		{"Stack", false},
		{"SUPHASEVEL", false},
		{"STACK ", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStandard(tt.name); got != tt.want {
				t.Errorf("IsStandard(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestStandardNames_Copy(t *testing.T) {
	names := StandardNames()
	names[0] = "CHANGED"
	if !IsStandard("ATTRIBUTE") {
		t.Error("mutating StandardNames() result changed the registry")
	}
}
