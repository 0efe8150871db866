package registry

import "slices"

// Standard module counts by execution kind. They sum to the length of
// standardNames.
const (
	SingleTraceCount = 47
	MultiTraceCount  = 36
)

// standardNames is sorted; IsStandard relies on it.
var standardNames = []string{
	"ATTRIBUTE",
	"BEAM_FORMING",
	"BIN",
	"CCP",
	"CMP",
	"CONCATENATE",
	"CONVOLUTION",
	"CORRELATION",
	"DEBIAS",
	"DESIGNATURE",
	"DESPIKE",
	"ELSE",
	"ELSEIF",
	"ENDIF",
	"ENDSPLIT",
	"ENS_DEFINE",
	"FFT",
	"FFT_2D",
	"FILTER",
	"FXDECON",
	"GAIN",
	"GEOTOOLS",
	"HDR_DEL",
	"HDR_MATH",
	"HDR_MATH_ENS",
	"HDR_PRINT",
	"HDR_SET",
	"HISTOGRAM",
	"HODOGRAM",
	"IF",
	"IMAGE",
	"INPUT",
	"INPUT_ASCII",
	"INPUT_CREATE",
	"INPUT_RSF",
	"INPUT_SEGD",
	"INPUT_SEGY",
	"INPUT_SINEWAVE",
	"KILL",
	"KILL_ENS",
	"LMO",
	"MIRROR",
	"MUTE",
	"NMO",
	"OFF2ANGLE",
	"ORIENT",
	"ORIENT_CONVERT",
	"OUTPUT",
	"OUTPUT_RSF",
	"OUTPUT_SEGY",
	"OVERLAP",
	"P190",
	"PICKING",
	"POSCALC",
	"PZ_SUM",
	"RAY2D",
	"READ_ASCII",
	"REPEAT",
	"RESAMPLE",
	"RESEQUENCE",
	"RMS",
	"ROTATE",
	"SCALING",
	"SELECT",
	"SELECT_TIME",
	"SEMBLANCE",
	"SORT",
	"SPLIT",
	"SPLITTING",
	"STACK",
	"STATICS",
	"SUMODULE",
	"TEST",
	"TEST_MULTI_ENSEMBLE",
	"TEST_MULTI_FIXED",
	"TIME_SLICE",
	"TIME_STRETCH",
	"TRC_ADD_ENS",
	"TRC_INTERPOL",
	"TRC_MATH",
	"TRC_MATH_ENS",
	"TRC_PRINT",
	"TRC_SPLIT",
}

// IsStandard reports whether name is a built-in module. Matching is exact
// and case-sensitive.
func IsStandard(name string) bool {
	_, found := slices.BinarySearch(standardNames, name)
	return found
}

// StandardNames returns the built-in module names in sorted order.
func StandardNames() []string {
	return slices.Clone(standardNames)
}

// Count returns the number of built-in modules.
func Count() int {
	return len(standardNames)
}
