// Package config holds the calibration tolerances and step sizes. Values are
// plain immutable structs: a Controller takes a Calibration by value at
// construction and never mutates it. A JSON file can override any subset of
// the defaults.
package config

import (
	"sync"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
)

// Phase1Targets configures the mid-grey anchor calibration: the neutral
// patch to track and the acceptable Lab ranges for it.
type Phase1Targets struct {
	Patch string          `json:"patch"`
	L     colormath.Range `json:"L"`
	A     colormath.Range `json:"a"`
	B     colormath.Range `json:"b"`
}

// Phase2Targets configures neutral slope validation: the two additional
// neutral patches and their absolute a/b tolerances.
type Phase2Targets struct {
	RGB150Patch string  `json:"rgb150Patch"`
	RGB200Patch string  `json:"rgb200Patch"`
	RGB150ATol  float64 `json:"rgb150ATol"`
	RGB150BTol  float64 `json:"rgb150BTol"`
	RGB200ATol  float64 `json:"rgb200ATol"`
	RGB200BTol  float64 `json:"rgb200BTol"`
}

// Phase4Targets configures the full colour analysis ceilings. All four
// checks must pass for the printer to be considered profilable.
type Phase4Targets struct {
	MeanMax     float64  `json:"meanMax"`
	P95Max      float64  `json:"p95Max"`
	WorstMax    float64  `json:"worstMax"`
	SkinMax     float64  `json:"skinMax"`
	SkinPatches []string `json:"skinPatches"`
}

// Convergence configures when repeated Phase 1 measurements are considered
// to have stopped improving.
type Convergence struct {
	// MinAbsChange is the Lab distance below which two successive readings
	// of the anchor patch count as unchanged.
	MinAbsChange float64 `json:"minAbsChange"`
}

// InkSteps are the two discrete adjustment magnitudes suggested to the
// operator, in driver slider units.
type InkSteps struct {
	Coarse int `json:"coarse"`
	Fine   int `json:"fine"`
}

// Calibration aggregates every tunable used by the controller.
type Calibration struct {
	Phase1      Phase1Targets `json:"phase1Targets"`
	Phase2      Phase2Targets `json:"phase2Targets"`
	Phase4      Phase4Targets `json:"phase4Targets"`
	Convergence Convergence   `json:"convergence"`
	InkSteps    InkSteps      `json:"inkSteps"`
}

// Default returns the built-in calibration targets. The neutral a/b ranges
// are centered on zero; the anchor L range brackets the expected lightness
// of an sRGB (100,100,100) grey.
func Default() Calibration {
	return Calibration{
		Phase1: Phase1Targets{
			Patch: "RGB100",
			L:     colormath.Range{Min: 37.0, Max: 47.0},
			A:     colormath.Range{Min: -1.5, Max: 1.5},
			B:     colormath.Range{Min: -2.0, Max: 2.0},
		},
		Phase2: Phase2Targets{
			RGB150Patch: "RGB150",
			RGB200Patch: "RGB200",
			RGB150ATol:  2.0,
			RGB150BTol:  2.5,
			RGB200ATol:  2.0,
			RGB200BTol:  2.5,
		},
		Phase4: Phase4Targets{
			MeanMax:     4.0,
			P95Max:      6.0,
			WorstMax:    10.0,
			SkinMax:     3.0,
			SkinPatches: []string{"Skin1", "Skin2"},
		},
		Convergence: Convergence{MinAbsChange: 0.5},
		InkSteps:    InkSteps{Coarse: 4, Fine: 1},
	}
}

// ColourPatches is the static definition of the full colour test chart.
var ColourPatches = []colormath.Patch{
	// Neutrals
	{Name: "N0", R: 0, G: 0, B: 0},
	{Name: "N64", R: 64, G: 64, B: 64},
	{Name: "N128", R: 128, G: 128, B: 128},
	{Name: "N192", R: 192, G: 192, B: 192},
	{Name: "N224", R: 224, G: 224, B: 224},
	{Name: "N240", R: 240, G: 240, B: 240},
	{Name: "N248", R: 248, G: 248, B: 248},
	{Name: "N255", R: 255, G: 255, B: 255},

	// Primaries
	{Name: "R", R: 255, G: 0, B: 0},
	{Name: "G", R: 0, G: 255, B: 0},
	{Name: "B", R: 0, G: 0, B: 255},

	// Secondaries
	{Name: "C", R: 0, G: 255, B: 255},
	{Name: "M", R: 255, G: 0, B: 255},
	{Name: "Y", R: 255, G: 255, B: 0},

	// Light tints
	{Name: "R+64", R: 255, G: 64, B: 64},
	{Name: "G+64", R: 64, G: 255, B: 64},
	{Name: "B+64", R: 64, G: 64, B: 255},

	// Dark tones
	{Name: "R-64", R: 192, G: 0, B: 0},
	{Name: "G-64", R: 0, G: 192, B: 0},
	{Name: "B-64", R: 0, G: 0, B: 192},

	// Memory colours
	{Name: "Skin1", R: 224, G: 172, B: 105},
	{Name: "Skin2", R: 198, G: 134, B: 66},
	{Name: "Sky", R: 135, G: 206, B: 235},
	{Name: "Leaf", R: 34, G: 139, B: 34},
}

// ReferenceLabs returns the expected Lab value for every colour chart patch.
// The table is derived once and cached for the process lifetime.
var ReferenceLabs = sync.OnceValue(func() map[string]colormath.Lab {
	return colormath.ReferenceTable(ColourPatches)
})
