// Package colormath holds the small colour utilities shared by the
// calibration workflow: CIE-Lab triples, range checks, the device-independent
// sRGB to Lab transform used to build the patch reference table, and the
// CIEDE2000 colour difference.
package colormath

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Lab is a CIE-L*a*b* triple on the conventional scale: L* in [0, 100],
// a* and b* unbounded but practically within [-128, 127].
type Lab struct {
	L float64 `json:"L"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Center returns the midpoint of the range.
func (r Range) Center() float64 {
	return (r.Min + r.Max) / 2
}

// HalfWidth returns half the width of the range, i.e. the tolerance around
// the center.
func (r Range) HalfWidth() float64 {
	return (r.Max - r.Min) / 2
}

// Contains reports whether v lies within the inclusive range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// WithinRange reports whether every coordinate of the triple falls within
// its configured inclusive range.
func (l Lab) WithinRange(lRange, aRange, bRange Range) bool {
	return lRange.Contains(l.L) && aRange.Contains(l.A) && bRange.Contains(l.B)
}

// Distance returns the Euclidean distance between two Lab triples across all
// three coordinates. This is a coarse convergence signal, not a perceptual
// metric; use DeltaE2000 for perceptual differences.
func Distance(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// ChromaDistance returns the Euclidean distance between two Lab triples in
// the a*/b* plane only, ignoring lightness.
func ChromaDistance(a, b Lab) float64 {
	return math.Hypot(a.A-b.A, a.B-b.B)
}

// Patch is a static patch definition: a named 8-bit sRGB colour printed on a
// test chart.
type Patch struct {
	Name    string
	R, G, B uint8
}

// RGBToLab converts an 8-bit sRGB triple to Lab under the D65 white point.
func RGBToLab(r, g, b uint8) Lab {
	c := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
	l, a, bb := c.Lab()
	// go-colorful keeps L in [0,1] and scales a/b accordingly.
	return Lab{L: l * 100, A: a * 100, B: bb * 100}
}

// ReferenceTable derives the expected Lab value for every patch definition.
func ReferenceTable(patches []Patch) map[string]Lab {
	refs := make(map[string]Lab, len(patches))
	for _, p := range patches {
		refs[p.Name] = RGBToLab(p.R, p.G, p.B)
	}
	return refs
}

// DeltaE2000 returns the CIEDE2000 colour difference between a measured and
// a reference Lab triple, on the standard scale where 1.0 is roughly a just
// noticeable difference.
func DeltaE2000(measured, reference Lab) float64 {
	cm := colorful.Lab(measured.L/100, measured.A/100, measured.B/100)
	cr := colorful.Lab(reference.L/100, reference.A/100, reference.B/100)
	return cm.DistanceCIEDE2000(cr) * 100
}
