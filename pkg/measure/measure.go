// Package measure defines measurement batches and the CSV loader that
// produces them from spectrophotometer readings.
package measure

import (
	"math"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
)

// Row is a single measured patch: its name and the Lab triple read from the
// printed chart.
type Row struct {
	Patch string        `json:"patch"`
	Lab   colormath.Lab `json:"lab"`
}

// Batch is an ordered collection of measured patches. Patch names are unique
// within a batch; the loader enforces this by keeping the first occurrence.
type Batch []Row

// Lookup returns the Lab triple of the first row matching the given patch
// name, and whether such a row exists.
func (b Batch) Lookup(name string) (colormath.Lab, bool) {
	for _, r := range b {
		if r.Patch == name {
			return r.Lab, true
		}
	}
	return colormath.Lab{}, false
}

// Clone returns a copy of the batch that shares no storage with the
// original.
func (b Batch) Clone() Batch {
	if b == nil {
		return nil
	}
	out := make(Batch, len(b))
	copy(out, b)
	return out
}

// Valid reports whether the row carries at least one parseable coordinate.
// Rows where all three coordinates failed to parse are dropped at load time.
func (r Row) Valid() bool {
	return !(math.IsNaN(r.Lab.L) && math.IsNaN(r.Lab.A) && math.IsNaN(r.Lab.B))
}
