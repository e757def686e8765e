package analysis

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// AnalyzeColourPatches computes the CIEDE2000 difference between every
// measured patch that appears in the reference table and its reference
// value, aggregates the differences, and checks each aggregate against its
// configured ceiling. Patches absent from the reference table are silently
// skipped. It returns overall pass/fail and a human-readable report.
func AnalyzeColourPatches(batch measure.Batch, refs map[string]colormath.Lab, t config.Phase4Targets) (bool, string) {
	deltas := make(map[string]float64)
	var values []float64
	for _, row := range batch {
		ref, ok := refs[row.Patch]
		if !ok {
			continue
		}
		de := colormath.DeltaE2000(row.Lab, ref)
		deltas[row.Patch] = de
		values = append(values, de)
	}

	if len(values) == 0 {
		return false, "Colour analysis failed: no measured patches match the reference table. Check patch names against the colour chart."
	}

	mean := stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	worst := sorted[len(sorted)-1]

	// Worst skin tone error, 0 when no skin patch was measured.
	var skin float64
	for _, name := range t.SkinPatches {
		if de, ok := deltas[name]; ok && de > skin {
			skin = de
		}
	}

	checks := []struct {
		name  string
		value float64
		limit float64
	}{
		{"mean dE2000", mean, t.MeanMax},
		{"p95 dE2000", p95, t.P95Max},
		{"worst dE2000", worst, t.WorstMax},
		{"skin dE2000", skin, t.SkinMax},
	}

	passed := true
	var b strings.Builder
	fmt.Fprintf(&b, "Colour analysis over %d patches:\n", len(values))
	for _, c := range checks {
		ok := c.value <= c.limit
		if !ok {
			passed = false
		}
		fmt.Fprintf(&b, "  %-13s %6.2f (limit %5.2f)  %s\n", c.name, c.value, c.limit, passFail(ok))
	}
	fmt.Fprintf(&b, "Overall: %s", passFail(passed))

	return passed, b.String()
}

func passFail(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}
