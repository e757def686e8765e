package analysis

import (
	"strings"
	"testing"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

func referenceBatch() measure.Batch {
	refs := config.ReferenceLabs()
	var batch measure.Batch
	for _, p := range config.ColourPatches {
		batch = append(batch, measure.Row{Patch: p.Name, Lab: refs[p.Name]})
	}
	return batch
}

func TestAnalyzePerfectChart(t *testing.T) {
	passed, report := AnalyzeColourPatches(referenceBatch(), config.ReferenceLabs(), config.Default().Phase4)
	if !passed {
		t.Fatalf("perfect chart should pass, report:\n%s", report)
	}
	if !strings.Contains(report, "24 patches") {
		t.Fatalf("report should cover all 24 patches:\n%s", report)
	}
	if !strings.Contains(report, "Overall: PASS") {
		t.Fatalf("unexpected report:\n%s", report)
	}
	// All aggregates must be exactly zero.
	if strings.Count(report, "  0.00") != 4 {
		t.Fatalf("expected zero for all four aggregates:\n%s", report)
	}
}

func TestAnalyzeWorstCeiling(t *testing.T) {
	batch := referenceBatch()
	// Push one patch far off: a 30-point lightness error is well past the
	// worst-case ceiling but barely moves the mean of 24 patches.
	for i := range batch {
		if batch[i].Patch == "R" {
			batch[i].Lab.L += 30
		}
	}

	passed, report := AnalyzeColourPatches(batch, config.ReferenceLabs(), config.Default().Phase4)
	if passed {
		t.Fatalf("expected failure, report:\n%s", report)
	}
	if !strings.Contains(report, "worst dE2000") || !strings.Contains(report, "FAIL") {
		t.Fatalf("expected worst-case failure in report:\n%s", report)
	}
	if !strings.Contains(report, "mean dE2000") {
		t.Fatalf("report should still show the mean check:\n%s", report)
	}
}

func TestAnalyzeSkinCeiling(t *testing.T) {
	batch := referenceBatch()
	for i := range batch {
		if batch[i].Patch == "Skin1" {
			batch[i].Lab.B += 5
		}
	}

	targets := config.Default().Phase4
	targets.SkinMax = 0.1 // any visible skin error fails

	passed, report := AnalyzeColourPatches(batch, config.ReferenceLabs(), targets)
	if passed {
		t.Fatalf("expected skin failure, report:\n%s", report)
	}
	skinLine := ""
	for _, line := range strings.Split(report, "\n") {
		if strings.Contains(line, "skin dE2000") {
			skinLine = line
		}
	}
	if !strings.Contains(skinLine, "FAIL") {
		t.Fatalf("expected skin check to fail, got %q in:\n%s", skinLine, report)
	}
}

func TestAnalyzeNoMatches(t *testing.T) {
	batch := measure.Batch{{Patch: "Unknown1", Lab: colormath.Lab{L: 50}}}
	passed, report := AnalyzeColourPatches(batch, config.ReferenceLabs(), config.Default().Phase4)
	if passed {
		t.Fatal("expected failure with zero matched patches")
	}
	if !strings.Contains(report, "no measured patches match") {
		t.Fatalf("unexpected report %q", report)
	}
}

func TestAnalyzeSkipsUnknownPatches(t *testing.T) {
	batch := append(referenceBatch(), measure.Row{Patch: "NotInTable", Lab: colormath.Lab{L: 50}})
	passed, report := AnalyzeColourPatches(batch, config.ReferenceLabs(), config.Default().Phase4)
	if !passed {
		t.Fatalf("unknown patches should be skipped, report:\n%s", report)
	}
	if !strings.Contains(report, "24 patches") {
		t.Fatalf("unknown patch should not be counted:\n%s", report)
	}
}
