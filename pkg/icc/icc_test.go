package icc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

func TestExportRoundTrip(t *testing.T) {
	refs := map[string]colormath.Lab{
		"RGB100": {L: 42.4},
		"Skin1":  {L: 74.5, A: 14.8, B: 39.9},
	}
	batch := measure.Batch{
		{Patch: "RGB100", Lab: colormath.Lab{L: 42.1, A: 0.3, B: -0.9}},
		{Patch: "Skin1", Lab: colormath.Lab{L: 74.0, A: 15.1, B: 40.2}},
		{Patch: "NotInTable", Lab: colormath.Lab{L: 50}},
	}

	path := filepath.Join(t.TempDir(), "printer-profile")
	msg, err := Export(batch, refs, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "printer-profile.icc") {
		t.Fatalf("message should name the destination with extension, got %q", msg)
	}
	if !strings.Contains(msg, "2 patches") {
		t.Fatalf("unmatched patches should be excluded, got %q", msg)
	}

	p, err := Load(path + DefaultExtension)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(p.Pairs))
	}
	if p.Pairs[0].Patch != "RGB100" || p.Pairs[0].Measured.L != 42.1 {
		t.Fatalf("unexpected first pair %+v", p.Pairs[0])
	}
	if p.Pairs[1].Reference.B != 39.9 {
		t.Fatalf("unexpected reference for Skin1: %+v", p.Pairs[1])
	}
}

func TestExportKeepsExplicitExtension(t *testing.T) {
	refs := map[string]colormath.Lab{"RGB100": {L: 42.4}}
	batch := measure.Batch{{Patch: "RGB100", Lab: colormath.Lab{L: 42.1}}}

	path := filepath.Join(t.TempDir(), "out.profile")
	if _, err := Export(batch, refs, path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected artifact at %s: %v", path, err)
	}
}

func TestExportNoMatchedPatches(t *testing.T) {
	refs := map[string]colormath.Lab{"RGB100": {L: 42.4}}
	batch := measure.Batch{{Patch: "Unknown", Lab: colormath.Lab{L: 50}}}

	path := filepath.Join(t.TempDir(), "out")
	_, err := Export(batch, refs, path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no measured patches match") {
		t.Fatalf("unexpected error %v", err)
	}
	if _, statErr := os.Stat(path + DefaultExtension); !os.IsNotExist(statErr) {
		t.Fatal("failed export must not leave an artifact behind")
	}
}

func TestLoadRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.icc")
	if err := os.WriteFile(path, []byte("not a profile at all"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for foreign file")
	}
}
