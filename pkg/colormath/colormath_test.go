package colormath

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	a := Lab{L: 50, A: 0, B: 0}
	b := Lab{L: 50, A: 3, B: 4}
	if d := Distance(a, b); math.Abs(d-5) > 1e-9 {
		t.Fatalf("Distance = %v, want 5", d)
	}
	if d := Distance(a, a); d != 0 {
		t.Fatalf("Distance to self = %v, want 0", d)
	}
}

func TestChromaDistanceIgnoresLightness(t *testing.T) {
	a := Lab{L: 10, A: 1, B: 2}
	b := Lab{L: 90, A: 4, B: 6}
	if d := ChromaDistance(a, b); math.Abs(d-5) > 1e-9 {
		t.Fatalf("ChromaDistance = %v, want 5", d)
	}
}

func TestRangeContains(t *testing.T) {
	r := Range{Min: -2, Max: 2}
	for _, v := range []float64{-2, 0, 2} {
		if !r.Contains(v) {
			t.Errorf("Contains(%v) = false, want true", v)
		}
	}
	for _, v := range []float64{-2.001, 2.001} {
		if r.Contains(v) {
			t.Errorf("Contains(%v) = true, want false", v)
		}
	}
	if c := r.Center(); c != 0 {
		t.Errorf("Center = %v, want 0", c)
	}
	if h := r.HalfWidth(); h != 2 {
		t.Errorf("HalfWidth = %v, want 2", h)
	}
}

func TestWithinRange(t *testing.T) {
	lr := Range{Min: 37, Max: 47}
	ar := Range{Min: -1.5, Max: 1.5}
	br := Range{Min: -2, Max: 2}

	if !(Lab{L: 42, A: 0.5, B: -1}).WithinRange(lr, ar, br) {
		t.Error("in-range triple rejected")
	}
	if (Lab{L: 42, A: 1.6, B: 0}).WithinRange(lr, ar, br) {
		t.Error("out-of-range a* accepted")
	}
	if (Lab{L: 48, A: 0, B: 0}).WithinRange(lr, ar, br) {
		t.Error("out-of-range L* accepted")
	}
}

func TestRGBToLab(t *testing.T) {
	white := RGBToLab(255, 255, 255)
	if math.Abs(white.L-100) > 0.1 {
		t.Errorf("white L* = %v, want ~100", white.L)
	}
	if math.Abs(white.A) > 0.5 || math.Abs(white.B) > 0.5 {
		t.Errorf("white should be neutral, got a*=%v b*=%v", white.A, white.B)
	}

	black := RGBToLab(0, 0, 0)
	if math.Abs(black.L) > 0.1 {
		t.Errorf("black L* = %v, want ~0", black.L)
	}

	// sRGB(100,100,100) lands in the low forties, which is what the
	// neutral grey phase anchors on.
	grey := RGBToLab(100, 100, 100)
	if grey.L < 40 || grey.L > 45 {
		t.Errorf("grey L* = %v, want within [40, 45]", grey.L)
	}
	if math.Abs(grey.A) > 0.5 || math.Abs(grey.B) > 0.5 {
		t.Errorf("grey should be neutral, got a*=%v b*=%v", grey.A, grey.B)
	}
}

func TestDeltaE2000(t *testing.T) {
	ref := Lab{L: 50, A: 2.5, B: -10}
	if de := DeltaE2000(ref, ref); de != 0 {
		t.Fatalf("identity dE2000 = %v, want 0", de)
	}

	// White against black is the largest neutral difference and lands
	// right at 100 on the standard scale.
	de := DeltaE2000(Lab{L: 100}, Lab{})
	if math.Abs(de-100) > 1 {
		t.Fatalf("white/black dE2000 = %v, want ~100", de)
	}

	// Small differences stay small and symmetric.
	a := Lab{L: 50, A: 1, B: 1}
	b := Lab{L: 50.5, A: 1.2, B: 0.8}
	d1, d2 := DeltaE2000(a, b), DeltaE2000(b, a)
	if d1 <= 0 || d1 > 2 {
		t.Errorf("small dE2000 = %v, want within (0, 2]", d1)
	}
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("dE2000 not symmetric: %v vs %v", d1, d2)
	}
}

func TestReferenceTable(t *testing.T) {
	patches := []Patch{
		{Name: "White", R: 255, G: 255, B: 255},
		{Name: "Black"},
	}
	refs := ReferenceTable(patches)
	if len(refs) != 2 {
		t.Fatalf("got %d entries, want 2", len(refs))
	}
	if refs["White"].L <= refs["Black"].L {
		t.Fatalf("white L* %v should exceed black L* %v", refs["White"].L, refs["Black"].L)
	}
}
