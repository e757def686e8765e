package analysis

import (
	"testing"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
)

func TestSuggest(t *testing.T) {
	cfg := config.Default()
	// Defaults: a tolerance 1.5, b tolerance 2.0, fine 1, coarse 4.

	tests := []struct {
		name    string
		a, b    float64
		want    Suggestion
	}{
		{
			name: "in target",
			a:    0.5, b: -1.0,
			want: Suggestion{"C": 0, "M": 0, "Y": 0},
		},
		{
			name: "slightly red",
			a:    2.0, b: 0,
			want: Suggestion{"C": 1, "M": 0, "Y": 0},
		},
		{
			name: "slightly green",
			a:    -2.0, b: 0,
			want: Suggestion{"C": 0, "M": 1, "Y": 0},
		},
		{
			name: "slightly yellow",
			a:    0, b: 3.0,
			want: Suggestion{"C": 1, "M": 1, "Y": 0},
		},
		{
			name: "slightly blue",
			a:    0, b: -3.0,
			want: Suggestion{"C": 0, "M": 0, "Y": 1},
		},
		{
			// An error of exactly twice the tolerance still uses fine
			// steps; escalation requires strictly greater.
			name: "a error at exactly twice tolerance",
			a:    3.0, b: 0,
			want: Suggestion{"C": 1, "M": 0, "Y": 0},
		},
		{
			name: "b error at exactly twice tolerance",
			a:    0, b: 4.0,
			want: Suggestion{"C": 1, "M": 1, "Y": 0},
		},
		{
			name: "a error beyond twice tolerance escalates",
			a:    3.01, b: 0,
			want: Suggestion{"C": 4, "M": 0, "Y": 0},
		},
		{
			// Escalation applies the coarse step to every non-zero
			// channel, never mixing coarse and fine.
			name: "escalation is uniform",
			a:    -2.0, b: -5.0,
			want: Suggestion{"C": 0, "M": 4, "Y": 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lab := colormath.Lab{L: 42, A: tt.a, B: tt.b}
			got := Suggest(lab, cfg.Phase1, cfg.InkSteps)
			for ch, want := range tt.want {
				if got[ch] != want {
					t.Fatalf("channel %s: got %d, want %d (full: %s)", ch, got[ch], want, got)
				}
			}
		})
	}
}

func TestSuggestionString(t *testing.T) {
	s := Suggestion{"C": 4, "M": 0, "Y": 1}
	if got := s.String(); got != "C+4 M+0 Y+1" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestSuggestionIsZero(t *testing.T) {
	if !(Suggestion{"C": 0, "M": 0, "Y": 0}).IsZero() {
		t.Fatal("all-zero suggestion should be zero")
	}
	if (Suggestion{"C": 0, "M": 1, "Y": 0}).IsZero() {
		t.Fatal("non-zero suggestion reported as zero")
	}
}
