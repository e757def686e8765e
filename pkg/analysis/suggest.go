// Package analysis implements the adjustment advisor and the full colour
// chart analysis used by the calibration controller.
package analysis

import (
	"fmt"
	"math"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
)

// Ink channel keys used in suggestions.
const (
	ChannelCyan    = "C"
	ChannelMagenta = "M"
	ChannelYellow  = "Y"
)

var channelOrder = []string{ChannelCyan, ChannelMagenta, ChannelYellow}

// Suggestion maps an ink channel to the number of driver slider steps the
// operator should add before the next print. Every channel is present; a
// zero value means no change.
type Suggestion map[string]int

// IsZero reports whether the suggestion changes no channel.
func (s Suggestion) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// String renders the suggestion in fixed C/M/Y order, e.g. "C+1 M+1 Y+0".
func (s Suggestion) String() string {
	out := ""
	for i, ch := range channelOrder {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s%+d", ch, s[ch])
	}
	return out
}

// Suggest computes a per-channel correction for the anchor patch.
//
// Small chromatic errors get a fine-step nudge; when either error exceeds
// twice its tolerance, every non-zero channel is escalated to the coarse
// step uniformly. Mixing coarse and fine within one suggestion invites
// oscillation, so it never happens.
func Suggest(lab colormath.Lab, t config.Phase1Targets, steps config.InkSteps) Suggestion {
	adj := Suggestion{
		ChannelCyan:    0,
		ChannelMagenta: 0,
		ChannelYellow:  0,
	}

	aTol := t.A.HalfWidth()
	bTol := t.B.HalfWidth()
	aErr := lab.A - t.A.Center()
	bErr := lab.B - t.B.Center()

	// Positive a* means too red: add cyan. Negative means too green: add
	// magenta.
	if aErr > aTol {
		adj[ChannelCyan] += steps.Fine
	} else if aErr < -aTol {
		adj[ChannelMagenta] += steps.Fine
	}

	// Positive b* means too yellow: add both cyan and magenta. Negative
	// means too blue: add yellow.
	if bErr > bTol {
		adj[ChannelCyan] += steps.Fine
		adj[ChannelMagenta] += steps.Fine
	} else if bErr < -bTol {
		adj[ChannelYellow] += steps.Fine
	}

	if math.Abs(aErr) > 2*aTol || math.Abs(bErr) > 2*bTol {
		for ch, v := range adj {
			if v != 0 {
				adj[ch] = steps.Coarse
			}
		}
	}

	return adj
}
