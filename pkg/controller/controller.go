// Package controller implements the phase-based calibration state machine.
// One Controller represents one in-progress calibration attempt; callers
// must serialize access to it.
package controller

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ps-bond/printerColourCalibration/pkg/analysis"
	"github.com/ps-bond/printerColourCalibration/pkg/calibration"
	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/icc"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// exportProfile is a seam for tests; it defaults to the real exporter.
var exportProfile = icc.Export

const lockedMsg = "Driver adjustments are locked. No further measurements can be processed for tuning."

// Controller manages the state and flow of the printer calibration process.
type Controller struct {
	phase     calibration.Phase
	history   []calibration.Step
	lastError string
	retained  measure.Batch

	cfg  config.Calibration
	refs map[string]colormath.Lab
}

// New returns a controller in the Precondition phase.
func New(cfg config.Calibration) *Controller {
	return &Controller{
		phase: calibration.PhasePrecondition,
		cfg:   cfg,
		refs:  config.ReferenceLabs(),
	}
}

// NewFromState reconstructs a controller from persisted session state.
// Unknown phases in the state fall back to Precondition.
func NewFromState(cfg config.Calibration, st calibration.State) *Controller {
	c := New(cfg)
	if _, ok := calibration.Parse(string(st.Phase)); ok {
		c.phase = st.Phase
	} else if st.Phase != "" {
		logrus.WithField("phase", st.Phase).Warn("unknown phase in saved session, starting over")
	}
	c.lastError = st.LastError
	c.retained = st.Retained.Clone()
	for _, s := range st.History {
		c.history = append(c.history, calibration.Step{
			Batch:      s.Batch.Clone(),
			Suggestion: s.Suggestion,
		})
	}
	return c
}

// CurrentPhase returns the current calibration phase.
func (c *Controller) CurrentPhase() calibration.Phase {
	return c.phase
}

// LastError returns the message recorded by the most recent failure, if any.
func (c *Controller) LastError() string {
	return c.lastError
}

// History returns a copy of the processed (batch, suggestion) pairs for the
// current attempt.
func (c *Controller) History() []calibration.Step {
	out := make([]calibration.Step, 0, len(c.history))
	for _, s := range c.history {
		out = append(out, calibration.Step{Batch: s.Batch.Clone(), Suggestion: s.Suggestion})
	}
	return out
}

// Process dispatches a measurement batch to the handler for the current
// phase. It never fails: every path returns a human-readable result message
// and leaves the controller in a defined phase.
func (c *Controller) Process(batch measure.Batch) string {
	if c.phase == calibration.PhasePrecondition {
		// The precondition check is merged into the first real
		// measurement: advance and process the same batch in Phase 1.
		c.transition(calibration.PhaseNeutralGrey)
	}

	switch c.phase {
	case calibration.PhaseNeutralGrey:
		return c.processNeutralGrey(batch)
	case calibration.PhaseNeutralSlope:
		return c.processNeutralSlope(batch)
	case calibration.PhaseColorAnalysis:
		return c.processColourAnalysis(batch)
	case calibration.PhaseDriverLock, calibration.PhaseICC, calibration.PhaseComplete:
		return lockedMsg
	case calibration.PhasePrecondition, calibration.PhaseError:
		return "No processing action defined for the current phase."
	}
	return "No processing action defined for the current phase."
}

// processNeutralGrey handles Phase 1: iterative mid-grey anchor calibration.
func (c *Controller) processNeutralGrey(batch measure.Batch) string {
	name := c.cfg.Phase1.Patch
	lab, ok := batch.Lookup(name)
	if !ok {
		return c.fail("patch %q not found in measurement data", name)
	}

	curErr := c.anchorError(lab)
	converged := false
	if n := len(c.history); n > 0 {
		if prevLab, ok := c.history[n-1].Batch.Lookup(name); ok {
			if colormath.Distance(lab, prevLab) < c.cfg.Convergence.MinAbsChange {
				converged = true
			}
			// A regression means further driver tweaks make things
			// worse: stop iterating.
			if curErr > c.anchorError(prevLab) {
				converged = true
			}
		}
	}

	inTarget := lab.WithinRange(c.cfg.Phase1.L, c.cfg.Phase1.A, c.cfg.Phase1.B)

	if converged {
		if inTarget {
			c.record(batch, nil)
			c.transition(calibration.PhaseNeutralSlope)
			// Phase 2 validates the same measurement data.
			return c.processNeutralSlope(batch)
		}
		c.transition(calibration.PhaseDriverLock)
		return "Phase 1 converged outside target. This may indicate driver limitations. Freezing adjustments."
	}

	adj := analysis.Suggest(lab, c.cfg.Phase1, c.cfg.InkSteps)
	c.record(batch, adj)

	if adj.IsZero() {
		if inTarget {
			c.transition(calibration.PhaseNeutralSlope)
			return c.processNeutralSlope(batch)
		}
		return c.fail("no effective adjustment could be calculated, but patch %q is not within target", name)
	}

	return "Suggestion for next print: " + adj.String()
}

// processNeutralSlope handles Phase 2: neutral slope validation over the
// anchor, RGB150 and RGB200 patches of the same batch.
func (c *Controller) processNeutralSlope(batch measure.Batch) string {
	anchorName := c.cfg.Phase1.Patch
	name150 := c.cfg.Phase2.RGB150Patch
	name200 := c.cfg.Phase2.RGB200Patch

	anchor, okAnchor := batch.Lookup(anchorName)
	lab150, ok150 := batch.Lookup(name150)
	lab200, ok200 := batch.Lookup(name200)
	if !okAnchor || !ok150 || !ok200 {
		return c.fail("one or more neutral patches (%s, %s, %s) are missing", anchorName, name150, name200)
	}

	ok150 = math.Abs(lab150.A) <= c.cfg.Phase2.RGB150ATol && math.Abs(lab150.B) <= c.cfg.Phase2.RGB150BTol
	ok200 = math.Abs(lab200.A) <= c.cfg.Phase2.RGB200ATol && math.Abs(lab200.B) <= c.cfg.Phase2.RGB200BTol
	if !ok150 || !ok200 {
		return c.fail("neutral slope validation failed: %s or %s are outside tolerance", name150, name200)
	}

	// The chromatic error must keep a consistent sign from dark to light.
	// A flip means the driver has run out of adjustment range, which is a
	// soft stop, not a failure.
	if signFlip(anchor.A, lab150.A) || signFlip(lab150.A, lab200.A) ||
		signFlip(anchor.B, lab150.B) || signFlip(lab150.B, lab200.B) {
		c.transition(calibration.PhaseDriverLock)
		return "Neutral slope is not monotonic. Indicates driver limits. Freezing driver adjustments."
	}

	c.transition(calibration.PhaseDriverLock)
	return "Phase 2 passed: neutral slope is valid. Driver adjustments are now locked."
}

// processColourAnalysis handles Phase 4: the full colour chart check.
func (c *Controller) processColourAnalysis(batch measure.Batch) string {
	passed, report := analysis.AnalyzeColourPatches(batch, c.refs, c.cfg.Phase4)
	if passed {
		c.retained = batch.Clone()
		c.transition(calibration.PhaseICC)
	} else {
		c.lastError = "colour patch analysis failed, see report for details"
		c.transition(calibration.PhaseError)
	}
	return report
}

// Export builds the ICC profile from the retained Phase 4 measurements.
// It returns the exporter's message verbatim on both success and failure;
// only success advances the phase.
func (c *Controller) Export(filename string) string {
	if c.phase != calibration.PhaseICC {
		return "Not in the correct phase to export an ICC profile."
	}
	if c.retained == nil {
		return c.fail("no valid measurement data available for export")
	}

	msg, err := exportProfile(c.retained, c.refs, filename)
	if err != nil {
		logrus.WithError(err).Error("profile export failed")
		return err.Error()
	}

	c.transition(calibration.PhaseComplete)
	return msg
}

// SetPhase is an unconditional manual override used for operator recovery.
// It clears the history, last error and retained measurements.
func (c *Controller) SetPhase(p calibration.Phase) {
	c.transition(p)
	c.history = nil
	c.lastError = ""
	c.retained = nil
}

// Reset returns the controller to its initial state.
func (c *Controller) Reset() {
	c.SetPhase(calibration.PhasePrecondition)
}

// AnchorReading returns the anchor patch Lab value from the most recently
// recorded batch, if any.
func (c *Controller) AnchorReading() (colormath.Lab, bool) {
	if len(c.history) == 0 {
		return colormath.Lab{}, false
	}
	return c.history[len(c.history)-1].Batch.Lookup(c.cfg.Phase1.Patch)
}

// Status returns the synthesized view of the controller for display.
func (c *Controller) Status() calibration.Status {
	canProcess := false
	switch c.phase {
	case calibration.PhasePrecondition, calibration.PhaseNeutralGrey,
		calibration.PhaseNeutralSlope, calibration.PhaseColorAnalysis:
		canProcess = true
	}
	return calibration.Status{
		Phase:      c.phase,
		NextAction: c.NextAction(),
		LastError:  c.lastError,
		Steps:      len(c.history),
		CanProcess: canProcess,
		CanExport:  c.phase == calibration.PhaseICC,
	}
}

// Snapshot returns a copy of the session state suitable for persistence.
func (c *Controller) Snapshot() calibration.State {
	st := calibration.State{
		Phase:     c.phase,
		LastError: c.lastError,
		Retained:  c.retained.Clone(),
	}
	for _, s := range c.history {
		st.History = append(st.History, calibration.Step{Batch: s.Batch.Clone(), Suggestion: s.Suggestion})
	}
	return st
}

// NextAction maps the current phase to a fixed instruction for the operator.
func (c *Controller) NextAction() string {
	switch c.phase {
	case calibration.PhasePrecondition:
		return "Verify preconditions (paper, ink, settings) and measure the neutral patches chart."
	case calibration.PhaseNeutralGrey:
		return fmt.Sprintf("Calibrating mid-grey anchor (%s). Apply the suggested adjustments and re-measure the neutral patches chart.", c.cfg.Phase1.Patch)
	case calibration.PhaseNeutralSlope:
		return "Mid-grey anchor is calibrated. Now validating neutral slope with the same measurement data. No adjustments needed."
	case calibration.PhaseDriverLock:
		return "Driver adjustments are now locked. Do not change any driver colour settings. Next, print and measure the full colour chart for analysis."
	case calibration.PhaseColorAnalysis:
		return "Analyzing full colour chart. This checks if the printer is within tolerance for ICC profiling."
	case calibration.PhaseICC:
		return "Printer is within tolerance. Export the ICC profile to finish."
	case calibration.PhaseComplete:
		return "Calibration is complete! ICC profile has been generated."
	case calibration.PhaseError:
		return "An error occurred: " + c.lastError
	}
	return "Calibration process is in an unhandled state."
}

// anchorError is the scalar Phase 1 error: the chromatic distance from the
// measured anchor to the target range center.
func (c *Controller) anchorError(lab colormath.Lab) float64 {
	target := colormath.Lab{A: c.cfg.Phase1.A.Center(), B: c.cfg.Phase1.B.Center()}
	return colormath.ChromaDistance(lab, target)
}

// record appends a step to the history, cloning the batch so later caller
// mutation cannot alias recorded state.
func (c *Controller) record(batch measure.Batch, adj analysis.Suggestion) {
	c.history = append(c.history, calibration.Step{
		Batch:      batch.Clone(),
		Suggestion: map[string]int(adj),
	})
}

// fail records the error message and moves to the Error phase.
func (c *Controller) fail(format string, args ...any) string {
	c.lastError = fmt.Sprintf(format, args...)
	c.transition(calibration.PhaseError)
	return c.lastError
}

func (c *Controller) transition(to calibration.Phase) {
	if c.phase == to {
		return
	}
	logrus.WithFields(logrus.Fields{
		"from": c.phase,
		"to":   to,
	}).Debug("phase transition")
	c.phase = to
}

// signFlip reports whether two errors have strictly opposite signs. A zero
// error never counts as a flip.
func signFlip(x, y float64) bool {
	return (x > 0 && y < 0) || (x < 0 && y > 0)
}
