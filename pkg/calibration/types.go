package calibration

import "github.com/ps-bond/printerColourCalibration/pkg/measure"

// Phase defines the sequential stages of the guided calibration workflow.
type Phase string

const (
	PhasePrecondition  Phase = "Precondition"
	PhaseNeutralGrey   Phase = "Phase1NeutralGrey"
	PhaseNeutralSlope  Phase = "Phase2NeutralSlope"
	PhaseDriverLock    Phase = "Phase3DriverLock"
	PhaseColorAnalysis Phase = "Phase4ColorAnalysis"
	PhaseICC           Phase = "Phase5ICCConstruction"
	PhaseComplete      Phase = "Complete"
	PhaseError         Phase = "Error"
)

// Selectable returns every phase an operator may jump to manually. Complete
// and Error are excluded: the former is only reachable via a successful
// export, the latter only via a validation failure.
func Selectable() []Phase {
	return []Phase{
		PhasePrecondition,
		PhaseNeutralGrey,
		PhaseNeutralSlope,
		PhaseDriverLock,
		PhaseColorAnalysis,
		PhaseICC,
	}
}

// Parse validates a phase name received from the CLI or the HTTP API.
func Parse(s string) (Phase, bool) {
	switch Phase(s) {
	case PhasePrecondition, PhaseNeutralGrey, PhaseNeutralSlope,
		PhaseDriverLock, PhaseColorAnalysis, PhaseICC,
		PhaseComplete, PhaseError:
		return Phase(s), true
	}
	return "", false
}

// Step is one processed measurement batch together with the adjustment that
// was suggested for it. A nil Suggestion means no adjustment was produced
// for that step.
type Step struct {
	Batch      measure.Batch  `json:"batch"`
	Suggestion map[string]int `json:"suggestion,omitempty"`
}

// State holds the complete serializable session state. A Controller can be
// reconstructed from it after a restart.
type State struct {
	Phase     Phase         `json:"phase"`
	LastError string        `json:"lastError,omitempty"`
	History   []Step        `json:"history,omitempty"`
	Retained  measure.Batch `json:"retained,omitempty"`
}

// Result is the outcome of a processing or export call as reported over the
// HTTP API: the handler message and the phase the controller ended up in.
type Result struct {
	Message string `json:"message"`
	Phase   Phase  `json:"phase"`
}

// Status is a synthesized view model exposed via the HTTP API and CLI
// status output. It derives from the controller state; it is never stored.
type Status struct {
	Phase      Phase  `json:"phase"`
	NextAction string `json:"nextAction"`
	LastError  string `json:"lastError,omitempty"`
	Steps      int    `json:"steps"`
	CanProcess bool   `json:"canProcess"`
	CanExport  bool   `json:"canExport"`
}
