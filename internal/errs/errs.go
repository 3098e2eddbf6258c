// Package errs defines the typed error taxonomy shared across the
// optimization pipeline. Every stage that can fail returns one of these
// so the grid runner can classify and persist a benchmark record instead
// of aborting the sweep.
package errs

import (
	"fmt"
	"strings"
)

// InvalidScenarioErr collects every offending field found during the
// eager, collective validation performed before any NLP variable is
// created.
type InvalidScenarioErr struct {
	Violations []string
}

func (e *InvalidScenarioErr) Error() string {
	return fmt.Sprintf("invalid scenario: %s", strings.Join(e.Violations, "; "))
}

// SolverUnavailableErr indicates the required nonlinear solver could not
// be constructed. Non-retryable.
type SolverUnavailableErr struct {
	Reason string
}

func (e *SolverUnavailableErr) Error() string {
	return fmt.Sprintf("solver unavailable: %s", e.Reason)
}

// WarmStartInconsistentErr indicates the reference trajectory violates
// one or more algebraic invariants beyond tolerance once mapped onto the
// mesh.
type WarmStartInconsistentErr struct {
	Residuals map[string]float64
}

func (e *WarmStartInconsistentErr) Error() string {
	return fmt.Sprintf("warm start inconsistent: %d residuals over tolerance", len(e.Residuals))
}

// Stage identifies which staged-solver phase produced a failure.
type Stage string

const (
	StageBuild    Stage = "build_error"
	StagePresolve Stage = "presolve"
	StageF        Stage = "stage_F"
	StageT        Stage = "stage_T"
	StageC        Stage = "stage_C"
	StageO        Stage = "stage_O"
	StagePostcheck Stage = "postcheck"
)

// StageFailureErr indicates the NLP solver returned a non-optimal status
// in the named stage after the retry-with-relaxed-tolerances policy was
// exhausted.
type StageFailureErr struct {
	Stage  Stage
	Status string
}

func (e *StageFailureErr) Error() string {
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Status)
}

// PostCheckViolationErr indicates the solved trajectory failed one of the
// post-solve invariant checks (dryness shortfall, ramp violation).
type PostCheckViolationErr struct {
	DrynessShortfall float64
	RampViolations   map[string]float64
}

func (e *PostCheckViolationErr) Error() string {
	return fmt.Sprintf("post-check violation: dryness shortfall %.4g, %d ramp violations",
		e.DrynessShortfall, len(e.RampViolations))
}

// TimeoutErr indicates the CPU- or wall-time budget was exceeded.
type TimeoutErr struct {
	Stage Stage
	Kind  string // "cpu" or "wall"
}

func (e *TimeoutErr) Error() string {
	return fmt.Sprintf("timeout (%s) during %s", e.Kind, e.Stage)
}

// NumericErrorErr indicates a non-finite value was found in the extracted
// trajectory.
type NumericErrorErr struct {
	Field string
	Index int
}

func (e *NumericErrorErr) Error() string {
	return fmt.Sprintf("non-finite value in field %q at mesh point %d", e.Field, e.Index)
}
