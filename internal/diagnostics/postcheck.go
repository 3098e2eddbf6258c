package diagnostics

import (
	"github.com/lyoptim/primarydry/internal/ramp"
)

// RampCheck is one released control's post-solve ramp post-check.
type RampCheck struct {
	Field        string  `json:"field"`
	MaxViolation float64 `json:"max_violation"`
}

// PostCheck is the result of spec.md §4.7's constraint post-checks:
// dryness shortfall and the max ramp violation per released control.
type PostCheck struct {
	DrynessShortfall float64     `json:"dryness_shortfall"`
	RampChecks       []RampCheck `json:"ramp_checks,omitempty"`
}

// Violated reports whether any post-check exceeds the given tolerance.
func (p PostCheck) Violated(tol float64) bool {
	if p.DrynessShortfall > tol {
		return true
	}
	for _, c := range p.RampChecks {
		if c.MaxViolation > tol {
			return true
		}
	}
	return false
}

// CheckDryness returns max(0, eta - frac_dried(end)), per spec.md §4.7.
func CheckDryness(finalFracDried, eta float64) float64 {
	shortfall := eta - finalFracDried
	if shortfall < 0 {
		return 0
	}
	return shortfall
}

// CheckRamp computes the max ramp violation for one released control
// sampled at taus[k] = u[k], by delegating to the same margin arithmetic
// the NLP's ramp-rate constraint used during solve.
func CheckRamp(field string, taus, u []float64, uMax, tf float64) RampCheck {
	margins := ramp.Margins(taus, u, uMax, tf)
	return RampCheck{Field: field, MaxViolation: ramp.MaxViolation(margins)}
}
