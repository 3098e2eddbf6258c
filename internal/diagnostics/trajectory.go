// Package diagnostics extracts the physical-time trajectory, the model
// size, the termination classification, and the constraint post-checks
// from a solved (or partially solved) staged optimization, per spec.md
// §4.7.
package diagnostics

import (
	"math"

	"github.com/lyoptim/primarydry/internal/dae"
)

// Row is one sample of the 7-column trajectory contract: physical time,
// sublimation-front and vial-bottom temperatures, the released/reference
// shelf and chamber controls, flux, and dryness fraction. Pressure is
// reported in milli-Torr to match spec.md §6's external convention.
type Row struct {
	T            float64 `json:"t"`
	Tsub         float64 `json:"tsub"`
	Tbot         float64 `json:"tbot"`
	Tsh          float64 `json:"tsh"`
	PchMilliTorr float64 `json:"pch_mtorr"`
	Flux         float64 `json:"flux"`
	FracDried    float64 `json:"frac_dried"`
}

// ExtractTrajectory dehomogenizes normalized-time mesh points into
// physical time and converts Pch to milli-Torr. points and the mesh's
// Taus must be parallel (one dae.Point per mesh node).
func ExtractTrajectory(model *dae.Model, taus []float64, tf float64, points []dae.Point) []Row {
	rows := make([]Row, len(points))
	for k, pt := range points {
		rows[k] = Row{
			T:            taus[k] * tf,
			Tsub:         pt.Tsub,
			Tbot:         pt.Tbot,
			Tsh:          pt.Tsh,
			PchMilliTorr: pt.Pch * 1000.0,
			Flux:         pt.Dmdt / (model.Inputs.Vial.Ap * 1e-4), // kg/hr per m^2 of Ap (cm^2)
			FracDried:    pt.Lck / model.Lpr0,
		}
	}
	return rows
}

// AsColumns renders a trajectory in the wire order spec.md §6 mandates:
// (time[hr], Tsub[°C], Tbot[°C], Tsh[°C], Pch[mTorr], flux[kg·hr⁻¹·m⁻²],
// frac_dried[0..1]).
func AsColumns(rows []Row) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = []float64{r.T, r.Tsub, r.Tbot, r.Tsh, r.PchMilliTorr, r.Flux, r.FracDried}
	}
	return out
}

// ModelSize reports the NLP's dimension, per spec.md §4.7.
type ModelSize struct {
	NVariables   int `json:"n_variables"`
	NConstraints int `json:"n_constraints"`
	NObjectives  int `json:"n_objectives"`
}

// NumericError scans the trajectory for non-finite values; returns the
// field name and row index of the first one found, or ok=false if the
// trajectory is entirely finite.
func NumericError(rows []Row) (field string, index int, ok bool) {
	for i, r := range rows {
		switch {
		case !isFinite(r.T):
			return "t", i, true
		case !isFinite(r.Tsub):
			return "Tsub", i, true
		case !isFinite(r.Tbot):
			return "Tbot", i, true
		case !isFinite(r.Tsh):
			return "Tsh", i, true
		case !isFinite(r.PchMilliTorr):
			return "Pch", i, true
		case !isFinite(r.Flux):
			return "flux", i, true
		case !isFinite(r.FracDried):
			return "frac_dried", i, true
		}
	}
	return "", 0, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
