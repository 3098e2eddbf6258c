// Package sequential is the "dumb" fixed-step explicit baseline the
// simultaneous collocation solver is benchmarked against: it marches the
// same physics kernel forward in time under a fixed Tsh(t)/Pch(t) recipe,
// with no NLP and no notion of optimality. Nothing in internal/dae,
// internal/discretize, or internal/stages imports this package — it is a
// named external interface, not a dependency of the core solver.
package sequential

import (
	"fmt"
	"math"

	"github.com/lyoptim/primarydry/internal/errs"
	"github.com/lyoptim/primarydry/internal/physics"
	"github.com/lyoptim/primarydry/internal/scenario"
	"github.com/lyoptim/primarydry/internal/warmstart"
)

// Recipe is the fixed control trajectory the integrator marches against.
// Both functions are evaluated at the current simulated time t [hr].
type Recipe struct {
	Tsh func(t float64) float64
	Pch func(t float64) float64
}

// Options configures the fixed-step march.
type Options struct {
	// Dt is the fixed integration step [hr].
	Dt float64
	// MaxHours bounds the simulated duration regardless of completion, so
	// a recipe that never reaches the dryness target cannot loop forever.
	MaxHours float64
	// TsubLow/TsubHigh bracket the bisection search for Tsub at each step.
	TsubLow, TsubHigh float64
	// Tol is the bisection convergence tolerance on the energy-balance
	// residual's bracket width [deg C].
	Tol float64
}

// DefaultOptions mirrors lyopronto's opt_Tsh.py/opt_Pch.py fixed-step
// defaults: a coarse dt, a generous time cap, and a bisection bracket wide
// enough to cover any physically sensible shelf temperature.
func DefaultOptions() Options {
	return Options{Dt: 0.05, MaxHours: 200, TsubLow: -80, TsubHigh: 60, Tol: 1e-9}
}

// Run integrates the dried-cake front forward from Lck=0 under recipe
// until Lck reaches eta*Lpr0 or MaxHours elapses, returning the resulting
// trajectory in the external ReferenceTrajectory format. It never panics
// on a recipe that fails to complete drying within MaxHours; it simply
// returns the partial trajectory so the caller can decide what to do with
// an incomplete run.
func Run(inputs scenario.ScenarioInputs, recipe Recipe, eta float64, opts Options) (warmstart.Trajectory, error) {
	if opts.Dt <= 0 {
		return warmstart.Trajectory{}, &errs.SolverUnavailableErr{Reason: fmt.Sprintf("sequential: dt (%g) must be > 0", opts.Dt)}
	}
	if opts.TsubLow >= opts.TsubHigh {
		return warmstart.Trajectory{}, &errs.SolverUnavailableErr{Reason: fmt.Sprintf("sequential: tsub bracket [%g, %g] is empty", opts.TsubLow, opts.TsubHigh)}
	}

	lpr0 := physics.Lpr0(inputs.Vial.Vfill, inputs.Vial.Ap, inputs.Product.CSolid)
	conv := physics.CakeGrowthFactor(inputs.Vial.Ap, inputs.Product.CSolid)
	target := eta * lpr0

	var samples []warmstart.Sample
	lck := 0.0
	t := 0.0

	for {
		tsh := recipe.Tsh(t)
		pch := recipe.Pch(t)

		tsub, err := solveTsub(inputs, lck, tsh, pch, opts)
		if err != nil {
			return warmstart.Trajectory{Samples: samples}, fmt.Errorf("sequential: at t=%g hr: %w", t, err)
		}

		pt := evalPoint(inputs, lck, tsub, pch)
		samples = append(samples, warmstart.Sample{
			T: t, Tsub: tsub, Tbot: pt.tbot, Tsh: tsh,
			PchMilliTorr: pch * 1000, Flux: pt.dmdt, FracDried: lck / lpr0,
		})

		if lck >= target || t >= opts.MaxHours {
			break
		}

		lck += conv * pt.dmdt * opts.Dt
		if lck > lpr0 {
			lck = lpr0
		}
		t += opts.Dt
	}

	return warmstart.Trajectory{Samples: samples}, nil
}

type evaluated struct {
	psub, rp, kv, dmdt, tbot float64
}

// evalPoint computes the algebraic chain downstream of a known Tsub, Lck,
// Pch, mirroring internal/stages' consistentPoint (used by ColdStart) and
// ultimately internal/dae.Model.Algebraic.
func evalPoint(inputs scenario.ScenarioInputs, lck, tsub, pch float64) evaluated {
	p := inputs.Product
	ht := inputs.HT
	v := inputs.Vial

	psub := physics.PsubSat(tsub)
	rp := physics.Rp(lck, p.R0, p.A1, p.A2)
	kv := physics.Kv(pch, ht.KC, ht.KP, ht.KD)
	dmdt := v.Ap * (psub - pch) / (rp * physics.KgToG)
	if dmdt < 0 {
		dmdt = 0
	}
	lpr0 := physics.Lpr0(v.Vfill, v.Ap, p.CSolid)
	tbot := tsub + (lpr0-lck)*(psub-pch)*physics.DeltaHsCal/rp/physics.HrToS/physics.KIce

	return evaluated{psub: psub, rp: rp, kv: kv, dmdt: dmdt, tbot: tbot}
}

// energyResidual is increasing in tsub: raising Tsub raises Psub (Antoine),
// which raises the sublimation flux and hence the shelf temperature the
// energy balance implies for a given Tbot. solveTsub bisects this to zero.
func energyResidual(inputs scenario.ScenarioInputs, lck, tsub, tsh, pch float64) float64 {
	pt := evalPoint(inputs, lck, tsub, pch)
	qsub := physics.DeltaHsCal * (pt.psub - pch) * inputs.Vial.Ap / pt.rp / physics.HrToS
	impliedTsh := pt.tbot + qsub/(pt.kv*inputs.Vial.Av)
	return impliedTsh - tsh
}

// solveTsub finds the Tsub consistent with the energy balance at a fixed
// Lck, Tsh, Pch via bisection on opts' bracket — the same algebraic chain
// internal/dae enforces as equalities, solved forward instead of by an NLP.
func solveTsub(inputs scenario.ScenarioInputs, lck, tsh, pch float64, opts Options) (float64, error) {
	lo, hi := opts.TsubLow, opts.TsubHigh
	fLo := energyResidual(inputs, lck, lo, tsh, pch)
	fHi := energyResidual(inputs, lck, hi, tsh, pch)
	if math.IsNaN(fLo) || math.IsNaN(fHi) {
		return 0, fmt.Errorf("energy residual is NaN at the bisection bracket [%g, %g]", lo, hi)
	}
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, fmt.Errorf("energy residual does not change sign over [%g, %g] (Tsh=%g, Pch=%g)", lo, hi, tsh, pch)
	}

	for hi-lo > opts.Tol {
		mid := 0.5 * (lo + hi)
		fMid := energyResidual(inputs, lck, mid, tsh, pch)
		if fMid == 0 {
			return mid, nil
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
