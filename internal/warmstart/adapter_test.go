package warmstart

import (
	"math"
	"testing"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/discretize"
	"github.com/lyoptim/primarydry/internal/errs"
	"github.com/lyoptim/primarydry/internal/physics"
	"github.com/lyoptim/primarydry/internal/scenario"
)

func testModel(t *testing.T) *dae.Model {
	t.Helper()
	in := scenario.ScenarioInputs{
		Vial:    scenario.Vial{Av: 3.8, Ap: 3.14, Vfill: 3.0},
		Product: scenario.Product{R0: 1.4, A1: 16.0, A2: 8.0, TPrCrit: -35, CSolid: 0.05},
		HT:      scenario.HeatTransfer{KC: 2.75e-4, KP: 8.93e-4, KD: 0.46},
		EqCap:   scenario.EquipmentCapacity{A: -0.182, B: 0.9432},
		NVial:   398,
		Controls: scenario.ControlConfig{
			TshBounds: &scenario.ControlBounds{Min: -40, Max: 20},
			PchBounds: &scenario.ControlBounds{Min: 0.05, Max: 0.5},
		},
	}
	mesh := scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 10}
	m, err := dae.Build(in, scenario.ControlBoth, mesh, scenario.RampRates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

// syntheticTrajectory builds a reference trajectory that is exactly
// consistent with the algebraic relations at every knot, by solving
// forward from Tsub the same way equations_test.go does.
func syntheticTrajectory(m *dae.Model, tFinal float64, n int) Trajectory {
	traj := Trajectory{}
	for i := 0; i <= n; i++ {
		frac := float64(i) / float64(n)
		tsub := -35.0 + 10.0*frac // warms as drying proceeds
		pchTorr := 0.15
		lck := frac * m.Lpr0

		logPsub := physics.LogPsubSat(tsub)
		psub := math.Exp(logPsub)
		rp := physics.Rp(lck, m.Inputs.Product.R0, m.Inputs.Product.A1, m.Inputs.Product.A2)
		kv := physics.Kv(pchTorr, m.Inputs.HT.KC, m.Inputs.HT.KP, m.Inputs.HT.KD)
		tbot := tsub + (m.Lpr0-lck)*(psub-pchTorr)*physics.DeltaHsCal/rp/physics.HrToS/physics.KIce
		qsub := physics.DeltaHsCal * (psub - pchTorr) * m.Inputs.Vial.Ap / rp / physics.HrToS
		tsh := tbot + qsub/(kv*m.Inputs.Vial.Av)

		traj.Samples = append(traj.Samples, Sample{
			T:            frac * tFinal,
			Tsub:         tsub,
			Tbot:         tbot,
			Tsh:          tsh,
			PchMilliTorr: pchTorr * 1000,
			FracDried:    frac,
		})
	}
	return traj
}

func TestAdaptProducesFeasibleAlgebraicsWithinTolerance(t *testing.T) {
	m := testModel(t)
	mesh, err := discretize.BuildMesh(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	traj := syntheticTrajectory(m, 12.0, 40)

	res, err := Adapt(m, mesh, traj, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Tf != 12.0 {
		t.Errorf("Tf=%v want 12.0", res.Tf)
	}
	if res.MaxResidual > ResidualTolerance {
		t.Errorf("MaxResidual=%v exceeds tolerance %v", res.MaxResidual, ResidualTolerance)
	}
	if res.VariableMatchRatio != 1.0 {
		t.Errorf("VariableMatchRatio=%v want 1.0 (reference spans the whole mesh)", res.VariableMatchRatio)
	}
	if len(res.Points) != mesh.NPoints() {
		t.Errorf("len(Points)=%d want %d", len(res.Points), mesh.NPoints())
	}
}

func TestAdaptConvertsMilliTorrToTorr(t *testing.T) {
	m := testModel(t)
	mesh, err := discretize.BuildMesh(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	traj := syntheticTrajectory(m, 10.0, 4)

	res, err := Adapt(m, mesh, traj, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, pt := range res.Points {
		if pt.Pch > 1.0 {
			t.Errorf("point %d: Pch=%v looks like it is still in milli-Torr", i, pt.Pch)
		}
	}
}

func TestAdaptRejectsEmptyTrajectory(t *testing.T) {
	m := testModel(t)
	mesh, err := discretize.BuildMesh(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = Adapt(m, mesh, Trajectory{}, Options{})
	if err == nil {
		t.Fatal("expected error for empty trajectory")
	}
	if _, ok := err.(*errs.WarmStartInconsistentErr); !ok {
		t.Fatalf("expected *errs.WarmStartInconsistentErr, got %T", err)
	}
}

func TestAdaptAllowsInconsistentWhenConfigured(t *testing.T) {
	m := testModel(t)
	mesh, err := discretize.BuildMesh(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Tbot equals Tsub while Lck < Lpr0 and Psub > Pch, so the vial-bottom
	// and energy-balance residuals will not vanish, yet caller opted in.
	traj := Trajectory{Samples: []Sample{
		{T: 0, Tsub: -30, Tbot: -30, Tsh: -10, PchMilliTorr: 150, FracDried: 0.0},
		{T: 10, Tsub: -30, Tbot: -30, Tsh: -10, PchMilliTorr: 150, FracDried: 1.0},
	}}
	if _, err := Adapt(m, mesh, traj, Options{}); err == nil {
		t.Fatal("expected WarmStartInconsistentErr without AllowInconsistent")
	}
	if _, err := Adapt(m, mesh, traj, Options{AllowInconsistent: true}); err != nil {
		t.Fatalf("unexpected error with AllowInconsistent: %v", err)
	}
}
