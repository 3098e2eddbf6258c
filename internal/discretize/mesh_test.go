package discretize

import (
	"math"
	"testing"

	"github.com/lyoptim/primarydry/internal/scenario"
)

func TestBuildBackwardEulerMeshIsStrictlyIncreasing(t *testing.T) {
	m := buildBackwardEuler(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 10})
	assertStrictlyIncreasing(t, m.Taus)
	if got, want := m.NPoints(), 11; got != want {
		t.Errorf("NPoints()=%d want %d", got, want)
	}
}

func TestBuildCollocationMeshLastRootHitsElementBoundary(t *testing.T) {
	mesh := scenario.MeshSpec{Method: scenario.CollocationRadau, NElements: 4, NCollocation: 3}
	m, err := BuildMesh(mesh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertStrictlyIncreasing(t, m.Taus)
	if got, want := m.Taus[len(m.Taus)-1], 1.0; math.Abs(got-want) > 1e-12 {
		t.Errorf("final mesh point = %v, want 1.0", got)
	}
	if got, want := m.NPoints(), 4*3+1; got != want {
		t.Errorf("NPoints()=%d want %d", got, want)
	}
}

func TestEffectiveNFEParityRule(t *testing.T) {
	mesh := scenario.MeshSpec{Method: scenario.CollocationRadau, NElements: 20, NCollocation: 3, EffectiveNFE: true}
	m, err := BuildMesh(mesh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := 7; m.NElementsApplied != want { // ceil(20/3) = 7
		t.Errorf("NElementsApplied=%d want %d", m.NElementsApplied, want)
	}
}

func TestDiffResidualVanishesForLinearTrajectory(t *testing.T) {
	// Lck(tau) = 2*tau grows at constant rate dLck/dtau = 2, so with Tf=1
	// and rhs=2 everywhere, every differentiation scheme should recover
	// the exact derivative and produce zero residuals.
	for _, mesh := range []scenario.MeshSpec{
		{Method: scenario.BackwardEuler, NElements: 8},
		{Method: scenario.CollocationRadau, NElements: 4, NCollocation: 2},
		{Method: scenario.CollocationRadau, NElements: 4, NCollocation: 3},
		{Method: scenario.CollocationRadau, NElements: 4, NCollocation: 5},
	} {
		m, err := BuildMesh(mesh)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", mesh, err)
		}
		n := m.NPoints()
		lck := make([]float64, n)
		rhs := make([]float64, n)
		for i, tau := range m.Taus {
			lck[i] = 2 * tau
			rhs[i] = 2
		}
		res := m.DiffResidual(lck, rhs, 1.0)
		for i, r := range res {
			if math.Abs(r) > 1e-8 {
				t.Errorf("%+v: residual[%d]=%v, want ~0", mesh, i, r)
			}
		}
	}
}

func TestDiffResidualNonzeroForInconsistentTrajectory(t *testing.T) {
	m, err := BuildMesh(scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := m.NPoints()
	lck := make([]float64, n)
	rhs := make([]float64, n)
	for i := range lck {
		lck[i] = float64(i) * float64(i) // quadratic, not linear
		rhs[i] = 1.0                     // rhs inconsistent with quadratic growth
	}
	res := m.DiffResidual(lck, rhs, 1.0)
	var maxAbs float64
	for _, r := range res {
		if math.Abs(r) > maxAbs {
			maxAbs = math.Abs(r)
		}
	}
	if maxAbs < 1e-6 {
		t.Errorf("expected nonzero residual for inconsistent trajectory, got max %v", maxAbs)
	}
}

func assertStrictlyIncreasing(t *testing.T, taus []float64) {
	t.Helper()
	for i := 1; i < len(taus); i++ {
		if taus[i] <= taus[i-1] {
			t.Fatalf("mesh points not strictly increasing at index %d: %v <= %v", i, taus[i], taus[i-1])
		}
	}
}
