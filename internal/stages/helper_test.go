package stages

import (
	"testing"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/scenario"
)

func testScenario() scenario.ScenarioInputs {
	return scenario.ScenarioInputs{
		Vial:    scenario.Vial{Av: 3.8, Ap: 3.14, Vfill: 3.0},
		Product: scenario.Product{R0: 1.4, A1: 16.0, A2: 8.0, TPrCrit: -25, CSolid: 0.05},
		HT:      scenario.HeatTransfer{KC: 2.75e-4, KP: 8.93e-4, KD: 0.46},
		EqCap:   scenario.EquipmentCapacity{A: -0.182, B: 0.9432},
		NVial:   398,
		Controls: scenario.ControlConfig{
			TshBounds:    &scenario.ControlBounds{Min: -40, Max: 20},
			PchBounds:    &scenario.ControlBounds{Min: 0.05, Max: 0.3},
			TshReference: []scenario.ReferencePoint{{Tau: 0, Value: -10}},
			PchReference: []scenario.ReferencePoint{{Tau: 0, Value: 0.15}},
		},
	}
}

func testMeshSpec() scenario.MeshSpec {
	return scenario.MeshSpec{Method: scenario.BackwardEuler, NElements: 3}
}

func newTestBuilder(t *testing.T, mode scenario.ControlMode) *Builder {
	t.Helper()
	model, err := dae.Build(testScenario(), mode, testMeshSpec(), scenario.RampRates{})
	if err != nil {
		t.Fatalf("dae.Build: %v", err)
	}
	b, err := NewBuilder(model, testMeshSpec())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	n := b.Layout.Mesh.NPoints()
	b.ReferenceTsh = make([]float64, n)
	b.ReferencePch = make([]float64, n)
	for k := range b.ReferenceTsh {
		b.ReferenceTsh[k] = -10
		b.ReferencePch[k] = 0.15
	}
	return b
}

// feasibleX builds a flat variable vector where every mesh point carries
// an algebraically consistent point at Tsub=-30, Pch=0.15 and Lck ramps
// linearly toward Lpr0, so continuity and algebraic residuals are both
// small. Delegates to the Builder's own consistentPoint rather than
// restating the algebraic chain a second time.
func feasibleX(b *Builder, tf float64) []float64 {
	n := b.Layout.Mesh.NPoints()
	points := make([]dae.Point, n)
	for k := 0; k < n; k++ {
		lck := b.Model.Lpr0 * float64(k) / float64(n-1)
		points[k] = b.consistentPoint(-30.0, lck, 0.15)
	}
	return b.Layout.Pack(tf, points)
}

func gradBuf(n int) []float64 { return make([]float64, n) }
