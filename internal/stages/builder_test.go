package stages

import (
	"testing"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/scenario"
)

func TestBoundsCollapsesUnreleasedControlToReference(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlShelfTemp)
	bounds := b.Bounds()

	for k := 0; k < b.Layout.Mesh.NPoints(); k++ {
		idx := b.Layout.Index(k, dae.FPch)
		want := b.ReferencePch[k]
		if bounds[idx].Lower != want || bounds[idx].Upper != want {
			t.Errorf("point %d: Pch bound = %v, want collapsed to reference %v", k, bounds[idx], want)
		}

		tshIdx := b.Layout.Index(k, dae.FTsh)
		if bounds[tshIdx].Lower != -40 || bounds[tshIdx].Upper != 20 {
			t.Errorf("point %d: Tsh bound = %v, want released box [-40, 20]", k, bounds[tshIdx])
		}
	}
}

func TestBoundsReleasesBothControlsInJointMode(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlBoth)
	bounds := b.Bounds()
	idx := b.Layout.Index(0, dae.FPch)
	if bounds[idx].Lower != 0.05 || bounds[idx].Upper != 0.3 {
		t.Errorf("Pch bound = %v, want released box [0.05, 0.3]", bounds[idx])
	}
}

func TestRampMarginsEmptyWithoutConfiguredRate(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlShelfTemp)
	if margins := b.rampMargins(); len(margins) != 0 {
		t.Errorf("expected no ramp margins without a configured rate, got %d", len(margins))
	}
}

func TestRampMarginsPresentWhenRateConfigured(t *testing.T) {
	model, err := dae.Build(testScenario(), scenario.ControlShelfTemp, testMeshSpec(), scenario.RampRates{TshMax: floatPtr(1.0)})
	if err != nil {
		t.Fatalf("dae.Build: %v", err)
	}
	b, err := NewBuilder(model, testMeshSpec())
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	n := b.Layout.Mesh.NPoints()
	b.ReferencePch = make([]float64, n)
	for k := range b.ReferencePch {
		b.ReferencePch[k] = 0.15
	}

	margins := b.rampMargins()
	wantCount := 2 * (b.Layout.Mesh.NPoints() - 1)
	if len(margins) != wantCount {
		t.Errorf("got %d ramp margins, want %d", len(margins), wantCount)
	}
}

func floatPtr(v float64) *float64 { return &v }
