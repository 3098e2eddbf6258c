package stages

import (
	"math"
	"strconv"
	"testing"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/scenario"
)

func TestInequalityGradientsMatchNumericalJacobian(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlBoth)
	x := feasibleX(b, 4.0)

	for i, eval := range b.InequalityConstraints(0.99) {
		checkGradient(t, b.Layout.N, x, evaluationLike(eval), 1e-5, "inequality["+strconv.Itoa(i)+"]")
	}
}

func TestCriticalTempMarginSignFlipsAtThreshold(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlShelfTemp)
	x := feasibleX(b, 4.0)
	idxTsub := b.Layout.Index(0, dae.FTsub)

	margin := b.criticalTempMargin(0)
	below := margin(x, nil)
	x[idxTsub] = -10 // push Tsub above T_pr_crit
	above := margin(x, nil)
	if above <= below {
		t.Errorf("expected margin to increase as Tsub rises above T_pr_crit: below=%v above=%v", below, above)
	}
}

func TestFinalDrynessMarginVanishesAtTarget(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlShelfTemp)
	x := feasibleX(b, 4.0)
	last := b.Layout.Mesh.NPoints() - 1
	lckIdx := b.Layout.Index(last, dae.FLck)

	eta := 0.99
	x[lckIdx] = eta * b.Model.Lpr0
	margin := b.finalDrynessMargin(eta)
	if r := margin(x, nil); math.Abs(r) > 1e-9 {
		t.Errorf("expected margin ~0 exactly at target, got %v", r)
	}
}

func TestCapacityMarginGradientSigns(t *testing.T) {
	b := newTestBuilder(t, scenario.ControlBoth)
	x := feasibleX(b, 4.0)
	g := gradBuf(b.Layout.N)
	b.capacityMargin(0)(x, g)

	idxPch := b.Layout.Index(0, dae.FPch)
	idxDmdt := b.Layout.Index(0, dae.FDmdt)
	if g[idxPch] != b.Model.Inputs.EqCap.B {
		t.Errorf("d(margin)/d(Pch) = %v, want EqCap.B = %v", g[idxPch], b.Model.Inputs.EqCap.B)
	}
	if g[idxDmdt] != -float64(b.Model.Inputs.NVial) {
		t.Errorf("d(margin)/d(Dmdt) = %v, want -NVial = %v", g[idxDmdt], -float64(b.Model.Inputs.NVial))
	}
}
