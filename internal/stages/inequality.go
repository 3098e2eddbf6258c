package stages

import (
	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/slsqp"
)

// InequalityConstraints returns every inequality constraint evaluation
// (all following the slsqp convention c(x) >= 0): INV8 critical
// temperature margin and INV9 equipment capacity margin at every mesh
// point, INV10 final dryness margin, and INV11 ramp margins for whichever
// controls carry a configured rate limit.
func (b *Builder) InequalityConstraints(eta float64) []slsqp.Evaluation {
	var out []slsqp.Evaluation
	n := b.Layout.Mesh.NPoints()
	for k := 0; k < n; k++ {
		out = append(out, b.criticalTempMargin(k), b.capacityMargin(k))
	}
	out = append(out, b.finalDrynessMargin(eta))
	out = append(out, b.rampMargins()...)
	return out
}

func (b *Builder) criticalTempMargin(k int) slsqp.Evaluation {
	idxTsub := b.Layout.Index(k, dae.FTsub)
	tPrCrit := b.Model.Inputs.Product.TPrCrit
	return func(x []float64, g []float64) float64 {
		if g != nil {
			b.zeroGrad(g)
			g[idxTsub] = 1
		}
		return x[idxTsub] - tPrCrit
	}
}

func (b *Builder) capacityMargin(k int) slsqp.Evaluation {
	idxPch := b.Layout.Index(k, dae.FPch)
	idxDmdt := b.Layout.Index(k, dae.FDmdt)
	a, bb := b.Model.Inputs.EqCap.A, b.Model.Inputs.EqCap.B
	nVial := float64(b.Model.Inputs.NVial)
	return func(x []float64, g []float64) float64 {
		if g != nil {
			b.zeroGrad(g)
			g[idxPch] = bb
			g[idxDmdt] = -nVial
		}
		return (a + bb*x[idxPch]) - nVial*x[idxDmdt]
	}
}

func (b *Builder) finalDrynessMargin(eta float64) slsqp.Evaluation {
	last := b.Layout.Mesh.NPoints() - 1
	idxLck := b.Layout.Index(last, dae.FLck)
	lpr0 := b.Model.Lpr0
	return func(x []float64, g []float64) float64 {
		if g != nil {
			b.zeroGrad(g)
			g[idxLck] = 1
		}
		return x[idxLck] - eta*lpr0
	}
}
