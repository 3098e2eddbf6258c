package stages

import (
	"math"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/physics"
	"github.com/lyoptim/primarydry/internal/scenario"
	"github.com/lyoptim/primarydry/slsqp"
)

// EqualityConstraints returns every equality constraint evaluation the
// full model needs: the seven algebraic relations (INV1,2,4-7) at every
// mesh point, the differential-state linking residuals produced by the
// discretizer (INV3), and the initial condition Lck(0)=0.
func (b *Builder) EqualityConstraints() []slsqp.Evaluation {
	var out []slsqp.Evaluation
	out = append(out, b.algebraicEqualities()...)
	out = append(out, b.continuityEqualities()...)
	out = append(out, b.initialConditionEquality())
	return out
}

func (b *Builder) algebraicEqualities() []slsqp.Evaluation {
	n := b.Layout.Mesh.NPoints()
	out := make([]slsqp.Evaluation, 0, 7*n)
	for k := 0; k < n; k++ {
		k := k
		out = append(out,
			b.resLogPsub(k), b.resPsubExp(k), b.resRp(k), b.resKv(k),
			b.resSublimation(k), b.resVialBottom(k), b.resEnergyBalance(k),
		)
	}
	return out
}

func (b *Builder) point(x []float64, k int) dae.Point {
	var pt dae.Point
	for f := dae.Field(0); f < dae.NFields; f++ {
		pt = pt.Set(f, x[b.Layout.Index(k, f)])
	}
	return pt
}

func (b *Builder) resLogPsub(k int) slsqp.Evaluation {
	idxLogPsub := b.Layout.Index(k, dae.FLogPsub)
	idxTsub := b.Layout.Index(k, dae.FTsub)
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		if g != nil {
			b.zeroGrad(g)
			g[idxLogPsub] = 1
			g[idxTsub] = -physics.DLogPsubSat_DTsub(pt.Tsub)
		}
		return pt.LogPsub - physics.LogPsubSat(pt.Tsub)
	}
}

func (b *Builder) resPsubExp(k int) slsqp.Evaluation {
	idxPsub := b.Layout.Index(k, dae.FPsub)
	idxLogPsub := b.Layout.Index(k, dae.FLogPsub)
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		expLog := math.Exp(pt.LogPsub)
		if g != nil {
			b.zeroGrad(g)
			g[idxPsub] = 1
			g[idxLogPsub] = -expLog
		}
		return pt.Psub - expLog
	}
}

func (b *Builder) resRp(k int) slsqp.Evaluation {
	idxRp := b.Layout.Index(k, dae.FRp)
	idxLck := b.Layout.Index(k, dae.FLck)
	a1, a2 := b.Model.Inputs.Product.A1, b.Model.Inputs.Product.A2
	r0 := b.Model.Inputs.Product.R0
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		if g != nil {
			b.zeroGrad(g)
			g[idxRp] = 1
			g[idxLck] = -physics.DRp_DLck(pt.Lck, a1, a2)
		}
		return pt.Rp - physics.Rp(pt.Lck, r0, a1, a2)
	}
}

func (b *Builder) resKv(k int) slsqp.Evaluation {
	idxKv := b.Layout.Index(k, dae.FKv)
	idxPch := b.Layout.Index(k, dae.FPch)
	kc, kp, kd := b.Model.Inputs.HT.KC, b.Model.Inputs.HT.KP, b.Model.Inputs.HT.KD
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		if g != nil {
			b.zeroGrad(g)
			g[idxKv] = 1 + kd*pt.Pch
			g[idxPch] = pt.Kv*kd - (kc*kd + kp)
		}
		return pt.Kv*(1+kd*pt.Pch) - (kc*(1+kd*pt.Pch) + kp*pt.Pch)
	}
}

func (b *Builder) resSublimation(k int) slsqp.Evaluation {
	idxDmdt := b.Layout.Index(k, dae.FDmdt)
	idxRp := b.Layout.Index(k, dae.FRp)
	idxPsub := b.Layout.Index(k, dae.FPsub)
	idxPch := b.Layout.Index(k, dae.FPch)
	ap := b.Model.Inputs.Vial.Ap
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		if g != nil {
			b.zeroGrad(g)
			g[idxDmdt] = pt.Rp * physics.KgToG
			g[idxRp] = pt.Dmdt * physics.KgToG
			g[idxPsub] = -ap
			g[idxPch] = ap
		}
		return pt.Dmdt*pt.Rp*physics.KgToG - ap*(pt.Psub-pt.Pch)
	}
}

func (b *Builder) resVialBottom(k int) slsqp.Evaluation {
	idxTbot := b.Layout.Index(k, dae.FTbot)
	idxTsub := b.Layout.Index(k, dae.FTsub)
	idxLck := b.Layout.Index(k, dae.FLck)
	idxPsub := b.Layout.Index(k, dae.FPsub)
	idxPch := b.Layout.Index(k, dae.FPch)
	idxRp := b.Layout.Index(k, dae.FRp)
	lpr0 := b.Model.Lpr0
	kConst := physics.DeltaHsCal / (physics.HrToS * physics.KIce)
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		frozen := lpr0 - pt.Lck
		dp := pt.Psub - pt.Pch
		term := frozen * dp * kConst / pt.Rp
		if g != nil {
			b.zeroGrad(g)
			g[idxTbot] = 1
			g[idxTsub] = -1
			g[idxLck] = dp * kConst / pt.Rp
			g[idxPsub] = -frozen * kConst / pt.Rp
			g[idxPch] = frozen * kConst / pt.Rp
			g[idxRp] = frozen * dp * kConst / (pt.Rp * pt.Rp)
		}
		return pt.Tbot - pt.Tsub - term
	}
}

func (b *Builder) resEnergyBalance(k int) slsqp.Evaluation {
	idxPsub := b.Layout.Index(k, dae.FPsub)
	idxPch := b.Layout.Index(k, dae.FPch)
	idxRp := b.Layout.Index(k, dae.FRp)
	idxKv := b.Layout.Index(k, dae.FKv)
	idxTsh := b.Layout.Index(k, dae.FTsh)
	idxTbot := b.Layout.Index(k, dae.FTbot)
	av := b.Model.Inputs.Vial.Av
	c := physics.DeltaHsCal * b.Model.Inputs.Vial.Ap / physics.HrToS
	return func(x []float64, g []float64) float64 {
		pt := b.point(x, k)
		dp := pt.Psub - pt.Pch
		if g != nil {
			b.zeroGrad(g)
			g[idxPsub] = c / pt.Rp
			g[idxPch] = -c / pt.Rp
			g[idxRp] = -c * dp / (pt.Rp * pt.Rp)
			g[idxKv] = -av * (pt.Tsh - pt.Tbot)
			g[idxTsh] = -pt.Kv * av
			g[idxTbot] = pt.Kv * av
		}
		return c*dp/pt.Rp - pt.Kv*av*(pt.Tsh-pt.Tbot)
	}
}

// continuityEqualities builds the differential-state linking residuals
// from the discretizer's differentiation structure (backward Euler or
// collocation), with an analytic gradient assembled from the same
// coefficients the discretizer used to build the residual value.
func (b *Builder) continuityEqualities() []slsqp.Evaluation {
	mesh := b.Layout.Mesh
	tfIdx := b.Layout.TfIndex()
	conv := b.Model.CakeConv

	if mesh.Method == scenario.BackwardEuler {
		n := mesh.NPoints() - 1
		out := make([]slsqp.Evaluation, n)
		for k := 1; k <= n; k++ {
			k := k
			h := mesh.Taus[k] - mesh.Taus[k-1]
			lckIdx, lckPrevIdx := b.Layout.Index(k, dae.FLck), b.Layout.Index(k-1, dae.FLck)
			dmdtIdx := b.Layout.Index(k, dae.FDmdt)
			out[k-1] = func(x []float64, g []float64) float64 {
				tf, dmdt := x[tfIdx], x[dmdtIdx]
				rhs := dmdt * conv
				if g != nil {
					b.zeroGrad(g)
					g[lckIdx] = 1
					g[lckPrevIdx] = -1
					g[tfIdx] = -h * rhs
					g[dmdtIdx] = -h * tf * conv
				}
				return x[lckIdx] - x[lckPrevIdx] - h*tf*rhs
			}
		}
		return out
	}

	ncp := mesh.NCollocation
	out := make([]slsqp.Evaluation, 0, mesh.NElementsApplied*ncp)
	for e := 0; e < mesh.NElementsApplied; e++ {
		base := e * ncp
		h := mesh.Taus[base+ncp] - mesh.Taus[base]
		nodeLckIdx := make([]int, ncp+1)
		for i := 0; i <= ncp; i++ {
			nodeLckIdx[i] = b.Layout.Index(base+i, dae.FLck)
		}
		for j := 1; j <= ncp; j++ {
			j := j
			dmdtIdx := b.Layout.Index(base+j, dae.FDmdt)
			row := mesh.DiffMatrixRow(j)
			out = append(out, func(x []float64, g []float64) float64 {
				tf, dmdt := x[tfIdx], x[dmdtIdx]
				rhs := dmdt * conv
				var deriv float64
				for i := 0; i <= ncp; i++ {
					deriv += row[i] * x[nodeLckIdx[i]]
				}
				if g != nil {
					b.zeroGrad(g)
					for i := 0; i <= ncp; i++ {
						g[nodeLckIdx[i]] = row[i] / h
					}
					g[tfIdx] = -rhs
					g[dmdtIdx] = -tf * conv
				}
				return deriv/h - tf*rhs
			})
		}
	}
	return out
}

func (b *Builder) initialConditionEquality() slsqp.Evaluation {
	idx := b.Layout.Index(0, dae.FLck)
	return func(x []float64, g []float64) float64 {
		if g != nil {
			b.zeroGrad(g)
			g[idx] = 1
		}
		return x[idx]
	}
}
