package stages

import (
	"math"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/physics"
)

// ColdStart builds an initial flat NLP variable vector without any warm
// start: every mesh point holds an algebraically consistent dae.Point
// (INV1,2,6,7 satisfied to machine precision for the chosen tsub0) and Lck
// ramps linearly from 0 to Lpr0, so the feasibility stage begins from a
// point that is already close to satisfying the purely algebraic
// invariants even with no reference trajectory available.
func (b *Builder) ColdStart(tf, tsub0 float64) []float64 {
	n := b.Layout.Mesh.NPoints()
	points := make([]dae.Point, n)
	denom := n - 1
	if denom < 1 {
		denom = 1
	}
	for k := 0; k < n; k++ {
		lck := b.Model.Lpr0 * float64(k) / float64(denom)
		points[k] = b.consistentPoint(tsub0, lck, b.pchSeed(k))
	}
	return b.Layout.Pack(tf, points)
}

// pchSeed picks a starting Pch for mesh point k: the midpoint of its
// released bound box, or the fixed reference value when Pch is not
// released in this model's mode.
func (b *Builder) pchSeed(k int) float64 {
	if b.Model.ReleasePch {
		bnd := b.Model.Inputs.Controls.PchBounds
		return (bnd.Min + bnd.Max) / 2
	}
	return b.ReferencePch[k]
}

// consistentPoint hand-solves the algebraic chain forward from Tsub, Lck,
// Pch so every algebraic equality residual vanishes exactly, mirroring
// internal/sequential's evalPoint and internal/dae's own equations.
func (b *Builder) consistentPoint(tsub, lck, pch float64) dae.Point {
	p := b.Model.Inputs.Product
	ht := b.Model.Inputs.HT
	v := b.Model.Inputs.Vial

	logPsub := physics.LogPsubSat(tsub)
	psub := math.Exp(logPsub)
	rp := physics.Rp(lck, p.R0, p.A1, p.A2)
	kv := physics.Kv(pch, ht.KC, ht.KP, ht.KD)
	dmdt := v.Ap * (psub - pch) / (rp * physics.KgToG)
	tbot := tsub + (b.Model.Lpr0-lck)*(psub-pch)*physics.DeltaHsCal/rp/physics.HrToS/physics.KIce
	qsub := physics.DeltaHsCal * (psub - pch) * v.Ap / rp / physics.HrToS
	tsh := tbot + qsub/(kv*v.Av)

	return dae.Point{
		Lck: lck, Tsub: tsub, Tbot: tbot, Psub: psub, LogPsub: logPsub,
		Dmdt: dmdt, Kv: kv, Rp: rp, Tsh: tsh, Pch: pch,
	}
}
