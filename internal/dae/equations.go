package dae

import (
	"math"

	"github.com/lyoptim/primarydry/internal/physics"
)

// AlgebraicResiduals computes the seven algebraic equality residuals of
// INV1, INV2, INV4-INV7 at a single mesh point. Each should be driven to
// zero by the solver; ResLogPsub/ResPsubExp implement the split
// log-then-exponential recovery of INV1.
type AlgebraicResiduals struct {
	LogPsub       float64
	PsubExp       float64
	Rp            float64
	Kv            float64
	Sublimation   float64
	VialBottom    float64
	EnergyBalance float64
}

// Algebraic evaluates the seven algebraic equality residuals at pt.
func (m *Model) Algebraic(pt Point) AlgebraicResiduals {
	p := m.Inputs.Product
	ht := m.Inputs.HT
	v := m.Inputs.Vial

	return AlgebraicResiduals{
		LogPsub: pt.LogPsub - physics.LogPsubSat(pt.Tsub),
		PsubExp: pt.Psub - math.Exp(pt.LogPsub),
		Rp:      pt.Rp - physics.Rp(pt.Lck, p.R0, p.A1, p.A2),
		Kv:      pt.Kv*(1+ht.KD*pt.Pch) - (ht.KC*(1+ht.KD*pt.Pch) + ht.KP*pt.Pch),
		Sublimation: pt.Dmdt*pt.Rp*physics.KgToG - v.Ap*(pt.Psub-pt.Pch),
		VialBottom: pt.Tbot - pt.Tsub - (m.Lpr0-pt.Lck)*(pt.Psub-pt.Pch)*physics.DeltaHsCal/
			pt.Rp/physics.HrToS/physics.KIce,
		EnergyBalance: physics.DeltaHsCal*(pt.Psub-pt.Pch)*v.Ap/pt.Rp/physics.HrToS -
			pt.Kv*v.Av*(pt.Tsh-pt.Tbot),
	}
}

// DLckDt is the right-hand side of the dried-cake growth ODE (INV3),
// evaluated in normalized time: dLck/dtau = Tf * DLckDt(pt).
func (m *Model) DLckDt(pt Point) float64 {
	return pt.Dmdt * m.CakeConv
}

// CriticalTempMargin is the INV8 inequality residual, kept nonnegative:
// Tsub - T_pr_crit >= 0.
func (m *Model) CriticalTempMargin(pt Point) float64 {
	return pt.Tsub - m.Inputs.Product.TPrCrit
}

// CapacityMargin is the INV9 inequality residual, kept nonnegative:
// mdot_max(Pch) - nVial*dmdt >= 0.
func (m *Model) CapacityMargin(pt Point) float64 {
	cap := m.Inputs.EqCap
	return (cap.A + cap.B*pt.Pch) - float64(m.Inputs.NVial)*pt.Dmdt
}

// FinalDrynessMargin is the INV10 terminal inequality residual, kept
// nonnegative: Lck(tau=1) - eta*Lpr0 >= 0.
func (m *Model) FinalDrynessMargin(lckFinal, eta float64) float64 {
	return lckFinal - eta*m.Lpr0
}
