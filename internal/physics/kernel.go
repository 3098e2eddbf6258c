package physics

import "math"

// LogPsubSat returns log(Psub_sat(Tsub)), the log-form Antoine relation
// used directly by the DAE builder's algebraic equality (INV1):
// log(Psub) = log(AntoineC1) - AntoineC2/(Tsub+KelvinOffset), Tsub in deg C.
func LogPsubSat(tsub float64) float64 {
	return math.Log(AntoineC1) - AntoineC2/(tsub+KelvinOffset)
}

// PsubSat returns the saturation vapor pressure of ice at Tsub [deg C], in
// the same pressure units AntoineC1 was fit in (Torr).
func PsubSat(tsub float64) float64 {
	return math.Exp(LogPsubSat(tsub))
}

// DLogPsubSat_DTsub is the analytic derivative of LogPsubSat with respect
// to Tsub, needed by the staged driver's gradient callbacks.
func DLogPsubSat_DTsub(tsub float64) float64 {
	d := tsub + KelvinOffset
	return AntoineC2 / (d * d)
}

// Rp returns the dried-cake mass-transfer resistance as a function of the
// instantaneous dried-cake thickness Lck, per the three-parameter form
// Rp = R0 + A1*Lck/(1+A2*Lck) used throughout optimizers.py's resistance
// rules. Rp is non-decreasing in Lck for A2 >= 0.
func Rp(lck, r0, a1, a2 float64) float64 {
	return r0 + a1*lck/(1+a2*lck)
}

// DRp_DLck is Rp's derivative with respect to Lck.
func DRp_DLck(lck, a1, a2 float64) float64 {
	denom := 1 + a2*lck
	return a1 / (denom * denom)
}

// Kv returns the vial heat-transfer coefficient as a function of chamber
// pressure Pch, per the rational form Kv = KC + KP*Pch/(1+KD*Pch) used in
// optimizers.py's vial_heat_transfer_rule.
func Kv(pch, kc, kp, kd float64) float64 {
	return kc + kp*pch/(1+kd*pch)
}

// DKv_DPch is Kv's derivative with respect to Pch.
func DKv_DPch(pch, kp, kd float64) float64 {
	denom := 1 + kd*pch
	return kp / (denom * denom)
}

// Lpr0 returns the initial frozen plug height: the fill volume divided by
// the cross-sectional area. cSolid is accepted to keep the signature the
// dried-cake growth conversion factor expects elsewhere, but the initial
// frozen height itself does not depend on solute content.
func Lpr0(vfill, ap, _ float64) float64 {
	return vfill / ap
}

// CakeGrowthFactor is the conversion factor relating the mass-sublimation
// rate to the rate of dried-cake-front advance (INV3), grounded on
// optimizers.py's cake_length_ode_rule conversion term:
// dLck/dt = conversion * dmdt, where
// conversion = KgToG / ((1 - cSolid*RhoSolution/RhoSolute) * Ap * RhoIce).
// The KgToG factor is folded in here since dmdt is expressed in kg/hr and
// Lck in cm; callers that want the bare per-gram factor should divide it
// back out.
func CakeGrowthFactor(ap, cSolid float64) float64 {
	return KgToG / ((1 - cSolid*RhoSolution/RhoSolute) * ap * RhoIce)
}
