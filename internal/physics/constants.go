// Package physics holds the closed-form algebraic relations of the
// primary-drying sublimation front: saturation vapor pressure, product
// resistance, vial heat-transfer coefficient, and the initial frozen
// height. Every function here is pure, defined on the variable bounds the
// DAE builder uses, and has an analytic derivative — no numerical
// differentiation is needed on the hot path.
package physics

// Antoine log-form coefficients for the saturation vapor pressure of ice,
// resolved from original_source/lyopronto/pyomo_models/optimizers.py
// (vapor_pressure_log_rule): log(Psub) = log(C1) - C2/(Tsub+KelvinOffset).
const (
	AntoineC1    = 2.698e10
	AntoineC2    = 6144.96
	KelvinOffset = 273.15
)

// Thermophysical constants, resolved from the same module's
// cake_length_ode_rule / vial_bottom_temp_rule / energy_balance_rule.
const (
	// DeltaHsCal is the enthalpy of sublimation of ice [cal/g].
	DeltaHsCal = 678.0
	// KIce is the thermal conductivity of ice [cal/s/cm/K].
	KIce = 0.0059
	// RhoIce is the density of ice [g/cm^3].
	RhoIce = 0.917
	// RhoSolution is the density of the liquid formulation before freezing [g/cm^3].
	RhoSolution = 1.0
	// RhoSolute is the density of the dry solute [g/cm^3].
	RhoSolute = 1.13
	// HrToS converts hours to seconds.
	HrToS = 3600.0
	// KgToG converts kilograms to grams.
	KgToG = 1000.0
)

// DefaultCompletion is the dryness target eta of INV10.
const DefaultCompletion = 0.99
