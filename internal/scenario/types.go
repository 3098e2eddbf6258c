// Package scenario defines the immutable inputs consumed by the DAE
// builder: vial geometry, product resistance parameters, vial heat
// transfer, equipment sublimation capacity, the control mode, the mesh
// specification, and ramp-rate limits.
package scenario

// Vial holds the per-vial geometry.
type Vial struct {
	// Av is the vial cross-sectional area exposed to the shelf, cm^2.
	Av float64 `yaml:"av" json:"av"`
	// Ap is the product (dried-cake) cross-sectional area, cm^2.
	Ap float64 `yaml:"ap" json:"ap"`
	// Vfill is the fill volume, mL.
	Vfill float64 `yaml:"vfill" json:"vfill"`
}

// Product holds the dried-cake resistance parameters and the critical
// product temperature. Rp = R0 + A1*Lck/(1+A2*Lck).
type Product struct {
	R0        float64 `yaml:"r0" json:"r0"`
	A1        float64 `yaml:"a1" json:"a1"`
	A2        float64 `yaml:"a2" json:"a2"`
	TPrCrit   float64 `yaml:"t_pr_crit" json:"t_pr_crit"`
	CSolid    float64 `yaml:"c_solid" json:"c_solid"`
}

// HeatTransfer holds the vial heat-transfer coefficient parameters.
// Kv(Pch) = KC + KP*Pch/(1+KD*Pch).
type HeatTransfer struct {
	KC float64 `yaml:"kc" json:"kc"`
	KP float64 `yaml:"kp" json:"kp"`
	KD float64 `yaml:"kd" json:"kd"`
}

// EquipmentCapacity is the affine upper envelope on total sublimation
// mass flux: mdot_max(Pch) = A*Pch + B, kg/hr.
type EquipmentCapacity struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// ControlMode selects which controls are optimization degrees of freedom.
type ControlMode int

const (
	// ControlShelfTemp releases Tsh; Pch follows a fixed reference trajectory.
	ControlShelfTemp ControlMode = iota
	// ControlChamberPressure releases Pch; Tsh follows a fixed reference trajectory.
	ControlChamberPressure
	// ControlBoth releases both Tsh and Pch.
	ControlBoth
)

func (m ControlMode) String() string {
	switch m {
	case ControlShelfTemp:
		return "shelf_temp"
	case ControlChamberPressure:
		return "chamber_pressure"
	case ControlBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseControlMode parses the three accepted literals.
func ParseControlMode(s string) (ControlMode, bool) {
	switch s {
	case "shelf_temp":
		return ControlShelfTemp, true
	case "chamber_pressure":
		return ControlChamberPressure, true
	case "both":
		return ControlBoth, true
	default:
		return ControlMode(-1), false
	}
}

// ReferencePoint is one knot of a reference trajectory supplied for a
// control that is not released in the current mode. Consumers interpolate
// linearly in Tau between knots and hold the end values outside the first
// and last knot; the value is not held piecewise-constant between knots.
type ReferencePoint struct {
	Tau   float64 `yaml:"tau" json:"tau"`
	Value float64 `yaml:"value" json:"value"`
}

// ControlBounds is the box constraint for a released control.
type ControlBounds struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// ControlConfig carries, per control, either release bounds or a fixed
// reference trajectory — exactly one populated per control depending on
// the active ControlMode.
type ControlConfig struct {
	TshBounds    *ControlBounds    `yaml:"tsh_bounds,omitempty" json:"tsh_bounds,omitempty"`
	PchBounds    *ControlBounds    `yaml:"pch_bounds,omitempty" json:"pch_bounds,omitempty"`
	TshReference []ReferencePoint  `yaml:"tsh_reference,omitempty" json:"tsh_reference,omitempty"`
	PchReference []ReferencePoint  `yaml:"pch_reference,omitempty" json:"pch_reference,omitempty"`
}

// RampRates bounds the per-hour rate of change of released controls. A
// nil pointer for a given control means no ramp limit is enforced.
type RampRates struct {
	TshMax *float64 `yaml:"tsh_max,omitempty" json:"tsh_max,omitempty"`
	PchMax *float64 `yaml:"pch_max,omitempty" json:"pch_max,omitempty"`
}

// DiscretizationMethod selects the discretizer strategy.
type DiscretizationMethod int

const (
	BackwardEuler DiscretizationMethod = iota
	CollocationRadau
)

func (m DiscretizationMethod) String() string {
	if m == CollocationRadau {
		return "collocation_radau"
	}
	return "backward_euler"
}

// ParseDiscretizationMethod parses the two accepted literals.
func ParseDiscretizationMethod(s string) (DiscretizationMethod, bool) {
	switch s {
	case "backward_euler":
		return BackwardEuler, true
	case "collocation_radau":
		return CollocationRadau, true
	default:
		return DiscretizationMethod(-1), false
	}
}

// MeshSpec describes how the DAE is discretized over normalized time.
type MeshSpec struct {
	Method       DiscretizationMethod `yaml:"method" json:"method"`
	NElements    int                  `yaml:"n_elements" json:"n_elements"`
	NCollocation int                  `yaml:"n_collocation,omitempty" json:"n_collocation,omitempty"`
	EffectiveNFE bool                 `yaml:"effective_nfe,omitempty" json:"effective_nfe,omitempty"`
}

// ScenarioInputs is the complete, immutable input record consumed by the
// DAE builder.
type ScenarioInputs struct {
	Vial     Vial              `yaml:"vial" json:"vial"`
	Product  Product           `yaml:"product" json:"product"`
	HT       HeatTransfer      `yaml:"ht" json:"ht"`
	EqCap    EquipmentCapacity `yaml:"eq_cap" json:"eq_cap"`
	NVial    int               `yaml:"n_vial" json:"n_vial"`
	Controls ControlConfig     `yaml:"controls" json:"controls"`
}
