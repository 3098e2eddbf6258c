package scenario

import (
	"fmt"

	"github.com/lyoptim/primarydry/internal/errs"
)

// Validate performs the eager, collective validation contract: every
// violated field is collected before any NLP variable is created, so a
// malformed bound never surfaces as pages of solver diagnostics far from
// the cause.
func Validate(inputs ScenarioInputs, mode ControlMode) error {
	var v []string

	if _, ok := ParseControlMode(mode.String()); !ok {
		v = append(v, fmt.Sprintf("control mode %q is not one of shelf_temp, chamber_pressure, both", mode))
	}

	releaseTsh := mode == ControlShelfTemp || mode == ControlBoth
	releasePch := mode == ControlChamberPressure || mode == ControlBoth

	if releaseTsh {
		b := inputs.Controls.TshBounds
		if b == nil {
			v = append(v, "Tsh is released but no tsh_bounds were provided")
		} else {
			if b.Min >= b.Max {
				v = append(v, fmt.Sprintf("tsh_bounds.min (%g) must be < tsh_bounds.max (%g)", b.Min, b.Max))
			}
			if b.Min < -50 || b.Max > 150 {
				v = append(v, fmt.Sprintf("tsh_bounds [%g, %g] must lie within [-50, 150]", b.Min, b.Max))
			}
		}
	} else if len(inputs.Controls.TshReference) == 0 {
		v = append(v, "Tsh is not released so a tsh_reference trajectory is required")
	}

	if releasePch {
		b := inputs.Controls.PchBounds
		if b == nil {
			v = append(v, "Pch is released but no pch_bounds were provided")
		} else {
			if b.Min >= b.Max {
				v = append(v, fmt.Sprintf("pch_bounds.min (%g) must be < pch_bounds.max (%g)", b.Min, b.Max))
			}
			if b.Min <= 0.01 || b.Max >= 1.0 {
				v = append(v, fmt.Sprintf("pch_bounds [%g, %g] must lie within (0.01, 1.0)", b.Min, b.Max))
			}
		}
	} else if len(inputs.Controls.PchReference) == 0 {
		v = append(v, "Pch is not released so a pch_reference trajectory is required")
	}

	if inputs.NVial < 1 {
		v = append(v, fmt.Sprintf("n_vial (%d) must be >= 1", inputs.NVial))
	}
	if inputs.Vial.Av <= 0 {
		v = append(v, fmt.Sprintf("vial.av (%g) must be > 0", inputs.Vial.Av))
	}
	if inputs.Vial.Ap <= 0 {
		v = append(v, fmt.Sprintf("vial.ap (%g) must be > 0", inputs.Vial.Ap))
	}
	if inputs.Vial.Vfill <= 0 {
		v = append(v, fmt.Sprintf("vial.vfill (%g) must be > 0", inputs.Vial.Vfill))
	}
	if inputs.Product.CSolid < 0 || inputs.Product.CSolid >= 1 {
		v = append(v, fmt.Sprintf("product.c_solid (%g) must lie within [0, 1)", inputs.Product.CSolid))
	}
	if inputs.Product.A2 < 0 {
		v = append(v, fmt.Sprintf("product.a2 (%g) must be >= 0 for Rp to be non-decreasing in Lck", inputs.Product.A2))
	}

	if len(v) > 0 {
		return &errs.InvalidScenarioErr{Violations: v}
	}
	return nil
}

// ValidateMesh checks the mesh specification independently of the
// scenario inputs, so a bad mesh is reported alongside any scenario
// violations rather than only after the scenario itself passes.
func ValidateMesh(mesh MeshSpec) error {
	var v []string
	if mesh.NElements < 1 {
		v = append(v, fmt.Sprintf("n_elements (%d) must be >= 1", mesh.NElements))
	}
	if mesh.Method == CollocationRadau {
		switch mesh.NCollocation {
		case 2, 3, 5:
		default:
			v = append(v, fmt.Sprintf("n_collocation (%d) must be one of 2, 3, 5", mesh.NCollocation))
		}
	}
	if len(v) > 0 {
		return &errs.InvalidScenarioErr{Violations: v}
	}
	return nil
}
