package dae

import (
	"github.com/lyoptim/primarydry/internal/physics"
	"github.com/lyoptim/primarydry/internal/scenario"
)

// Model is the immutable continuous-time IR produced by Build. It holds
// everything the discretizer needs to instantiate a finite-dimensional
// NLP: the scenario, the derived physical constants (Lpr0, the cake
// growth conversion factor), and which controls are released.
type Model struct {
	Inputs scenario.ScenarioInputs
	Mode   scenario.ControlMode
	Ramp   scenario.RampRates

	Lpr0     float64
	CakeConv float64

	ReleaseTsh bool
	ReleasePch bool
}

// Build performs the eager, collective InvalidScenario validation and
// then constructs the continuous-time IR. It creates no NLP variables;
// that is the discretizer's job.
func Build(inputs scenario.ScenarioInputs, mode scenario.ControlMode, mesh scenario.MeshSpec, ramp scenario.RampRates) (*Model, error) {
	if err := scenario.Validate(inputs, mode); err != nil {
		return nil, err
	}
	if err := scenario.ValidateMesh(mesh); err != nil {
		return nil, err
	}

	lpr0 := physics.Lpr0(inputs.Vial.Vfill, inputs.Vial.Ap, inputs.Product.CSolid)
	conv := physics.CakeGrowthFactor(inputs.Vial.Ap, inputs.Product.CSolid)

	return &Model{
		Inputs:     inputs,
		Mode:       mode,
		Ramp:       ramp,
		Lpr0:       lpr0,
		CakeConv:   conv,
		ReleaseTsh: mode == scenario.ControlShelfTemp || mode == scenario.ControlBoth,
		ReleasePch: mode == scenario.ControlChamberPressure || mode == scenario.ControlBoth,
	}, nil
}

// FieldBound returns the box bound the NLP variable for the given field
// should carry, per INV12. Bounds on Tsh/Pch reflect the released control
// range when the control is a decision variable; unreleased controls are
// unbounded here because the driver fixes them pointwise to the
// reference trajectory instead.
func (m *Model) FieldBound(f Field) Bound {
	const inf = 1e19
	switch f {
	case FLck:
		return Bound{0, 1.1 * m.Lpr0}
	case FTsub, FTbot:
		return Bound{-100, 50}
	case FPsub:
		return Bound{1e-4, 10.0}
	case FLogPsub:
		return Bound{-inf, inf}
	case FDmdt:
		return Bound{0, 10}
	case FKv:
		return Bound{1e-5, 1e-2}
	case FRp:
		return Bound{0.1, 1000}
	case FTsh:
		if m.ReleaseTsh {
			b := m.Inputs.Controls.TshBounds
			return Bound{b.Min, b.Max}
		}
		return Bound{-inf, inf}
	case FPch:
		if m.ReleasePch {
			b := m.Inputs.Controls.PchBounds
			return Bound{b.Min, b.Max}
		}
		return Bound{-inf, inf}
	default:
		return Bound{-inf, inf}
	}
}
