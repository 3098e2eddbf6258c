package sequential

import (
	"sort"

	"github.com/lyoptim/primarydry/internal/scenario"
)

// ConstantRecipe holds a control fixed at a single value for the whole run
// — the simplest recipe, useful for smoke-testing a scenario's physics
// before committing to a time-varying schedule.
func ConstantRecipe(tsh, pch float64) Recipe {
	return Recipe{
		Tsh: func(float64) float64 { return tsh },
		Pch: func(float64) float64 { return pch },
	}
}

// FromReferencePoints builds a Recipe by linearly interpolating two
// normalized-time (tau in [0,1]) reference trajectories against an assumed
// total duration horizonHours, clamping to the trajectory's endpoints
// outside [0, horizonHours]. This is how a recipe recovered from a prior
// run's reference trajectory (scenario.ControlConfig's TshReference/
// PchReference) is replayed by the sequential baseline.
func FromReferencePoints(tsh, pch []scenario.ReferencePoint, horizonHours float64) Recipe {
	return Recipe{
		Tsh: interpolant(tsh, horizonHours),
		Pch: interpolant(pch, horizonHours),
	}
}

func interpolant(points []scenario.ReferencePoint, horizonHours float64) func(float64) float64 {
	sorted := append([]scenario.ReferencePoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tau < sorted[j].Tau })

	return func(t float64) float64 {
		if len(sorted) == 0 {
			return 0
		}
		if horizonHours <= 0 {
			return sorted[0].Value
		}
		tau := t / horizonHours
		if tau <= sorted[0].Tau {
			return sorted[0].Value
		}
		last := len(sorted) - 1
		if tau >= sorted[last].Tau {
			return sorted[last].Value
		}
		idx := sort.Search(len(sorted), func(i int) bool { return sorted[i].Tau >= tau })
		lo, hi := sorted[idx-1], sorted[idx]
		if hi.Tau == lo.Tau {
			return lo.Value
		}
		frac := (tau - lo.Tau) / (hi.Tau - lo.Tau)
		return lo.Value + frac*(hi.Value-lo.Value)
	}
}
