package stages

import "github.com/lyoptim/primarydry/internal/dae"

// Objective returns the slsqp.Evaluation minimizing total drying time,
// plus an optional quadratic smoothness penalty on the step-to-step
// change of released controls when SmoothnessWeight is nonzero. The
// weight defaults to zero, matching spec.md §4.2's "default weight 0".
func (b *Builder) Objective() func(x []float64, g []float64) float64 {
	tfIdx := b.Layout.TfIndex()
	weight := b.SmoothnessWeight
	if weight == 0 {
		return func(x []float64, g []float64) float64 {
			if g != nil {
				b.zeroGrad(g)
				g[tfIdx] = 1
			}
			return x[tfIdx]
		}
	}

	n := b.Layout.Mesh.NPoints()
	var fields []dae.Field
	if b.Model.ReleaseTsh {
		fields = append(fields, dae.FTsh)
	}
	if b.Model.ReleasePch {
		fields = append(fields, dae.FPch)
	}

	return func(x []float64, g []float64) float64 {
		f := x[tfIdx]
		if g != nil {
			b.zeroGrad(g)
			g[tfIdx] = 1
		}
		for _, field := range fields {
			for k := 1; k < n; k++ {
				cur, prev := b.Layout.Index(k, field), b.Layout.Index(k-1, field)
				d := x[cur] - x[prev]
				f += weight * d * d
				if g != nil {
					g[cur] += 2 * weight * d
					g[prev] -= 2 * weight * d
				}
			}
		}
		return f
	}
}
