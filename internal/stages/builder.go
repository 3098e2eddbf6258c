package stages

import (
	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/discretize"
	"github.com/lyoptim/primarydry/internal/scenario"
	"github.com/lyoptim/primarydry/slsqp"
)

// Builder assembles an slsqp.Problem from a continuous-time model and a
// concrete mesh. It holds no mutable state once constructed; every stage
// of the driver builds a fresh slsqp.Problem and Optimizer from the same
// Builder and only varies the Bounds slice (fix/unfix via bound collapse).
type Builder struct {
	Model  *dae.Model
	Layout *Layout

	// SmoothnessWeight scales an optional quadratic penalty on the
	// step-to-step change of released controls. Zero (the default)
	// disables it.
	SmoothnessWeight float64

	// ReferenceTsh/ReferencePch supply the reference trajectory for
	// whichever control is not released in Model.Mode, one value per mesh
	// point; callers fill them by linear interpolation between the
	// reference knots, not by holding each knot's value constant.
	ReferenceTsh []float64
	ReferencePch []float64
}

// NewBuilder constructs a Builder for the given model and mesh spec.
func NewBuilder(model *dae.Model, mesh scenario.MeshSpec) (*Builder, error) {
	m, err := discretize.BuildMesh(mesh)
	if err != nil {
		return nil, err
	}
	return &Builder{Model: model, Layout: NewLayout(m)}, nil
}

func (b *Builder) zeroGrad(g []float64) {
	for i := range g {
		g[i] = 0
	}
}

// Bounds returns the box bounds for every flat variable, per INV12. Tf is
// bounded to a generous positive range; released controls get the
// scenario's bound box; unreleased controls are collapsed to a point at
// their reference value, which is how the driver "fixes" them without a
// separate equality constraint.
func (b *Builder) Bounds() []slsqp.Bound {
	n := b.Layout.N
	bounds := make([]slsqp.Bound, n)
	bounds[b.Layout.TfIndex()] = slsqp.Bound{Lower: 1e-3, Upper: 1e4}

	for k := 0; k < b.Layout.Mesh.NPoints(); k++ {
		for f := dae.Field(0); f < dae.NFields; f++ {
			idx := b.Layout.Index(k, f)
			switch f {
			case dae.FTsh:
				if b.Model.ReleaseTsh {
					fb := b.Model.FieldBound(f)
					bounds[idx] = slsqp.Bound{Lower: fb.Lower, Upper: fb.Upper}
				} else {
					v := b.ReferenceTsh[k]
					bounds[idx] = slsqp.Bound{Lower: v, Upper: v}
				}
			case dae.FPch:
				if b.Model.ReleasePch {
					fb := b.Model.FieldBound(f)
					bounds[idx] = slsqp.Bound{Lower: fb.Lower, Upper: fb.Upper}
				} else {
					v := b.ReferencePch[k]
					bounds[idx] = slsqp.Bound{Lower: v, Upper: v}
				}
			default:
				fb := b.Model.FieldBound(f)
				bounds[idx] = slsqp.Bound{Lower: fb.Lower, Upper: fb.Upper}
			}
		}
	}
	return bounds
}

// rampMargins returns the INV11 inequality evaluations for the released
// controls that have a configured ramp rate.
func (b *Builder) rampMargins() []slsqp.Evaluation {
	var out []slsqp.Evaluation
	taus := b.Layout.Mesh.Taus
	n := len(taus) - 1

	addField := func(f dae.Field, uMax float64) {
		for k := 0; k < n; k++ {
			k := k
			dt := taus[k+1] - taus[k]
			uIdx, u2Idx := b.Layout.Index(k, f), b.Layout.Index(k+1, f)
			tfIdx := b.Layout.TfIndex()

			out = append(out, func(x []float64, g []float64) float64 {
				tf := x[tfIdx]
				delta := x[u2Idx] - x[uIdx]
				limit := uMax * dt * tf
				up := limit - delta
				if g != nil {
					b.zeroGrad(g)
					g[tfIdx] = uMax * dt
					g[uIdx] = 1
					g[u2Idx] = -1
				}
				return up
			})
			out = append(out, func(x []float64, g []float64) float64 {
				tf := x[tfIdx]
				delta := x[u2Idx] - x[uIdx]
				limit := uMax * dt * tf
				down := limit + delta
				if g != nil {
					b.zeroGrad(g)
					g[tfIdx] = uMax * dt
					g[uIdx] = -1
					g[u2Idx] = 1
				}
				return down
			})
		}
	}

	if b.Model.ReleaseTsh && b.Model.Ramp.TshMax != nil {
		addField(dae.FTsh, *b.Model.Ramp.TshMax)
	}
	if b.Model.ReleasePch && b.Model.Ramp.PchMax != nil {
		addField(dae.FPch, *b.Model.Ramp.PchMax)
	}
	return out
}
