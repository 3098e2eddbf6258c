package stages

import (
	"time"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/errs"
	"github.com/lyoptim/primarydry/slsqp"
)

// StageRecord captures one stage's solver outcome for the diagnostics
// block: status, iterations, and the wall time spent inside Fit.
type StageRecord struct {
	Stage   errs.Stage
	OK      bool
	Status  string
	// TermCode is spec.md §4.7's small integer termination code: 0
	// optimal, 1 iteration/time limit, 2 infeasible, -1 other. SLSQP
	// (bounded QP subproblems throughout) has no literal "unbounded"
	// status, so code 3 is never produced here.
	TermCode int
	NumIter  int
	Elapsed  time.Duration
	Retried  bool
}

// Outcome is the result of a complete staged solve.
type Outcome struct {
	Tf     float64
	Points []dae.Point
	Stages []StageRecord
}

// Options configures the staged driver's solver tolerances and max
// iteration budgets, per spec.md §4.6.
type Options struct {
	MaxIterSingle int // max_iter for single-control modes
	MaxIterJoint  int // max_iter for joint mode (typically higher)
	Accuracy      float64
	Eta           float64 // completion target for the terminal inequality
}

// DefaultOptions returns the solver tolerances spec.md §4.6 names.
func DefaultOptions() Options {
	return Options{MaxIterSingle: 5000, MaxIterJoint: 8000, Accuracy: 1e-6, Eta: 0.99}
}

// Driver runs the four-phase F->T->C->O staged solve against a Builder's
// Problem, fixing and unfixing variables between stages by collapsing
// their bound box to a point. Each stage gets a fresh *slsqp.Optimizer
// and *slsqp.Workspace: cheap to allocate and free of any state carried
// over from a previous stage's line search or Hessian approximation.
type Driver struct {
	Builder *Builder
	Opts    Options
}

// NewDriver constructs a driver over the given builder.
func NewDriver(b *Builder, opts Options) *Driver {
	return &Driver{Builder: b, Opts: opts}
}

func (d *Driver) maxIter() int {
	if d.Builder.Model.ReleaseTsh && d.Builder.Model.ReleasePch {
		return d.Opts.MaxIterJoint
	}
	return d.Opts.MaxIterSingle
}

// fit builds a fresh Problem with the given bounds and runs one solve
// from x0, retrying once with relaxed tolerances on failure.
func (d *Driver) fit(stage errs.Stage, bounds []slsqp.Bound, x0 []float64) ([]float64, StageRecord, error) {
	problem := slsqp.Problem{
		N:       d.Builder.Layout.N,
		Object:  d.Builder.Objective(),
		EqCons:  d.Builder.EqualityConstraints(),
		NeqCons: d.Builder.InequalityConstraints(d.Opts.Eta),
		Bounds:  bounds,
		Stop: slsqp.Termination{
			Accuracy:      d.Opts.Accuracy,
			MaxIterations: d.maxIter(),
		},
	}

	x, rec, err := d.solveOnce(stage, &problem, x0, false)
	if err == nil {
		return x, rec, nil
	}

	relaxed := problem
	relaxed.Stop.Accuracy = d.Opts.Accuracy * 100
	x, rec2, err2 := d.solveOnce(stage, &relaxed, x0, true)
	if err2 == nil {
		return x, rec2, nil
	}
	return x0, rec2, &errs.StageFailureErr{Stage: stage, Status: rec2.Status}
}

func (d *Driver) solveOnce(stage errs.Stage, problem *slsqp.Problem, x0 []float64, retried bool) ([]float64, StageRecord, error) {
	start := time.Now()
	opt, err := problem.New()
	if err != nil {
		return nil, StageRecord{Stage: stage, Status: err.Error(), Retried: retried}, &errs.SolverUnavailableErr{Reason: err.Error()}
	}
	w := opt.Init()
	res := opt.Fit(x0, w)
	rec := StageRecord{
		Stage:    stage,
		OK:       res.OK,
		NumIter:  res.NumIter,
		Elapsed:  time.Since(start),
		Retried:  retried,
		TermCode: classifyStatus(res.Status),
	}
	if !res.OK {
		rec.Status = "non-optimal"
		return res.X, rec, &errs.StageFailureErr{Stage: stage, Status: rec.Status}
	}
	rec.Status = "optimal"
	return res.X, rec, nil
}

// classifyStatus maps a raw solver status onto spec.md §4.7's small
// integer termination code. slsqp's status type is unexported, so this
// accepts it through the empty interface and compares by value.
func classifyStatus(status any) int {
	switch status {
	case slsqp.OK:
		return 0
	case slsqp.SQPExceedMaxIter:
		return 1
	case slsqp.ConsIncompatible:
		return 2
	default:
		return -1
	}
}

// Run executes the four stages in order, starting from the warm-started
// (or cold) initial point x0.
func (d *Driver) Run(x0 []float64) (*Outcome, error) {
	released := d.Builder.Bounds()
	out := &Outcome{}

	fixedAll := fixControls(released, x0, true, true, d.Builder)
	fixedAll[d.Builder.Layout.TfIndex()] = collapse(x0[d.Builder.Layout.TfIndex()])

	x, rec, err := d.fit(errs.StageF, fixedAll, x0)
	out.Stages = append(out.Stages, rec)
	if err != nil {
		return finish(out, d.Builder, x), asStageFailure(err)
	}

	fixedControls := fixControls(released, x, true, true, d.Builder)
	x, rec, err = d.fit(errs.StageT, fixedControls, x)
	out.Stages = append(out.Stages, rec)
	if err != nil {
		return finish(out, d.Builder, x), asStageFailure(err)
	}

	if d.Builder.Model.ReleaseTsh && d.Builder.Model.ReleasePch {
		tshOnly := fixControls(released, x, false, true, d.Builder)
		x, rec, err = d.fit(errs.StageC, tshOnly, x)
		out.Stages = append(out.Stages, rec)
		if err != nil {
			return finish(out, d.Builder, x), asStageFailure(err)
		}
		x, rec, err = d.fit(errs.StageC, released, x)
		out.Stages = append(out.Stages, rec)
		if err != nil {
			return finish(out, d.Builder, x), asStageFailure(err)
		}
	} else {
		x, rec, err = d.fit(errs.StageC, released, x)
		out.Stages = append(out.Stages, rec)
		if err != nil {
			return finish(out, d.Builder, x), asStageFailure(err)
		}
	}

	x, rec, err = d.fit(errs.StageO, released, x)
	out.Stages = append(out.Stages, rec)
	if err != nil {
		return finish(out, d.Builder, x), asStageFailure(err)
	}

	return finish(out, d.Builder, x), nil
}

func finish(out *Outcome, b *Builder, x []float64) *Outcome {
	tf, points := b.Layout.Unpack(x)
	out.Tf, out.Points = tf, points
	return out
}

func asStageFailure(err error) error {
	if sf, ok := err.(*errs.StageFailureErr); ok {
		return sf
	}
	return err
}

func collapse(v float64) slsqp.Bound {
	return slsqp.Bound{Lower: v, Upper: v}
}

// fixControls returns a copy of released bounds with the released
// controls named by fixTsh/fixPch collapsed to their value in x. Used to
// fix degrees of freedom for stages F/T/C per spec.md §4.6; controls that
// were already unreleased in the scenario stay collapsed at their
// reference value regardless of fixTsh/fixPch.
func fixControls(released []slsqp.Bound, x []float64, fixTsh, fixPch bool, b *Builder) []slsqp.Bound {
	bounds := append([]slsqp.Bound(nil), released...)
	n := b.Layout.Mesh.NPoints()
	for k := 0; k < n; k++ {
		if fixTsh && b.Model.ReleaseTsh {
			idx := b.Layout.Index(k, dae.FTsh)
			bounds[idx] = collapse(x[idx])
		}
		if fixPch && b.Model.ReleasePch {
			idx := b.Layout.Index(k, dae.FPch)
			bounds[idx] = collapse(x[idx])
		}
	}
	return bounds
}
