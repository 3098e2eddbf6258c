package diagnostics

import (
	"runtime"
	"time"

	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/discretize"
	"github.com/lyoptim/primarydry/internal/scenario"
	"github.com/lyoptim/primarydry/internal/stages"
)

// Environment records the runtime identity fields spec.md §4.7 asks for.
// There is no external AML/solver binary to introspect here, unlike the
// system this was distilled from: modeling_lib_version/solver_version
// report this module's own dependency versions instead.
type Environment struct {
	LanguageVersion string `json:"language_version"`
	ModelingLibVer  string `json:"modeling_lib_version"`
	SolverVersion   string `json:"solver_version"`
	OS              string `json:"os"`
	Arch            string `json:"arch"`
}

// CurrentEnvironment captures the running Go toolchain's identity.
func CurrentEnvironment(modelingLibVer, solverVersion string) Environment {
	return Environment{
		LanguageVersion: runtime.Version(),
		ModelingLibVer:  modelingLibVer,
		SolverVersion:   solverVersion,
		OS:              runtime.GOOS,
		Arch:            runtime.GOARCH,
	}
}

// WarmStart records whether warm-starting was used, the reference
// trajectory's fingerprint, and the fraction of variables it covered.
type WarmStart struct {
	Enabled            bool    `json:"enabled"`
	SourceHash         string  `json:"source_hash"`
	VariableMatchRatio float64 `json:"variable_match_ratio"`
}

// Report is the full §4.7 diagnostics block for one solved (or
// partially solved) case.
type Report struct {
	Trajectory   []Row         `json:"trajectory"`
	ModelSize    ModelSize     `json:"model_size"`
	Termination  int           `json:"termination"`
	FailureStage string        `json:"failure_stage,omitempty"`
	OptionFP     string        `json:"option_fingerprint"`
	Environment  Environment   `json:"environment"`
	WarmStart    WarmStart     `json:"warmstart"`
	WallTime     time.Duration `json:"wall_time_ns"`
	PostCheck    PostCheck     `json:"post_check"`
}

// BuildReport assembles the full diagnostics block from a staged-solve
// outcome. The failure stage is taken from the last stage record that did
// not succeed, and is empty on a clean run.
func BuildReport(
	model *dae.Model,
	mesh *discretize.Mesh,
	outcome *stages.Outcome,
	warmStart WarmStart,
	eta float64,
	rampRates scenario.RampRates,
	wallTime time.Duration,
	optionFP string,
	modelingLibVer, solverVersion string,
) Report {
	rows := ExtractTrajectory(model, mesh.Taus, outcome.Tf, outcome.Points)

	term := -1
	var failureStage string
	if len(outcome.Stages) > 0 {
		last := outcome.Stages[len(outcome.Stages)-1]
		term = last.TermCode
		if !last.OK {
			failureStage = string(last.Stage)
		}
	}

	var post PostCheck
	if len(rows) > 0 {
		post.DrynessShortfall = CheckDryness(rows[len(rows)-1].FracDried, eta)
	}
	if model.ReleaseTsh && rampRates.TshMax != nil {
		tsh := fieldSeries(outcome.Points, dae.FTsh)
		post.RampChecks = append(post.RampChecks, CheckRamp("Tsh", mesh.Taus, tsh, *rampRates.TshMax, outcome.Tf))
	}
	if model.ReleasePch && rampRates.PchMax != nil {
		pch := fieldSeries(outcome.Points, dae.FPch)
		post.RampChecks = append(post.RampChecks, CheckRamp("Pch", mesh.Taus, pch, *rampRates.PchMax, outcome.Tf))
	}

	return Report{
		Trajectory: rows,
		ModelSize: ModelSize{
			NVariables:   1 + mesh.NPoints()*int(dae.NFields),
			NConstraints: nConstraints(model, mesh),
			NObjectives:  1,
		},
		Termination:  term,
		FailureStage: failureStage,
		OptionFP:     optionFP,
		Environment:  CurrentEnvironment(modelingLibVer, solverVersion),
		WarmStart:    warmStart,
		WallTime:     wallTime,
		PostCheck:    post,
	}
}

func fieldSeries(points []dae.Point, f dae.Field) []float64 {
	out := make([]float64, len(points))
	for i, pt := range points {
		out[i] = pt.Get(f)
	}
	return out
}

// nConstraints mirrors the equality/inequality counts a stages.Builder
// would produce for this model+mesh, without constructing the builder's
// slsqp.Evaluation closures (the diagnostics block needs only a count).
func nConstraints(model *dae.Model, mesh *discretize.Mesh) int {
	n := mesh.NPoints()
	eq := 7*n + 1 // seven algebraic relations per point, plus Lck(0)=0
	if mesh.Method == scenario.BackwardEuler {
		eq += n - 1
	} else {
		eq += mesh.NElementsApplied * mesh.NCollocation
	}

	neq := 2 * n // critical-temp and capacity margins per point
	neq++        // final dryness margin
	if model.ReleaseTsh && model.Ramp.TshMax != nil {
		neq += 2 * (n - 1)
	}
	if model.ReleasePch && model.Ramp.PchMax != nil {
		neq += 2 * (n - 1)
	}
	return eq + neq
}
