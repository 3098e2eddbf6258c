// Package benchmark implements the schema-v2 benchmark record contract of
// spec.md §6: a Go struct tree with json tags mirroring
// benchmarks/src/schema.py's base_record/hash_inputs/hash_record, NDJSON
// persistence, and the grid runner's reuse-skip-if-exists rule.
package benchmark

import (
	"time"

	"github.com/lyoptim/primarydry/internal/diagnostics"
)

// SchemaVersion is the fixed "version" field of every record this package
// writes; bumping it is a breaking wire change, not a code change.
const SchemaVersion = 2

// Hash carries the two fingerprints spec.md §6 requires on every record:
// a hash of the varied input parameters and a hash of the record body.
type Hash struct {
	Inputs string `json:"inputs"`
	Record string `json:"record"`
}

// Environment is the record-level environment block. It is a superset of
// diagnostics.Environment (host/timestamp added) because the benchmark
// contract names fields (python/pyomo/ipopt) this Go rewrite does not
// have — they are carried as empty strings so the NDJSON shape stays
// byte-stable for any downstream consumer expecting them.
type Environment struct {
	Python    string `json:"python"`
	Pyomo     string `json:"pyomo"`
	Ipopt     string `json:"ipopt"`
	OS        string `json:"os"`
	Host      string `json:"host"`
	Timestamp string `json:"timestamp"`
}

// GridParam is one varied dimension of a grid cell: the dotted scenario
// path that was overridden and the value this cell used.
type GridParam struct {
	Path  string  `json:"path"`
	Value float64 `json:"value"`
}

// SolverBlock is the small status summary every solver leg reports.
type SolverBlock struct {
	Status                string `json:"status"`
	TerminationCondition string `json:"termination_condition"`
}

// Discretization mirrors spec.md §6's discretization block exactly.
type Discretization struct {
	Method             string `json:"method"` // "fd" | "colloc"
	NElementsRequested int    `json:"n_elements_requested"`
	NElementsApplied   int    `json:"n_elements_applied"`
	NCollocation       int    `json:"n_collocation"`
	EffectiveNFE       bool   `json:"effective_nfe"`
	TotalMeshPoints    int    `json:"total_mesh_points"`
}

// TrajectoryRow is one row of the 7-column external trajectory contract:
// (t, Tsub, Tbot, Tsh, Pch_mTorr, flux, frac_dried).
type TrajectoryRow [7]float64

// RowsFromDiagnostics converts diagnostics.Row values (the in-repo
// representation) into the bare [7]float64 rows the wire format uses,
// reusing diagnostics.AsColumns for the column ordering itself so this
// package never has to restate spec.md §6's column contract.
func RowsFromDiagnostics(rows []diagnostics.Row) []TrajectoryRow {
	cols := diagnostics.AsColumns(rows)
	out := make([]TrajectoryRow, len(cols))
	for i, c := range cols {
		out[i] = TrajectoryRow{c[0], c[1], c[2], c[3], c[4], c[5], c[6]}
	}
	return out
}

// SequentialLeg is the "scipy" block: the sequential/shooting baseline's
// result for this cell.
type SequentialLeg struct {
	Success         bool            `json:"success"`
	WallTimeS       float64         `json:"wall_time_s"`
	ObjectiveTimeHr float64         `json:"objective_time_hr"`
	Solver          SolverBlock     `json:"solver"`
	Metrics         map[string]any  `json:"metrics,omitempty"`
	Trajectory      []TrajectoryRow `json:"trajectory"`
}

// SimultaneousLeg is the "pyomo" block: the staged collocation/backward-
// Euler solver's result for this cell.
type SimultaneousLeg struct {
	Success         bool                `json:"success"`
	WallTimeS       float64             `json:"wall_time_s"`
	ObjectiveTimeHr float64             `json:"objective_time_hr"`
	Solver          SolverBlock         `json:"solver"`
	Metrics         map[string]any      `json:"metrics,omitempty"`
	Discretization  Discretization      `json:"discretization"`
	WarmstartUsed   bool                `json:"warmstart_used"`
	Diagnostics     *diagnostics.Report `json:"diagnostics,omitempty"`
	Trajectory      []TrajectoryRow     `json:"trajectory"`
}

// Record is one line of the persisted NDJSON benchmark log.
type Record struct {
	Version     int                  `json:"version"`
	Hash        Hash                 `json:"hash"`
	Environment Environment          `json:"environment"`
	Task        string               `json:"task"` // "Tsh" | "Pch" | "both"
	Scenario    string               `json:"scenario"`
	Grid        map[string]GridParam `json:"grid,omitempty"`
	Scipy       *SequentialLeg       `json:"scipy,omitempty"`
	Pyomo       *SimultaneousLeg     `json:"pyomo,omitempty"`
	Failed      bool                 `json:"failed"`
	// RunID correlates every record a single grid invocation produced; it
	// is additive to the stable wire contract, not part of spec.md §6's
	// fixed schema.
	RunID string `json:"run_id,omitempty"`
}

// NewEnvironment fills the environment block's host/timestamp fields; the
// python/pyomo/ipopt fields are left empty since this implementation has
// no such runtimes to report.
func NewEnvironment(os, host string, now time.Time) Environment {
	return Environment{OS: os, Host: host, Timestamp: now.UTC().Format(time.RFC3339)}
}
