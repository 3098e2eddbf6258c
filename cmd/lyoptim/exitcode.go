package main

import (
	"errors"
	"fmt"

	"github.com/lyoptim/primarydry/internal/errs"
)

// exitCodeFor maps a returned error onto spec.md §6's exit code contract:
// 0 success, 2 user error (validation), 3 solver-unavailable, 4 I/O
// error. Everything else (solver-level failures the grid runner turns
// into a persisted, flagged record rather than a crash) is reported as a
// generic failure, code 1, since it only reaches here when something
// outside that persisted-record path went wrong.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var invalid *errs.InvalidScenarioErr
	if errors.As(err, &invalid) {
		return 2
	}
	var unavailable *errs.SolverUnavailableErr
	if errors.As(err, &unavailable) {
		return 3
	}
	if errors.Is(err, errIO) {
		return 4
	}
	return 1
}

// errIO wraps any error that originates from reading or writing a file
// the user named (scenario YAML, benchmark NDJSON log), so exitCodeFor
// can classify it as an I/O error independently of its concrete type.
var errIO = errors.New("lyoptim: I/O error")

// ioErrorf wraps err as an I/O error for exitCodeFor while keeping it
// inspectable with errors.As/Unwrap.
func ioErrorf(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, err, errIO)
}
