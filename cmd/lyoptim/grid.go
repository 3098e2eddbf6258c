package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lyoptim/primarydry/internal/benchmark"
)

var (
	gridScenarioRef string
	gridScenarioDir string
	gridTask        string
	gridMethods     string
	gridOutput      string
	gridForce       bool
	gridVary        []string
	gridCellTimeout time.Duration
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Expand --vary dimensions into a Cartesian product and solve each cell in its own process",
	RunE:  runGrid,
}

func init() {
	f := gridCmd.Flags()
	f.StringVar(&gridScenarioRef, "scenario", "", "scenario name or YAML file path (required)")
	f.StringVar(&gridScenarioDir, "scenario-dir", "scenarios", "directory of registered scenario YAML files")
	f.StringVar(&gridTask, "task", "", "Tsh | Pch | both (required)")
	f.StringVar(&gridMethods, "methods", "finite_differences", "comma-separated subset of sequential_baseline,finite_differences,collocation")
	f.StringVar(&gridOutput, "output", "benchmark_results.ndjson", "benchmark NDJSON log path")
	f.BoolVar(&gridForce, "force", false, "overwrite existing matching records")
	f.StringArrayVar(&gridVary, "vary", nil, "path=v1,v2,... repeatable, one dimension per flag")
	f.DurationVar(&gridCellTimeout, "cell-timeout", 10*time.Minute, "wall-clock budget per grid cell before it is killed")
	_ = gridCmd.MarkFlagRequired("scenario")
	_ = gridCmd.MarkFlagRequired("task")
}

func runGrid(cmd *cobra.Command, args []string) error {
	dims, err := parseVaryFlags(gridVary)
	if err != nil {
		return err
	}
	cells := benchmark.Expand(dims)
	runID := uuid.NewString()

	self, err := os.Executable()
	if err != nil {
		return ioErrorf("lyoptim: resolve own executable path", err)
	}

	logger.Info("grid expanded", zapInt("cells", len(cells)))

	var failures int
	for i, cell := range cells {
		if err := runCell(cmd.Context(), self, cell, runID); err != nil {
			failures++
			logger.Error("grid cell failed", zapInt("cell", i), zapErr(err))
		}
	}
	if failures > 0 {
		return fmt.Errorf("lyoptim: %d/%d grid cells failed", failures, len(cells))
	}
	return nil
}

// runCell spawns one `lyoptim run` subprocess per spec.md §5's
// process-isolation mandate (the slsqp Optimizer/Workspace pair is not
// safe to share across goroutines), enforcing a wall-clock budget with
// context.WithTimeout + cmd.Process.Kill.
func runCell(ctx context.Context, self string, cell benchmark.Cell, runID string) error {
	cellCtx, cancel := context.WithTimeout(ctx, gridCellTimeout)
	defer cancel()

	args := []string{
		"run",
		"--scenario", gridScenarioRef,
		"--scenario-dir", gridScenarioDir,
		"--task", gridTask,
		"--methods", gridMethods,
		"--output", gridOutput,
		"--run-id", runID,
	}
	if gridForce {
		args = append(args, "--force")
	}
	for _, o := range cell.Overrides {
		args = append(args, "--override", fmt.Sprintf("%s=%s", o.Path, strconv.FormatFloat(o.Value, 'g', -1, 64)))
	}

	c := exec.CommandContext(cellCtx, self, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Start(); err != nil {
		return fmt.Errorf("lyoptim: start cell subprocess: %w", err)
	}
	err := c.Wait()
	if cellCtx.Err() == context.DeadlineExceeded {
		_ = c.Process.Kill()
		return fmt.Errorf("lyoptim: cell exceeded %s timeout", gridCellTimeout)
	}
	return err
}

func parseVaryFlags(raw []string) ([]benchmark.VaryDimension, error) {
	dims := make([]benchmark.VaryDimension, 0, len(raw))
	for _, spec := range raw {
		path, valuesRaw, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("lyoptim: --vary %q must be of the form path=v1,v2,...", spec)
		}
		var values []float64
		for _, s := range strings.Split(valuesRaw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("lyoptim: --vary %q: %w", spec, err)
			}
			values = append(values, v)
		}
		dims = append(dims, benchmark.VaryDimension{Path: path, Values: values})
	}
	return dims, nil
}
