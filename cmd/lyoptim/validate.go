package main

import (
	"github.com/spf13/cobra"

	"github.com/lyoptim/primarydry/internal/scenario"
)

var (
	validateScenarioRef string
	validateScenarioDir string
	validateTask        string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run only the InvalidScenario checks against a scenario, exit 2 on violation",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := resolveScenario(validateScenarioRef, validateScenarioDir)
		if err != nil {
			return err
		}
		mode, err := taskToMode(validateTask)
		if err != nil {
			return err
		}
		if err := scenario.Validate(rec.Inputs, mode); err != nil {
			return err
		}
		if err := scenario.ValidateMesh(rec.Mesh); err != nil {
			return err
		}
		logger.Info("scenario is valid")
		return nil
	},
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateScenarioRef, "scenario", "", "scenario name or YAML file path (required)")
	f.StringVar(&validateScenarioDir, "scenario-dir", "scenarios", "directory of registered scenario YAML files")
	f.StringVar(&validateTask, "task", "", "Tsh | Pch | both (required)")
	_ = validateCmd.MarkFlagRequired("scenario")
	_ = validateCmd.MarkFlagRequired("task")
}
