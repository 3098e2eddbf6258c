// Package registry loads named scenario records from YAML and applies
// grid-sweep overrides to them through a small, total function instead
// of opaque dotted-path mutation into an untyped dictionary.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lyoptim/primarydry/internal/scenario"
)

// ScenarioRecord is a pre-registered scenario: the physical inputs, the
// control mode it is meant to be solved under, the default mesh, and any
// ramp-rate limits, keyed by Name in the registry.
type ScenarioRecord struct {
	Name   string                   `yaml:"name"`
	Mode   string                   `yaml:"mode"` // "Tsh" | "Pch" | "both"
	Inputs scenario.ScenarioInputs  `yaml:"inputs"`
	Mesh   scenario.MeshSpec        `yaml:"mesh"`
	Ramp   scenario.RampRates       `yaml:"ramp"`
}

// ControlMode parses the record's Mode field into a scenario.ControlMode.
func (r *ScenarioRecord) ControlMode() (scenario.ControlMode, error) {
	switch r.Mode {
	case "Tsh":
		return scenario.ControlShelfTemp, nil
	case "Pch":
		return scenario.ControlChamberPressure, nil
	case "both":
		return scenario.ControlBoth, nil
	default:
		return 0, fmt.Errorf("registry: unknown control mode %q in scenario %q", r.Mode, r.Name)
	}
}

// Load reads a single scenario record from a YAML file.
func Load(path string) (*ScenarioRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", path, err)
	}
	var rec ScenarioRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", path, err)
	}
	if rec.Name == "" {
		rec.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &rec, nil
}

// Save writes rec to path as YAML, creating parent directories as needed.
func Save(path string, rec *ScenarioRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: marshal %s: %w", rec.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("registry: mkdir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("registry: write %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every *.yaml/*.yml file in dir into a registry keyed by
// scenario name.
func LoadDir(dir string) (map[string]*ScenarioRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("registry: read dir %s: %w", dir, err)
	}

	out := make(map[string]*ScenarioRecord)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		rec, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[rec.Name] = rec
	}
	return out, nil
}

// Clone returns a deep-enough copy of the record for ApplyOverrides to
// mutate without touching the registry's stored original.
func (r *ScenarioRecord) Clone() *ScenarioRecord {
	c := *r
	if r.Ramp.TshMax != nil {
		v := *r.Ramp.TshMax
		c.Ramp.TshMax = &v
	}
	if r.Ramp.PchMax != nil {
		v := *r.Ramp.PchMax
		c.Ramp.PchMax = &v
	}
	c.Inputs.Controls.TshReference = append([]scenario.ReferencePoint(nil), r.Inputs.Controls.TshReference...)
	c.Inputs.Controls.PchReference = append([]scenario.ReferencePoint(nil), r.Inputs.Controls.PchReference...)
	if r.Inputs.Controls.TshBounds != nil {
		b := *r.Inputs.Controls.TshBounds
		c.Inputs.Controls.TshBounds = &b
	}
	if r.Inputs.Controls.PchBounds != nil {
		b := *r.Inputs.Controls.PchBounds
		c.Inputs.Controls.PchBounds = &b
	}
	return &c
}
