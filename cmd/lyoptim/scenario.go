package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lyoptim/primarydry/internal/registry"
	"github.com/lyoptim/primarydry/internal/scenario"
)

// resolveScenario loads a ScenarioRecord either directly from a YAML file
// (when ref names an existing file) or by name from dir's registry.
func resolveScenario(ref, dir string) (*registry.ScenarioRecord, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		rec, err := registry.Load(ref)
		if err != nil {
			return nil, ioErrorf("lyoptim: load scenario file", err)
		}
		return rec, nil
	}

	all, err := registry.LoadDir(dir)
	if err != nil {
		return nil, ioErrorf(fmt.Sprintf("lyoptim: load scenario registry %s", dir), err)
	}
	rec, ok := all[ref]
	if !ok {
		return nil, fmt.Errorf("lyoptim: no scenario named %q in %s", ref, dir)
	}
	return rec, nil
}

// taskToMode maps the CLI's "Tsh"|"Pch"|"both" task literal onto the
// internal ControlMode, the same literals a ScenarioRecord's own Mode
// field uses (scenario.ParseControlMode's "shelf_temp"|"chamber_pressure"
// |"both" literals are not accepted here).
func taskToMode(task string) (scenario.ControlMode, error) {
	switch task {
	case "Tsh":
		return scenario.ControlShelfTemp, nil
	case "Pch":
		return scenario.ControlChamberPressure, nil
	case "both":
		return scenario.ControlBoth, nil
	default:
		return 0, fmt.Errorf("lyoptim: --task %q must be one of Tsh, Pch, both", task)
	}
}

// splitMethods parses the repeatable, comma-joined --methods value into
// its set members, ignoring blanks from a trailing/leading comma.
func splitMethods(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, m := range strings.Split(raw, ",") {
		m = strings.TrimSpace(m)
		if m != "" {
			out[m] = true
		}
	}
	return out
}

// referencePoints returns explicit if non-empty, otherwise a single knot
// at the midpoint of bounds: the sequential baseline's recipe for a
// control that is released in this model's mode (and therefore has no
// fixed trajectory in the scenario record by construction) falls back to
// a flat schedule at the midpoint of its declared range.
func referencePoints(explicit []scenario.ReferencePoint, bounds *scenario.ControlBounds) []scenario.ReferencePoint {
	if len(explicit) > 0 {
		return explicit
	}
	if bounds != nil {
		return []scenario.ReferencePoint{{Tau: 0, Value: (bounds.Min + bounds.Max) / 2}}
	}
	return []scenario.ReferencePoint{{Tau: 0, Value: 0}}
}
