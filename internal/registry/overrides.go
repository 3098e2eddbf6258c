package registry

import (
	"fmt"

	"github.com/lyoptim/primarydry/internal/errs"
)

// Override sets a single known field of a ScenarioRecord to a new value.
// Path is one of a fixed, validated set of dotted field names; there is
// no reflection and no opaque map[string]any walk, so an unknown path is
// a parse-time error rather than a silent no-op.
type Override struct {
	Path  string
	Value float64
}

// ApplyOverrides returns a new ScenarioRecord with every override applied
// to a clone of r. r itself is never mutated. All overrides are validated
// before any is applied: either every path resolves and the full set
// takes effect, or none does.
func ApplyOverrides(r *ScenarioRecord, overrides []Override) (*ScenarioRecord, error) {
	var unknown []string
	for _, o := range overrides {
		if !knownPaths[o.Path] {
			unknown = append(unknown, o.Path)
		}
	}
	if len(unknown) > 0 {
		return nil, &errs.InvalidScenarioErr{Violations: unknownPathViolations(unknown)}
	}

	out := r.Clone()
	for _, o := range overrides {
		applyOne(out, o)
	}
	return out, nil
}

func unknownPathViolations(paths []string) []string {
	v := make([]string, len(paths))
	for i, p := range paths {
		v[i] = fmt.Sprintf("override path %q is not a known scenario field", p)
	}
	return v
}

var knownPaths = map[string]bool{
	"vial.av": true, "vial.ap": true, "vial.vfill": true,
	"product.r0": true, "product.a1": true, "product.a2": true,
	"product.t_pr_crit": true, "product.c_solid": true,
	"ht.kc": true, "ht.kp": true, "ht.kd": true,
	"eq_cap.a": true, "eq_cap.b": true,
	"n_vial": true,
	"mesh.n_elements": true, "mesh.n_collocation": true,
	"ramp.tsh_max": true, "ramp.pch_max": true,
}

// applyOne mutates rec in place; callers must have already validated
// o.Path against knownPaths.
func applyOne(rec *ScenarioRecord, o Override) {
	switch o.Path {
	case "vial.av":
		rec.Inputs.Vial.Av = o.Value
	case "vial.ap":
		rec.Inputs.Vial.Ap = o.Value
	case "vial.vfill":
		rec.Inputs.Vial.Vfill = o.Value
	case "product.r0":
		rec.Inputs.Product.R0 = o.Value
	case "product.a1":
		rec.Inputs.Product.A1 = o.Value
	case "product.a2":
		rec.Inputs.Product.A2 = o.Value
	case "product.t_pr_crit":
		rec.Inputs.Product.TPrCrit = o.Value
	case "product.c_solid":
		rec.Inputs.Product.CSolid = o.Value
	case "ht.kc":
		rec.Inputs.HT.KC = o.Value
	case "ht.kp":
		rec.Inputs.HT.KP = o.Value
	case "ht.kd":
		rec.Inputs.HT.KD = o.Value
	case "eq_cap.a":
		rec.Inputs.EqCap.A = o.Value
	case "eq_cap.b":
		rec.Inputs.EqCap.B = o.Value
	case "n_vial":
		rec.Inputs.NVial = int(o.Value)
	case "mesh.n_elements":
		rec.Mesh.NElements = int(o.Value)
	case "mesh.n_collocation":
		rec.Mesh.NCollocation = int(o.Value)
	case "ramp.tsh_max":
		v := o.Value
		rec.Ramp.TshMax = &v
	case "ramp.pch_max":
		v := o.Value
		rec.Ramp.PchMax = &v
	}
}
