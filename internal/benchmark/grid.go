package benchmark

import "github.com/lyoptim/primarydry/internal/registry"

// VaryDimension is one `--vary path=v1,v2,...` spec: a dotted scenario
// path and the values to sweep it across.
type VaryDimension struct {
	Path   string
	Values []float64
}

// Cell is one point in the Cartesian product of the grid's vary
// dimensions: the overrides that produce it and the grid block a
// resulting Record should carry.
type Cell struct {
	Overrides []registry.Override
	Grid      map[string]GridParam
}

// Expand computes the Cartesian product of dims, in the order given, so
// the first dimension varies slowest (outermost loop) — matching the
// conventional reading order of a `--vary a=...,b=...` flag list.
func Expand(dims []VaryDimension) []Cell {
	cells := []Cell{{Grid: map[string]GridParam{}}}
	for _, dim := range dims {
		var next []Cell
		for _, base := range cells {
			for _, v := range dim.Values {
				grid := make(map[string]GridParam, len(base.Grid)+1)
				for k, g := range base.Grid {
					grid[k] = g
				}
				grid[dim.Path] = GridParam{Path: dim.Path, Value: v}

				overrides := append(append([]registry.Override(nil), base.Overrides...),
					registry.Override{Path: dim.Path, Value: v})

				next = append(next, Cell{Overrides: overrides, Grid: grid})
			}
		}
		cells = next
	}
	return cells
}
