// Package stages implements the four-phase F->T->C->O staged solver
// driver: each phase is one call into the slsqp NLP solver with a
// different set of variables fixed via bound collapse.
package stages

import (
	"github.com/lyoptim/primarydry/internal/dae"
	"github.com/lyoptim/primarydry/internal/discretize"
)

// Layout maps the dae.Point-per-mesh-point representation onto the flat
// NLP variable vector x = [Tf, point_0(10 fields), point_1(10 fields), ...].
type Layout struct {
	Mesh *discretize.Mesh
	N    int
}

// NewLayout derives a flat-vector layout for the given mesh.
func NewLayout(mesh *discretize.Mesh) *Layout {
	n := 1 + mesh.NPoints()*int(dae.NFields)
	return &Layout{Mesh: mesh, N: n}
}

// TfIndex is the flat index of the total-time decision variable.
func (l *Layout) TfIndex() int { return 0 }

// Index returns the flat index of field f at mesh point k.
func (l *Layout) Index(k int, f dae.Field) int {
	return 1 + k*int(dae.NFields) + int(f)
}

// Pack flattens a total time and a per-mesh-point slice of values into an
// NLP variable vector.
func (l *Layout) Pack(tf float64, points []dae.Point) []float64 {
	x := make([]float64, l.N)
	x[l.TfIndex()] = tf
	for k, pt := range points {
		for f := dae.Field(0); f < dae.NFields; f++ {
			x[l.Index(k, f)] = pt.Get(f)
		}
	}
	return x
}

// Unpack recovers the total time and per-mesh-point values from a flat
// NLP variable vector.
func (l *Layout) Unpack(x []float64) (float64, []dae.Point) {
	n := l.Mesh.NPoints()
	points := make([]dae.Point, n)
	for k := 0; k < n; k++ {
		var pt dae.Point
		for f := dae.Field(0); f < dae.NFields; f++ {
			pt = pt.Set(f, x[l.Index(k, f)])
		}
		points[k] = pt
	}
	return x[l.TfIndex()], points
}
