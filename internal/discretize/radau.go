// Package discretize turns the continuous-time IR produced by
// internal/dae into a finite-dimensional mesh of points in normalized
// time, plus the differentiation structure (Backward Euler or orthogonal
// collocation on Radau roots) linking the differential state's values
// across that mesh.
package discretize

// RadauRoots holds the fixed interior collocation points for a given
// collocation order, normalized to the unit element [0,1]. These are the
// roots of the Radau IIA family used throughout Pyomo's dae.collocation
// transformation; because they are right-endpoint inclusive (the last
// root is exactly 1.0) element continuity falls out of the node layout
// itself, with no separate continuity constraint needed.
var RadauRoots = map[int][]float64{
	2: {0.3333333333333333, 1.0},
	3: {0.1550510257216822, 0.6449489742783178, 1.0},
	5: {
		0.0571041961145177,
		0.2768430136381238,
		0.5835904323689168,
		0.8602401356562195,
		1.0,
	},
}

// EffectiveElements applies the parity rule of spec.md §4.3: when
// effective is true, n_elements is reinterpreted as a target total
// interior-point count and the number of finite elements actually used
// is ceil(n_elements/ncp), so mesh density stays comparable to backward
// Euler at the same n_elements. When effective is false, n_elements is
// used directly as the element count.
func EffectiveElements(nElements, ncp int, effective bool) int {
	if !effective {
		return nElements
	}
	if ncp < 1 {
		ncp = 1
	}
	return (nElements + ncp - 1) / ncp
}
