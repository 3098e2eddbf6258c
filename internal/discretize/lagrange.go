package discretize

// DifferentiationMatrix returns the generic Lagrange differentiation
// matrix for an arbitrary set of distinct interpolation nodes: D[j][i] is
// the derivative, evaluated at nodes[j], of the Lagrange basis polynomial
// that is 1 at nodes[i] and 0 at every other node. For a polynomial p
// interpolating values y at nodes, p'(nodes[j]) = sum_i D[j][i]*y[i].
//
// Uses the barycentric-weight form (Trefethen, Spectral Methods in
// MATLAB §6) rather than hardcoding a matrix per collocation order, so
// adding a new Radau order only means adding its root table.
func DifferentiationMatrix(nodes []float64) [][]float64 {
	n := len(nodes)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 1.0
		for k := 0; k < n; k++ {
			if k != i {
				w[i] /= nodes[i] - nodes[k]
			}
		}
	}

	d := make([][]float64, n)
	for j := 0; j < n; j++ {
		d[j] = make([]float64, n)
		var diag float64
		for i := 0; i < n; i++ {
			if i == j {
				continue
			}
			d[j][i] = (w[i] / w[j]) / (nodes[j] - nodes[i])
			diag -= d[j][i]
		}
		d[j][j] = diag
	}
	return d
}
