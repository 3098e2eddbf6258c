// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slsqp

import (
	"math"
)

func almostEqual[T float64 | []float64](a, b T, tol float64) bool {
	equalWithinAbs := func(a, b float64) bool {
		return a == b || math.Abs(a-b) <= tol
	}
	switch va := any(a).(type) {
	case float64:
		return equalWithinAbs(va, any(b).(float64))
	case []float64:
		vb := any(b).([]float64)
		if len(va) != len(vb) {
			return false
		}
		for i, x := range va {
			if !equalWithinAbs(x, vb[i]) {
				return false
			}
		}
		return true
	default:
		panic("unknown type")
	}
}

// evalPair holds separate value and derivative callbacks and adapts them
// to the combined Evaluation form, which fills g only when it is non-nil.
type evalPair struct {
	Function   func(x []float64) float64
	Derivative func(x []float64, d []float64)
}

func (e evalPair) eval() Evaluation {
	return func(x, g []float64) float64 {
		if g != nil {
			e.Derivative(x, g)
		}
		return e.Function(x)
	}
}

func evals(ps []evalPair) []Evaluation {
	out := make([]Evaluation, len(ps))
	for i, p := range ps {
		out[i] = p.eval()
	}
	return out
}
