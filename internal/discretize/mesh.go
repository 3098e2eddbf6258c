package discretize

import (
	"fmt"

	"github.com/lyoptim/primarydry/internal/scenario"
)

// Mesh is the finite set of normalized-time points a built model is
// evaluated at, plus enough structure (collocation order, element
// boundaries) to build the differential-state linking residuals.
type Mesh struct {
	Method             scenario.DiscretizationMethod
	Taus               []float64
	NCollocation       int
	NElementsApplied   int
	NElementsRequested int

	diffMatrix [][]float64 // collocation only; (ncp+1) x (ncp+1)
}

// BuildMesh lays out mesh points in normalized time for the requested
// method. ValidateMesh is assumed to have already rejected malformed mesh
// specs; BuildMesh does not re-validate.
func BuildMesh(mesh scenario.MeshSpec) (*Mesh, error) {
	switch mesh.Method {
	case scenario.BackwardEuler:
		return buildBackwardEuler(mesh), nil
	case scenario.CollocationRadau:
		return buildCollocation(mesh)
	default:
		return nil, fmt.Errorf("discretize: unknown method %v", mesh.Method)
	}
}

func buildBackwardEuler(mesh scenario.MeshSpec) *Mesh {
	n := mesh.NElements
	taus := make([]float64, n+1)
	for k := 0; k <= n; k++ {
		taus[k] = float64(k) / float64(n)
	}
	return &Mesh{
		Method:             scenario.BackwardEuler,
		Taus:               taus,
		NElementsApplied:   n,
		NElementsRequested: n,
	}
}

func buildCollocation(mesh scenario.MeshSpec) (*Mesh, error) {
	ncp := mesh.NCollocation
	roots, ok := RadauRoots[ncp]
	if !ok {
		return nil, fmt.Errorf("discretize: unsupported n_collocation=%d", ncp)
	}

	nfe := EffectiveElements(mesh.NElements, ncp, mesh.EffectiveNFE)
	if nfe < 1 {
		nfe = 1
	}

	taus := make([]float64, 0, nfe*ncp+1)
	taus = append(taus, 0)
	h := 1.0 / float64(nfe)
	for e := 0; e < nfe; e++ {
		start := float64(e) * h
		for _, c := range roots {
			taus = append(taus, start+h*c)
		}
	}

	nodes := append([]float64{0}, roots...)
	return &Mesh{
		Method:             scenario.CollocationRadau,
		Taus:               taus,
		NCollocation:       ncp,
		NElementsApplied:   nfe,
		NElementsRequested: mesh.NElements,
		diffMatrix:         DifferentiationMatrix(nodes),
	}, nil
}

// NPoints returns the total number of mesh points, including tau=0.
func (m *Mesh) NPoints() int {
	return len(m.Taus)
}

// DiffMatrixRow returns row j of the element-local differentiation
// matrix (collocation only), for callers that need to assemble their own
// gradient of the continuity residual rather than just its value.
func (m *Mesh) DiffMatrixRow(j int) []float64 {
	return m.diffMatrix[j]
}

// DiffResidual computes the M residuals linking the differential state
// Lck across the mesh, where M = NPoints()-1. lck and rhs are parallel
// slices of length NPoints(): lck[k] is the Lck value at mesh point k;
// rhs[k] is dLck/dtau (Tf-free) evaluated at the state of mesh point k.
// Each residual should be zero at a dynamically consistent trajectory.
func (m *Mesh) DiffResidual(lck, rhs []float64, tf float64) []float64 {
	if m.Method == scenario.BackwardEuler {
		return m.diffResidualBE(lck, rhs, tf)
	}
	return m.diffResidualCollocation(lck, rhs, tf)
}

func (m *Mesh) diffResidualBE(lck, rhs []float64, tf float64) []float64 {
	n := len(m.Taus) - 1
	res := make([]float64, n)
	for k := 1; k <= n; k++ {
		h := m.Taus[k] - m.Taus[k-1]
		res[k-1] = lck[k] - lck[k-1] - h*tf*rhs[k]
	}
	return res
}

func (m *Mesh) diffResidualCollocation(lck, rhs []float64, tf float64) []float64 {
	ncp := m.NCollocation
	res := make([]float64, m.NElementsApplied*ncp)
	for e := 0; e < m.NElementsApplied; e++ {
		base := e * ncp
		h := m.Taus[base+ncp] - m.Taus[base]
		for j := 1; j <= ncp; j++ {
			var deriv float64
			for i := 0; i <= ncp; i++ {
				deriv += m.diffMatrix[j][i] * lck[base+i]
			}
			res[base+j-1] = deriv/h - tf*rhs[base+j]
		}
	}
	return res
}
