// Package dae builds the continuous-time intermediate representation of
// the primary-drying model: the algebraic and differential relations of
// spec INV1-INV10, defined once per scenario and independent of how the
// discretizer later turns them into a finite-dimensional NLP.
package dae

// Field names one of the ten per-mesh-point quantities.
type Field int

const (
	FLck Field = iota
	FTsub
	FTbot
	FPsub
	FLogPsub
	FDmdt
	FKv
	FRp
	FTsh
	FPch
	NFields
)

func (f Field) String() string {
	switch f {
	case FLck:
		return "Lck"
	case FTsub:
		return "Tsub"
	case FTbot:
		return "Tbot"
	case FPsub:
		return "Psub"
	case FLogPsub:
		return "log_Psub"
	case FDmdt:
		return "dmdt"
	case FKv:
		return "Kv"
	case FRp:
		return "Rp"
	case FTsh:
		return "Tsh"
	case FPch:
		return "Pch"
	default:
		return "unknown"
	}
}

// Point is the value of every field at a single mesh point. It is the
// unit the algebraic residual functions and the diagnostics extractor
// operate on; the discretizer is responsible for mapping it to and from
// the flat NLP variable vector.
type Point struct {
	Lck, Tsub, Tbot, Psub, LogPsub, Dmdt, Kv, Rp, Tsh, Pch float64
}

// Get returns the value of the named field.
func (p Point) Get(f Field) float64 {
	switch f {
	case FLck:
		return p.Lck
	case FTsub:
		return p.Tsub
	case FTbot:
		return p.Tbot
	case FPsub:
		return p.Psub
	case FLogPsub:
		return p.LogPsub
	case FDmdt:
		return p.Dmdt
	case FKv:
		return p.Kv
	case FRp:
		return p.Rp
	case FTsh:
		return p.Tsh
	case FPch:
		return p.Pch
	default:
		return 0
	}
}

// Set writes the named field, returning the updated point.
func (p Point) Set(f Field, v float64) Point {
	switch f {
	case FLck:
		p.Lck = v
	case FTsub:
		p.Tsub = v
	case FTbot:
		p.Tbot = v
	case FPsub:
		p.Psub = v
	case FLogPsub:
		p.LogPsub = v
	case FDmdt:
		p.Dmdt = v
	case FKv:
		p.Kv = v
	case FRp:
		p.Rp = v
	case FTsh:
		p.Tsh = v
	case FPch:
		p.Pch = v
	}
	return p
}

// Bound is an inclusive box bound, mirroring the shape of slsqp.Bound so
// the discretizer can copy these directly into a Problem's Bounds slice.
type Bound struct {
	Lower, Upper float64
}
