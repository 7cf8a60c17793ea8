package space

import (
	"github.com/san-kum/mcsim/internal/atoms"
	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is one interaction site. ID refers to an atom type in the catalog.
type Particle struct {
	ID     int
	Pos    r3.Vec
	Charge float64
	Radius float64
	Mu     r3.Vec // dipole moment
	Dir    r3.Vec // orientation, unit vector
}

// NewParticle creates a particle of the given atom type at pos.
func NewParticle(a *atoms.AtomType, pos r3.Vec) Particle {
	return Particle{
		ID:     a.ID,
		Pos:    pos,
		Charge: a.Charge,
		Radius: a.Radius,
	}
}
