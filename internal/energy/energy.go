// Package energy evaluates configurational energies of a space.
//
// A [Hamiltonian] sums a combined pair potential over active particles and
// the bond energies of fully active molecules. Moves use [Hamiltonian.ChangeEnergy]
// on the trial and accepted spaces so only the touched region is evaluated.
package energy

import (
	"fmt"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/bond"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/potential"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelChunk is the minimum number of rows summed per goroutine.
const parallelChunk = 64

// Hamiltonian is the total energy function of a space.
type Hamiltonian struct {
	Pair    potential.Combined
	catalog *atoms.Catalog
}

// New returns a Hamiltonian over pair and the bonds of every molecule type
// in cat. Bond kinds that cannot be evaluated are rejected here.
func New(pair potential.Combined, cat *atoms.Catalog) (*Hamiltonian, error) {
	for _, m := range cat.Molecules() {
		for _, b := range m.Bonds {
			if b.Kind == bond.Dihedral {
				return nil, fmt.Errorf("molecule %s: %s bond energy: %w", m.Name, b.Kind, core.ErrUnimplemented)
			}
		}
	}
	return &Hamiltonian{Pair: pair, catalog: cat}, nil
}

func (h *Hamiltonian) Name() string { return h.Pair.Name() }

// PairEnergy is the interaction of a and b under the minimum image convention.
func (h *Hamiltonian) PairEnergy(s *space.Space, a, b *space.Particle) float64 {
	return h.Pair.Energy(a, b, s.Geometry().Distance(a.Pos, b.Pos))
}

// ParticleEnergy is the interaction of p with every active particle of s
// whose slot is not excluded. A nil exclude includes everything; if p lives
// in s its own slot must be excluded.
func (h *Hamiltonian) ParticleEnergy(s *space.Space, p *space.Particle, exclude func(int) bool) float64 {
	var u float64
	for _, g := range s.Groups() {
		for i := g.Begin(); i < g.End(); i++ {
			if exclude != nil && exclude(i) {
				continue
			}
			u += h.PairEnergy(s, p, s.Particle(i))
		}
	}
	return u
}

// GroupEnergy is the interaction between the active particles of group gi
// and every active particle outside it.
func (h *Hamiltonian) GroupEnergy(s *space.Space, gi int) float64 {
	g := s.Group(gi)
	var u float64
	for i := g.Begin(); i < g.End(); i++ {
		u += h.ParticleEnergy(s, s.Particle(i), g.Contains)
	}
	return u
}

// BondEnergy is the intramolecular bond energy of group gi. Groups that are
// not fully active contribute nothing.
func (h *Hamiltonian) BondEnergy(s *space.Space, gi int) float64 {
	g := s.Group(gi)
	m := h.catalog.Molecule(g.ID)
	if m.Atomic || len(m.Bonds) == 0 || !g.Full() {
		return 0
	}
	pos := func(i int) r3.Vec { return g.At(i).Pos }
	var u float64
	for i := range m.Bonds {
		e, err := m.Bonds[i].Energy(pos, s.Geometry().Distance)
		if err != nil {
			panic(fmt.Sprintf("energy: bond %d of %s: %v", i, m.Name, err))
		}
		u += e
	}
	return u
}

// SystemEnergy is the total energy of s. Pair rows are summed in parallel.
func (h *Hamiltonian) SystemEnergy(s *space.Space) float64 {
	active := make([]int, 0, s.ActiveCount())
	for _, g := range s.Groups() {
		for i := g.Begin(); i < g.End(); i++ {
			active = append(active, i)
		}
	}

	rows := make([]float64, len(active))
	core.ParallelFor(len(active), parallelChunk, func(start, end int) {
		for k := start; k < end; k++ {
			a := s.Particle(active[k])
			var u float64
			for _, j := range active[k+1:] {
				u += h.PairEnergy(s, a, s.Particle(j))
			}
			rows[k] = u
		}
	})

	u := floats.Sum(rows)
	for gi := range s.Groups() {
		u += h.BondEnergy(s, gi)
	}
	return u
}

// ChangeEnergy is the energy of the region of s described by c: every
// interaction involving a touched active particle, counted once, plus the
// bond energy of touched groups. The move energy change is
// ChangeEnergy(trial, c) - ChangeEnergy(accepted, c).
func (h *Hamiltonian) ChangeEnergy(s *space.Space, c *space.Change) float64 {
	touched := make([]bool, s.NumParticles())
	var list []int
	mark := func(g *space.Group, off int) {
		if !g.Active(off) {
			return
		}
		i := g.Begin() + off
		if !touched[i] {
			touched[i] = true
			list = append(list, i)
		}
	}

	for _, gc := range c.Groups {
		g := s.Group(gc.Index)
		if gc.All {
			for off := 0; off < g.Len(); off++ {
				mark(g, off)
			}
		} else {
			for _, off := range gc.Atoms {
				mark(g, off)
			}
		}
		for _, r := range append(append([]space.Range(nil), gc.Activated...), gc.Deactivated...) {
			for off := r.Begin; off < r.End; off++ {
				mark(g, off)
			}
		}
	}

	var u float64
	for k, i := range list {
		p := s.Particle(i)
		u += h.ParticleEnergy(s, p, func(j int) bool { return touched[j] })
		for _, j := range list[k+1:] {
			u += h.PairEnergy(s, p, s.Particle(j))
		}
	}
	for gi := range c.TouchedGroupIndex() {
		u += h.BondEnergy(s, gi)
	}
	return u
}
