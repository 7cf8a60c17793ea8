package space

import (
	"fmt"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/bond"
	"github.com/san-kum/mcsim/internal/geometry"
	"github.com/san-kum/mcsim/internal/random"
	"gonum.org/v1/gonum/spatial/r3"
)

const maxPlacementAttempts = 1000

// Populate clears s and inserts every molecule type of the catalog. Atomic
// molecule types become a single group holding ninit active and reserve
// inactive copies; other types get one group per copy, reserve copies
// starting inactive. Active particles of different molecules are placed
// at least their contact distance (σa+σb)/2 apart.
func (s *Space) Populate(cat *atoms.Catalog, src random.Source) error {
	s.Clear()
	var placed []Particle
	for id := 0; id < cat.NumMolecules(); id++ {
		m := cat.Molecule(id)
		total := m.Ninit + m.Reserve
		if total == 0 {
			continue
		}

		if m.Atomic {
			in := make([]Particle, 0, total*m.Size())
			for n := 0; n < total; n++ {
				var avoid []Particle
				if n < m.Ninit {
					avoid = placed
				}
				c, err := Conformation(m, cat, s.geo, avoid, src)
				if err != nil {
					return err
				}
				in = append(in, c...)
				if n < m.Ninit {
					placed = append(placed, c...)
				}
			}
			s.AppendReserve(m.ID, in, m.Ninit*m.Size())
			continue
		}

		for n := 0; n < total; n++ {
			var avoid []Particle
			if n < m.Ninit {
				avoid = placed
			}
			c, err := Conformation(m, cat, s.geo, avoid, src)
			if err != nil {
				return err
			}
			active := m.Size()
			if n >= m.Ninit {
				active = 0
			} else {
				placed = append(placed, c...)
			}
			s.AppendReserve(m.ID, c, active)
		}
	}
	return nil
}

// Conformation returns one randomly placed copy of molecule m that overlaps
// none of the avoid particles. Atomic molecules get independent positions,
// each also clear of the atoms placed before it; others use the template
// structure when given and a random chain otherwise.
func Conformation(m *atoms.MoleculeType, cat *atoms.Catalog, geo geometry.Geometry, avoid []Particle, src random.Source) ([]Particle, error) {
	out := make([]Particle, m.Size())

	if m.Atomic {
		for i, id := range m.AtomIDs {
			a := cat.Atom(id)
			ok := false
			for attempt := 0; attempt < maxPlacementAttempts && !ok; attempt++ {
				out[i] = NewParticle(a, geo.Boundary(geo.RandomPosition(src)))
				ok = !overlaps(&out[i], avoid, cat, geo) && !overlaps(&out[i], out[:i], cat, geo)
			}
			if !ok {
				return nil, fmt.Errorf("space: could not place atom %q without overlap after %d attempts", a.Name, maxPlacementAttempts)
			}
		}
		return out, nil
	}

	for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
		ok := true
		center := geo.RandomPosition(src)
		prev := center
		for i, id := range m.AtomIDs {
			var pos r3.Vec
			switch {
			case len(m.Structure) > 0:
				pos = r3.Add(center, m.Structure[i])
			case i == 0:
				pos = center
			default:
				pos = r3.Add(prev, r3.Scale(bondLength(m, cat, i-1, i), random.UnitVector(src)))
			}
			prev = pos
			pos = geo.Boundary(pos)
			out[i] = NewParticle(cat.Atom(id), pos)
			if geo.Collision(pos) || overlaps(&out[i], avoid, cat, geo) {
				ok = false
				break
			}
		}
		if ok {
			return out, nil
		}
	}
	return nil, fmt.Errorf("space: could not place molecule %q inside container after %d attempts", m.Name, maxPlacementAttempts)
}

// overlaps reports whether p is closer than contact distance to any of
// others.
func overlaps(p *Particle, others []Particle, cat *atoms.Catalog, geo geometry.Geometry) bool {
	sp := cat.Atom(p.ID).Sigma
	for i := range others {
		d := (sp + cat.Atom(others[i].ID).Sigma) / 2
		if r3.Norm2(geo.Distance(p.Pos, others[i].Pos)) < d*d {
			return true
		}
	}
	return false
}

// bondLength is the harmonic equilibrium distance between atoms i and j of
// m, falling back to the mixed contact distance.
func bondLength(m *atoms.MoleculeType, cat *atoms.Catalog, i, j int) float64 {
	for _, b := range bond.Filter(m.Bonds, bond.Harmonic) {
		if (b.Index[0] == i && b.Index[1] == j) || (b.Index[0] == j && b.Index[1] == i) {
			return b.Req
		}
	}
	d := (cat.Atom(m.AtomIDs[i]).Sigma + cat.Atom(m.AtomIDs[j]).Sigma) / 2
	if d == 0 {
		return 1
	}
	return d
}
