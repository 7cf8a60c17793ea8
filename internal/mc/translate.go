package mc

import (
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/spatial/r3"
)

// AnyAtom selects every atom type in Translate.
const AnyAtom = -1

// Translate displaces one random active particle by dp·(u-½) per axis.
type Translate struct {
	Base
	// Atom restricts the move to one atom type, or AnyAtom.
	Atom int
	// Dp is the displacement parameter. Zero uses the atom type's dp.
	Dp float64

	candidates []int
}

// NewTranslate returns a particle translation move.
func NewTranslate(atom int, dp, runFraction float64) *Translate {
	return &Translate{Base: NewBase("translate", runFraction), Atom: atom, Dp: dp}
}

func (m *Translate) Propose(sys *System, src random.Source, c *space.Change) (Proposal, error) {
	s := sys.Trial
	m.candidates = m.candidates[:0]
	if m.Atom == AnyAtom {
		for _, g := range s.Groups() {
			for i := g.Begin(); i < g.End(); i++ {
				m.candidates = append(m.candidates, i)
			}
		}
	} else {
		for i := range s.FindParticlesByType(m.Atom) {
			m.candidates = append(m.candidates, i)
		}
	}
	if len(m.candidates) == 0 {
		return Proposal{Refused: true}, nil
	}

	i := m.candidates[src.IntN(len(m.candidates))]
	p := s.Particle(i)
	dp := m.Dp
	if dp == 0 {
		dp = sys.Catalog.Atom(p.ID).Dp
	}
	d := r3.Vec{
		X: dp * random.Half(src),
		Y: dp * random.Half(src),
		Z: dp * random.Half(src),
	}

	gi := s.ParticleGroup(i)
	c.AddGroup(space.GroupChange{Index: gi, Atoms: []int{i - s.Group(gi).Begin()}})

	pos := s.Geometry().Boundary(r3.Add(p.Pos, d))
	if s.Geometry().Collision(pos) {
		return Proposal{Refused: true}, nil
	}
	p.Pos = pos
	return Proposal{DU: sys.DeltaEnergy(c), Displacement2: r3.Norm2(d)}, nil
}

// MoleculeTranslate moves every active particle of one random molecule of
// the given type by the same displacement.
type MoleculeTranslate struct {
	Base
	Molecule int
	Dp       float64

	candidates []int
}

// NewMoleculeTranslate returns a rigid molecule translation move.
func NewMoleculeTranslate(molecule int, dp, runFraction float64) *MoleculeTranslate {
	return &MoleculeTranslate{Base: NewBase("moltranslate", runFraction), Molecule: molecule, Dp: dp}
}

func (m *MoleculeTranslate) Propose(sys *System, src random.Source, c *space.Change) (Proposal, error) {
	s := sys.Trial
	m.candidates = m.candidates[:0]
	for gi, g := range s.FindGroupsByType(m.Molecule) {
		if !g.Empty() {
			m.candidates = append(m.candidates, gi)
		}
	}
	if len(m.candidates) == 0 {
		return Proposal{Refused: true}, nil
	}

	gi := m.candidates[src.IntN(len(m.candidates))]
	g := s.Group(gi)
	d := r3.Vec{
		X: m.Dp * random.Half(src),
		Y: m.Dp * random.Half(src),
		Z: m.Dp * random.Half(src),
	}
	c.AddGroup(space.GroupChange{Index: gi, All: true})

	geo := s.Geometry()
	for i := range g.Particles() {
		p := g.At(i)
		pos := geo.Boundary(r3.Add(p.Pos, d))
		if geo.Collision(pos) {
			return Proposal{Refused: true}, nil
		}
		p.Pos = pos
	}
	return Proposal{DU: sys.DeltaEnergy(c), Displacement2: r3.Norm2(d)}, nil
}
