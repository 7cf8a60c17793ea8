// Package atoms holds the read-only atom and molecule type catalogs.
//
// A [Catalog] is built once from configuration and passed by reference to
// every component that needs type parameters. It is never mutated after
// [NewCatalog] returns, so concurrent readers need no locking.
package atoms

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/san-kum/mcsim/internal/bond"
	"github.com/san-kum/mcsim/internal/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// AtomType describes one particle species. Energies are in kT and lengths in Å.
type AtomType struct {
	ID       int
	Name     string
	Charge   float64
	Sigma    float64
	Eps      float64
	Radius   float64
	Dp       float64
	Activity float64
}

// MoleculeType is a template of atoms inserted together as one group.
type MoleculeType struct {
	ID        int
	Name      string
	Atoms     []string
	AtomIDs   []int
	Atomic    bool
	Ninit     int
	Reserve   int
	Bonds     []bond.Bond
	Structure []r3.Vec
}

// Size returns the number of atoms in one copy of the molecule.
func (m *MoleculeType) Size() int { return len(m.AtomIDs) }

// Catalog is the immutable table of atom and molecule types.
type Catalog struct {
	atoms     []AtomType
	molecules []MoleculeType
	atomIdx   map[string]int
	molIdx    map[string]int
}

// NewCatalog assigns identifiers in slice order, resolves molecule atom
// names and validates the tables.
func NewCatalog(atomTypes []AtomType, moleculeTypes []MoleculeType) (*Catalog, error) {
	c := &Catalog{
		atoms:     make([]AtomType, len(atomTypes)),
		molecules: make([]MoleculeType, len(moleculeTypes)),
		atomIdx:   make(map[string]int, len(atomTypes)),
		molIdx:    make(map[string]int, len(moleculeTypes)),
	}

	for i, a := range atomTypes {
		if a.Name == "" {
			return nil, core.Errorf(fmt.Sprintf("atoms[%d].name", i), core.ErrMissingField, "atom name is required")
		}
		// Pair tables key custom parameters by space separated atom names.
		if strings.ContainsFunc(a.Name, unicode.IsSpace) {
			return nil, core.Errorf(fmt.Sprintf("atoms[%d].name", i), core.ErrInvalidValue, "atom name %q contains whitespace", a.Name)
		}
		if _, dup := c.atomIdx[a.Name]; dup {
			return nil, core.Errorf("atoms."+a.Name, core.ErrInvalidValue, "duplicate atom name")
		}
		a.ID = i
		if a.Radius == 0 {
			a.Radius = a.Sigma / 2
		}
		c.atoms[i] = a
		c.atomIdx[a.Name] = i
	}

	for i, m := range moleculeTypes {
		if m.Name == "" {
			return nil, core.Errorf(fmt.Sprintf("molecules[%d].name", i), core.ErrMissingField, "molecule name is required")
		}
		if _, dup := c.molIdx[m.Name]; dup {
			return nil, core.Errorf("molecules."+m.Name, core.ErrInvalidValue, "duplicate molecule name")
		}
		if len(m.Atoms) == 0 {
			return nil, core.Errorf("molecules."+m.Name+".atoms", core.ErrMissingField, "molecule has no atoms")
		}
		m.ID = i
		m.AtomIDs = make([]int, len(m.Atoms))
		for j, name := range m.Atoms {
			id, ok := c.atomIdx[name]
			if !ok {
				return nil, core.Errorf("molecules."+m.Name+".atoms", core.ErrUnknownName, "atom %q", name)
			}
			m.AtomIDs[j] = id
		}
		m.Atoms = append([]string(nil), m.Atoms...)
		for _, b := range m.Bonds {
			for _, idx := range b.Index {
				if idx < 0 || idx >= len(m.Atoms) {
					return nil, core.Errorf("molecules."+m.Name+".bonds", core.ErrInvalidValue, "bond index %d outside molecule of %d atoms", idx, len(m.Atoms))
				}
			}
		}
		if len(m.Structure) != 0 && len(m.Structure) != len(m.Atoms) {
			return nil, core.Errorf("molecules."+m.Name+".structure", core.ErrInvalidValue, "%d positions for %d atoms", len(m.Structure), len(m.Atoms))
		}
		if m.Ninit < 0 || m.Reserve < 0 {
			return nil, core.Errorf("molecules."+m.Name, core.ErrInvalidValue, "negative molecule count")
		}
		c.molecules[i] = m
		c.molIdx[m.Name] = i
	}

	return c, nil
}

func (c *Catalog) NumAtoms() int     { return len(c.atoms) }
func (c *Catalog) NumMolecules() int { return len(c.molecules) }

// Atom returns the atom type with the given id. It panics on an unknown id.
func (c *Catalog) Atom(id int) *AtomType {
	if id < 0 || id >= len(c.atoms) {
		panic(fmt.Sprintf("atoms: atom id %d out of range [0,%d)", id, len(c.atoms)))
	}
	return &c.atoms[id]
}

// Molecule returns the molecule type with the given id. It panics on an unknown id.
func (c *Catalog) Molecule(id int) *MoleculeType {
	if id < 0 || id >= len(c.molecules) {
		panic(fmt.Sprintf("atoms: molecule id %d out of range [0,%d)", id, len(c.molecules)))
	}
	return &c.molecules[id]
}

func (c *Catalog) AtomByName(name string) (*AtomType, bool) {
	i, ok := c.atomIdx[name]
	if !ok {
		return nil, false
	}
	return &c.atoms[i], true
}

func (c *Catalog) MoleculeByName(name string) (*MoleculeType, bool) {
	i, ok := c.molIdx[name]
	if !ok {
		return nil, false
	}
	return &c.molecules[i], true
}

// MoleculeWithAtom returns the first atomic molecule type consisting only of
// the named atom.
func (c *Catalog) MoleculeWithAtom(atom string) (*MoleculeType, bool) {
	for i := range c.molecules {
		m := &c.molecules[i]
		if !m.Atomic {
			continue
		}
		only := true
		for _, a := range m.Atoms {
			if a != atom {
				only = false
				break
			}
		}
		if only {
			return m, true
		}
	}
	return nil, false
}

// Atoms returns a copy of the atom table.
func (c *Catalog) Atoms() []AtomType {
	out := make([]AtomType, len(c.atoms))
	copy(out, c.atoms)
	return out
}

// Molecules returns a copy of the molecule table.
func (c *Catalog) Molecules() []MoleculeType {
	out := make([]MoleculeType, len(c.molecules))
	copy(out, c.molecules)
	return out
}
