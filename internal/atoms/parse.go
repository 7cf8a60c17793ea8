package atoms

import (
	"fmt"

	"github.com/san-kum/mcsim/internal/bond"
	"github.com/san-kum/mcsim/internal/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// ParseAtom reads {name, q, sigma, eps, r, dp, activity}. Only name is required.
func ParseAtom(rec core.Record) (AtomType, error) {
	var a AtomType
	var err error
	if a.Name, err = rec.String("name"); err != nil {
		return a, err
	}
	fields := []struct {
		key string
		dst *float64
	}{
		{"q", &a.Charge},
		{"sigma", &a.Sigma},
		{"eps", &a.Eps},
		{"r", &a.Radius},
		{"dp", &a.Dp},
		{"activity", &a.Activity},
	}
	for _, f := range fields {
		if *f.dst, err = rec.FloatOr(f.key, 0); err != nil {
			return a, err
		}
	}
	if a.Sigma < 0 || a.Radius < 0 {
		return a, core.Errorf("sigma", core.ErrInvalidValue, "atom %q has negative size", a.Name)
	}
	return a, nil
}

// ParseMolecule reads {name, atoms, atomic, ninit, reserve, bonds, structure}.
func ParseMolecule(rec core.Record) (MoleculeType, error) {
	var m MoleculeType
	var err error
	if m.Name, err = rec.String("name"); err != nil {
		return m, err
	}
	if m.Atoms, err = rec.Strings("atoms"); err != nil {
		return m, err
	}
	if v, ok := rec["atomic"]; ok {
		b, ok := v.(bool)
		if !ok {
			return m, core.Errorf("atomic", core.ErrInvalidValue, "expected bool, got %T", v)
		}
		m.Atomic = b
	}
	if m.Ninit, err = rec.IntOr("ninit", 0); err != nil {
		return m, err
	}
	if m.Reserve, err = rec.IntOr("reserve", 0); err != nil {
		return m, err
	}

	if v, ok := rec["bonds"]; ok {
		list, ok := v.([]any)
		if !ok {
			return m, core.Errorf("bonds", core.ErrInvalidValue, "expected list, got %T", v)
		}
		recs := make([]core.Record, len(list))
		for i, e := range list {
			r, ok := core.AsRecord(e)
			if !ok {
				return m, core.Errorf(fmt.Sprintf("bonds[%d]", i), core.ErrInvalidValue, "expected mapping")
			}
			recs[i] = r
		}
		if m.Bonds, err = bond.ParseList(recs); err != nil {
			return m, err
		}
	}

	if v, ok := rec["structure"]; ok {
		list, ok := v.([]any)
		if !ok {
			return m, core.Errorf("structure", core.ErrInvalidValue, "expected list of positions")
		}
		for i, e := range list {
			xyz, err := core.Record{"p": e}.Floats("p")
			if err != nil || len(xyz) != 3 {
				return m, core.Errorf(fmt.Sprintf("structure[%d]", i), core.ErrInvalidValue, "expected [x, y, z]")
			}
			m.Structure = append(m.Structure, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		}
	}
	return m, nil
}

// Parse builds a catalog from atom and molecule records.
func Parse(atomRecs, molRecs []core.Record) (*Catalog, error) {
	atomTypes := make([]AtomType, 0, len(atomRecs))
	for i, rec := range atomRecs {
		a, err := ParseAtom(rec)
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
		atomTypes = append(atomTypes, a)
	}
	molTypes := make([]MoleculeType, 0, len(molRecs))
	for i, rec := range molRecs {
		m, err := ParseMolecule(rec)
		if err != nil {
			return nil, fmt.Errorf("molecule %d: %w", i, err)
		}
		molTypes = append(molTypes, m)
	}
	return NewCatalog(atomTypes, molTypes)
}
