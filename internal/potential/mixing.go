package potential

import (
	"math"
	"strings"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"gonum.org/v1/gonum/mat"
)

// LorentzBerthelot is the only supported mixing rule: arithmetic mean of
// sigma, geometric mean of eps.
const LorentzBerthelot = "LB"

// MixingTable holds the mixed sigma and eps for every atom type pair. The
// squared sigma and 4*eps used by the energy loops are kept alongside.
type MixingTable struct {
	Rule  string
	names []string
	sigma *mat.SymDense
	eps   *mat.SymDense
	s2    *mat.SymDense
	eps4  *mat.SymDense
}

// NewMixingTable mixes every atom type pair of cat with rule.
func NewMixingTable(cat *atoms.Catalog, rule string) (*MixingTable, error) {
	if rule != LorentzBerthelot {
		return nil, core.Errorf("mixing", core.ErrUnknownVariant, "mixing rule %q", rule)
	}
	n := cat.NumAtoms()
	if n == 0 {
		return nil, core.Errorf("atoms", core.ErrMissingField, "mixing requires at least one atom type")
	}

	m := &MixingTable{
		Rule:  rule,
		names: make([]string, n),
		sigma: mat.NewSymDense(n, nil),
		eps:   mat.NewSymDense(n, nil),
		s2:    mat.NewSymDense(n, nil),
		eps4:  mat.NewSymDense(n, nil),
	}
	for i := 0; i < n; i++ {
		a := cat.Atom(i)
		m.names[i] = a.Name
		for j := 0; j <= i; j++ {
			b := cat.Atom(j)
			m.Set(i, j, (a.Sigma+b.Sigma)/2, math.Sqrt(a.Eps*b.Eps))
		}
	}
	return m, nil
}

// Set overrides the parameters of pair (i, j) and (j, i).
func (m *MixingTable) Set(i, j int, sigma, eps float64) {
	m.sigma.SetSym(i, j, sigma)
	m.eps.SetSym(i, j, eps)
	m.s2.SetSym(i, j, sigma*sigma)
	m.eps4.SetSym(i, j, 4*eps)
}

func (m *MixingTable) Size() int                { return len(m.names) }
func (m *MixingTable) Sigma(i, j int) float64   { return m.sigma.At(i, j) }
func (m *MixingTable) Eps(i, j int) float64     { return m.eps.At(i, j) }
func (m *MixingTable) SigmaSq(i, j int) float64 { return m.s2.At(i, j) }
func (m *MixingTable) FourEps(i, j int) float64 { return m.eps4.At(i, j) }

// Record serialises the rule and every pair i >= j as a custom entry, so
// parsing the record reproduces the table exactly.
func (m *MixingTable) Record() core.Record {
	custom := core.Record{}
	for i := range m.names {
		for j := 0; j <= i; j++ {
			custom[m.names[i]+" "+m.names[j]] = core.Record{
				"sigma": m.Sigma(i, j),
				"eps":   m.Eps(i, j),
			}
		}
	}
	return core.Record{"mixing": m.Rule, "custom": custom}
}

// ParseMixing builds a table from {mixing: LB, custom: {"A B": {sigma, eps}}}.
// Both keys are optional.
func ParseMixing(rec core.Record, cat *atoms.Catalog) (*MixingTable, error) {
	rule, err := rec.StringOr("mixing", LorentzBerthelot)
	if err != nil {
		return nil, err
	}
	m, err := NewMixingTable(cat, rule)
	if err != nil {
		return nil, err
	}
	if !rec.Has("custom") {
		return m, nil
	}

	custom, err := rec.Sub("custom")
	if err != nil {
		return nil, err
	}
	for _, key := range custom.Keys() {
		path := "custom." + key
		names := strings.Fields(key)
		if len(names) != 2 {
			return nil, core.Errorf(path, core.ErrInvalidValue, "custom pair needs exactly two space separated atom names")
		}
		a, ok := cat.AtomByName(names[0])
		if !ok {
			return nil, core.Errorf(path, core.ErrUnknownName, "atom %q", names[0])
		}
		b, ok := cat.AtomByName(names[1])
		if !ok {
			return nil, core.Errorf(path, core.ErrUnknownName, "atom %q", names[1])
		}
		pair, err := custom.Sub(key)
		if err != nil {
			return nil, err
		}
		sigma, err := pair.Float("sigma")
		if err != nil {
			return nil, &core.ParseError{Key: path, Wrapped: err}
		}
		eps, err := pair.Float("eps")
		if err != nil {
			return nil, &core.ParseError{Key: path, Wrapped: err}
		}
		m.Set(a.ID, b.ID, sigma, eps)
	}
	return m, nil
}
