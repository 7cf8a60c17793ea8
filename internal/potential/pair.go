// Package potential implements the pairwise interaction laws.
//
// A [Pair] is a closed tagged variant: dummy, Lennard-Jones, WCA, Coulomb or
// hard sphere. Energies are in kT and lengths in Å. Several laws are summed
// by a [Combined] potential, built with [Add].
package potential

import (
	"fmt"
	"math"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Kind tags the interaction law of a Pair.
type Kind int

const (
	Dummy Kind = iota
	LennardJones
	WCA
	Coulomb
	HardSphere
)

var kindNames = [...]string{"dummy", "lennardjones", "wca", "coulomb", "hardsphere"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a configuration tag to a Kind.
func ParseKind(tag string) (Kind, bool) {
	for i, n := range kindNames {
		if n == tag {
			return Kind(i), true
		}
	}
	return Dummy, false
}

// DefaultTemperature is used to derive the Bjerrum length from epsr.
const DefaultTemperature = 298.15

// physical constants, SI
const (
	elementaryCharge   = 1.602176634e-19
	vacuumPermittivity = 8.8541878128e-12
	boltzmann          = 1.380649e-23
)

// wcaCutoff is (2^(1/6))^2; WCA vanishes for r2 >= wcaCutoff*sigma^2.
var wcaCutoff = math.Pow(2, 1.0/3.0)

// BjerrumLength returns the Bjerrum length in Å for relative permittivity
// epsr at temperature t in kelvin.
func BjerrumLength(epsr, t float64) float64 {
	return elementaryCharge * elementaryCharge /
		(4 * math.Pi * vacuumPermittivity * epsr * boltzmann * t) * 1e10
}

// Pair is one pairwise interaction law.
type Pair struct {
	Kind Kind

	// Mix holds sigma and eps for LennardJones and WCA.
	Mix *MixingTable

	// Coulomb
	Bjerrum     float64
	Epsr        float64
	Temperature float64

	// HardSphere contact distance squared
	d2 *mat.SymDense
}

// NewLennardJones returns a Lennard-Jones law over m.
func NewLennardJones(m *MixingTable) Pair { return Pair{Kind: LennardJones, Mix: m} }

// NewWCA returns a Weeks-Chandler-Andersen law over m.
func NewWCA(m *MixingTable) Pair { return Pair{Kind: WCA, Mix: m} }

// NewCoulomb returns a Coulomb law with Bjerrum length lB in Å.
func NewCoulomb(lB float64) Pair { return Pair{Kind: Coulomb, Bjerrum: lB} }

// NewHardSphere returns a hard sphere law with the contact distance of each
// pair taken as the mean of the two sigmas.
func NewHardSphere(cat *atoms.Catalog) Pair {
	n := cat.NumAtoms()
	d2 := mat.NewSymDense(max(n, 1), nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			d := (cat.Atom(i).Sigma + cat.Atom(j).Sigma) / 2
			d2.SetSym(i, j, d*d)
		}
	}
	return Pair{Kind: HardSphere, d2: d2}
}

func (p Pair) Name() string { return p.Kind.String() }

// Energy returns the interaction energy of a and b at separation r.
func (p Pair) Energy(a, b *space.Particle, r r3.Vec) float64 {
	switch p.Kind {
	case LennardJones:
		x := p.Mix.SigmaSq(a.ID, b.ID) / r3.Norm2(r)
		x = x * x * x
		return p.Mix.FourEps(a.ID, b.ID) * (x*x - x)
	case WCA:
		s2 := p.Mix.SigmaSq(a.ID, b.ID)
		r2 := r3.Norm2(r)
		if r2 >= s2*wcaCutoff {
			return 0
		}
		x := s2 / r2
		x = x * x * x
		return p.Mix.FourEps(a.ID, b.ID) * (x*x - x + 0.25)
	case Coulomb:
		return p.Bjerrum * a.Charge * b.Charge / r3.Norm(r)
	case HardSphere:
		if r3.Norm2(r) < p.d2.At(a.ID, b.ID) {
			return math.Inf(1)
		}
		return 0
	}
	return 0
}

// Force returns the force on a from b, where r = a - b.
func (p Pair) Force(a, b *space.Particle, r r3.Vec) r3.Vec {
	switch p.Kind {
	case LennardJones:
		r2 := r3.Norm2(r)
		s6 := p.Mix.SigmaSq(a.ID, b.ID)
		s6 = s6 * s6 * s6
		r6 := r2 * r2 * r2
		return r3.Scale(6*p.Mix.FourEps(a.ID, b.ID)*s6*(2*s6-r6)/(r6*r6*r2), r)
	case WCA:
		s2 := p.Mix.SigmaSq(a.ID, b.ID)
		r2 := r3.Norm2(r)
		if r2 >= s2*wcaCutoff {
			return r3.Vec{}
		}
		x := s2 / r2
		x = x * x * x
		return r3.Scale(6*p.Mix.FourEps(a.ID, b.ID)*(2*x*x-x)/r2, r)
	case Coulomb:
		n := r3.Norm(r)
		return r3.Scale(p.Bjerrum*a.Charge*b.Charge/(n*n*n), r)
	}
	return r3.Vec{}
}

// Record serialises the law as {name: parameters}.
func (p Pair) Record() core.Record {
	var body core.Record
	switch p.Kind {
	case LennardJones, WCA:
		body = p.Mix.Record()
	case Coulomb:
		body = core.Record{"lB": p.Bjerrum}
		if p.Epsr > 0 {
			body["epsr"] = p.Epsr
			body["temperature"] = p.Temperature
		}
	default:
		body = core.Record{}
	}
	return core.Record{p.Name(): body}
}

// ParsePair builds a law from a single-key record such as
// {coulomb: {epsr: 80}} or {wca: {mixing: LB}}.
func ParsePair(rec core.Record, cat *atoms.Catalog) (Pair, error) {
	if len(rec) != 1 {
		return Pair{}, core.Errorf("potential", core.ErrInvalidValue, "expected a single potential name, got %d keys", len(rec))
	}
	name := rec.Keys()[0]
	kind, ok := ParseKind(name)
	if !ok {
		return Pair{}, core.Errorf(name, core.ErrUnknownVariant, "pair potential %q", name)
	}

	var body core.Record
	if rec[name] != nil {
		var err error
		if body, err = rec.Sub(name); err != nil {
			return Pair{}, err
		}
	}

	switch kind {
	case LennardJones, WCA:
		m, err := ParseMixing(body, cat)
		if err != nil {
			return Pair{}, &core.ParseError{Key: name, Wrapped: err}
		}
		return Pair{Kind: kind, Mix: m}, nil
	case Coulomb:
		p, err := parseCoulomb(body)
		if err != nil {
			return Pair{}, &core.ParseError{Key: name, Wrapped: err}
		}
		return p, nil
	case HardSphere:
		return NewHardSphere(cat), nil
	}
	return Pair{Kind: Dummy}, nil
}

// parseCoulomb reads lB directly when present and otherwise derives it
// from epsr and temperature.
func parseCoulomb(rec core.Record) (Pair, error) {
	if rec.Has("lB") {
		lB, err := rec.Float("lB")
		if err != nil {
			return Pair{}, err
		}
		p := NewCoulomb(lB)
		if p.Epsr, err = rec.FloatOr("epsr", 0); err != nil {
			return Pair{}, err
		}
		if p.Temperature, err = rec.FloatOr("temperature", 0); err != nil {
			return Pair{}, err
		}
		return p, nil
	}

	epsr, err := rec.Float("epsr")
	if err != nil {
		return Pair{}, err
	}
	if epsr <= 0 {
		return Pair{}, core.Errorf("epsr", core.ErrInvalidValue, "must be positive, got %g", epsr)
	}
	t, err := rec.FloatOr("temperature", DefaultTemperature)
	if err != nil {
		return Pair{}, err
	}
	if t <= 0 {
		return Pair{}, core.Errorf("temperature", core.ErrInvalidValue, "must be positive, got %g", t)
	}
	p := NewCoulomb(BjerrumLength(epsr, t))
	p.Epsr = epsr
	p.Temperature = t
	return p, nil
}
