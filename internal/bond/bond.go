// Package bond implements bonded interactions attached to molecule templates.
//
// A [Bond] is a closed variant over harmonic, FENE and dihedral laws. Indices
// are relative to the owning molecule until [Bond.Shift] moves them into the
// particle slice of a space.
package bond

import (
	"fmt"
	"math"

	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/geometry"
	"gonum.org/v1/gonum/spatial/r3"
)

type Kind int

const (
	None Kind = iota
	Harmonic
	FENE
	Dihedral
)

var kindNames = map[Kind]string{
	None:     "none",
	Harmonic: "harmonic",
	FENE:     "fene",
	Dihedral: "dihedral",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a configuration tag to a Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, s := range kindNames {
		if s == tag {
			return k, true
		}
	}
	return None, false
}

// Bond holds the bonded particle indices and the force-law parameters of one
// bonded interaction.
type Bond struct {
	Kind  Kind
	Index []int
	K     float64 // force constant (kT/Å² for harmonic and FENE, kT for dihedral)
	Req   float64 // harmonic equilibrium distance
	Rmax  float64 // FENE maximum extension
	Phi   float64 // dihedral reference angle (degrees)
}

// Shift adds offset to every particle index.
func (b *Bond) Shift(offset int) {
	for i := range b.Index {
		b.Index[i] += offset
	}
}

// Clone returns a deep copy.
func (b Bond) Clone() Bond {
	c := b
	c.Index = append([]int(nil), b.Index...)
	return c
}

// Energy returns the bond energy in kT. pos resolves a particle index to its
// position.
func (b *Bond) Energy(pos func(int) r3.Vec, dist geometry.DistanceFunc) (float64, error) {
	switch b.Kind {
	case None:
		return 0, nil
	case Harmonic:
		d := b.Req - r3.Norm(dist(pos(b.Index[0]), pos(b.Index[1])))
		return 0.5 * b.K * d * d, nil
	case FENE:
		r2 := r3.Norm2(dist(pos(b.Index[0]), pos(b.Index[1])))
		rmax2 := b.Rmax * b.Rmax
		if r2 >= rmax2 {
			return math.Inf(1), nil
		}
		return -0.5 * b.K * rmax2 * math.Log(1-r2/rmax2), nil
	}
	return 0, fmt.Errorf("%s bond energy: %w", b.Kind, core.ErrUnimplemented)
}

// Force returns the force acting on the first bonded particle; the second
// particle feels the opposite force.
func (b *Bond) Force(pos func(int) r3.Vec, dist geometry.DistanceFunc) (r3.Vec, error) {
	switch b.Kind {
	case None:
		return r3.Vec{}, nil
	case Harmonic:
		r := dist(pos(b.Index[0]), pos(b.Index[1]))
		n := r3.Norm(r)
		if n == 0 {
			return r3.Vec{}, nil
		}
		return r3.Scale(-b.K*(n-b.Req)/n, r), nil
	}
	return r3.Vec{}, fmt.Errorf("%s bond force: %w", b.Kind, core.ErrUnimplemented)
}

// Record serialises the bond, e.g. {type: harmonic, index: [2, 3], k: 0.5, req: 2.1}.
func (b *Bond) Record() core.Record {
	rec := core.Record{"type": b.Kind.String()}
	if b.Kind == None {
		return rec
	}
	rec["index"] = append([]int(nil), b.Index...)
	rec["k"] = b.K
	switch b.Kind {
	case Harmonic:
		rec["req"] = b.Req
	case FENE:
		rec["rmax"] = b.Rmax
	case Dihedral:
		rec["phi"] = b.Phi
	}
	return rec
}

// Parse builds a bond from a configuration record.
func Parse(rec core.Record) (Bond, error) {
	tag, err := rec.String("type")
	if err != nil {
		return Bond{}, err
	}
	kind, ok := ParseKind(tag)
	if !ok {
		return Bond{}, core.Errorf("type", core.ErrUnknownVariant, "bond type %q", tag)
	}
	b := Bond{Kind: kind}
	if kind == None {
		return b, nil
	}

	want := 2
	if kind == Dihedral {
		want = 4
	}
	if b.Index, err = rec.Ints("index"); err != nil {
		return Bond{}, err
	}
	if len(b.Index) != want {
		return Bond{}, core.Errorf("index", core.ErrInvalidValue, "%s bond requires exactly %d indices, got %d", kind, want, len(b.Index))
	}
	if b.K, err = rec.Float("k"); err != nil {
		return Bond{}, err
	}

	switch kind {
	case Harmonic:
		b.Req, err = rec.Float("req")
	case FENE:
		b.Rmax, err = rec.Float("rmax")
		if err == nil && b.Rmax <= 0 {
			err = core.Errorf("rmax", core.ErrInvalidValue, "must be positive, got %g", b.Rmax)
		}
	case Dihedral:
		b.Phi, err = rec.Float("phi")
	}
	if err != nil {
		return Bond{}, err
	}
	return b, nil
}

// ParseList parses a list of bond records.
func ParseList(recs []core.Record) ([]Bond, error) {
	out := make([]Bond, 0, len(recs))
	for i, rec := range recs {
		b, err := Parse(rec)
		if err != nil {
			return nil, fmt.Errorf("bond %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Filter returns pointers to the bonds of the given kind, in order.
func Filter(bonds []Bond, kind Kind) []*Bond {
	out := make([]*Bond, 0, len(bonds))
	for i := range bonds {
		if bonds[i].Kind == kind {
			out = append(out, &bonds[i])
		}
	}
	return out
}
