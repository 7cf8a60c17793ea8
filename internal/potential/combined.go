package potential

import (
	"fmt"
	"strings"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/spatial/r3"
)

// Combined is the sum of its terms. The empty Combined is zero everywhere.
type Combined []Pair

// Add combines p with q. Dummy terms are dropped, so Dummy is the identity
// and Add(a, b).Add(c) equals Add(a, b, c).
func Add(p Pair, q ...Pair) Combined {
	return Combined(nil).Add(append([]Pair{p}, q...)...)
}

// Add returns c extended by q. c itself is not modified.
func (c Combined) Add(q ...Pair) Combined {
	out := make(Combined, 0, len(c)+len(q))
	for _, t := range c {
		if t.Kind != Dummy {
			out = append(out, t)
		}
	}
	for _, t := range q {
		if t.Kind != Dummy {
			out = append(out, t)
		}
	}
	return out
}

// Join concatenates combined potentials.
func Join(cs ...Combined) Combined {
	var out Combined
	for _, c := range cs {
		out = out.Add(c...)
	}
	return out
}

func (c Combined) Name() string {
	if len(c) == 0 {
		return Dummy.String()
	}
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name()
	}
	return strings.Join(names, "+")
}

func (c Combined) Energy(a, b *space.Particle, r r3.Vec) float64 {
	var u float64
	for i := range c {
		u += c[i].Energy(a, b, r)
	}
	return u
}

func (c Combined) Force(a, b *space.Particle, r r3.Vec) r3.Vec {
	var f r3.Vec
	for i := range c {
		f = r3.Add(f, c[i].Force(a, b, r))
	}
	return f
}

// Records serialises every term in order.
func (c Combined) Records() []core.Record {
	out := make([]core.Record, len(c))
	for i, t := range c {
		out[i] = t.Record()
	}
	return out
}

// ParseCombined parses a list of pair records into a Combined.
func ParseCombined(recs []core.Record, cat *atoms.Catalog) (Combined, error) {
	var out Combined
	for i, rec := range recs {
		p, err := ParsePair(rec, cat)
		if err != nil {
			return nil, fmt.Errorf("energy %d: %w", i, err)
		}
		out = out.Add(p)
	}
	return out, nil
}
