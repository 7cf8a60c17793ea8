// Package geometry provides the container shapes the simulation runs in.
//
// The core only needs the [Geometry] interface: minimum image distance,
// boundary wrapping and random positions. [Cuboid] is periodic in all three
// directions, [Sphere] has a hard wall.
package geometry

import (
	"fmt"
	"math"

	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/random"
	"gonum.org/v1/gonum/spatial/r3"
)

// Geometry is the container collaborator.
type Geometry interface {
	Name() string
	// Distance returns the minimum image separation vector a - b.
	Distance(a, b r3.Vec) r3.Vec
	// Boundary wraps p back into the container.
	Boundary(p r3.Vec) r3.Vec
	// RandomPosition returns a uniform point inside the container.
	RandomPosition(src random.Source) r3.Vec
	// Collision reports whether p lies outside the container.
	Collision(p r3.Vec) bool
	Volume() float64
	Record() core.Record
}

// DistanceFunc is the minimum image distance of a geometry.
type DistanceFunc func(a, b r3.Vec) r3.Vec

// Cuboid is a periodic box centred on the origin.
type Cuboid struct {
	Len r3.Vec
}

func NewCuboid(x, y, z float64) *Cuboid {
	return &Cuboid{Len: r3.Vec{X: x, Y: y, Z: z}}
}

func (c *Cuboid) Name() string { return "cuboid" }

func (c *Cuboid) Distance(a, b r3.Vec) r3.Vec {
	d := r3.Sub(a, b)
	d.X -= c.Len.X * math.Round(d.X/c.Len.X)
	d.Y -= c.Len.Y * math.Round(d.Y/c.Len.Y)
	d.Z -= c.Len.Z * math.Round(d.Z/c.Len.Z)
	return d
}

func (c *Cuboid) Boundary(p r3.Vec) r3.Vec {
	p.X -= c.Len.X * math.Floor(p.X/c.Len.X+0.5)
	p.Y -= c.Len.Y * math.Floor(p.Y/c.Len.Y+0.5)
	p.Z -= c.Len.Z * math.Floor(p.Z/c.Len.Z+0.5)
	return p
}

func (c *Cuboid) RandomPosition(src random.Source) r3.Vec {
	return r3.Vec{
		X: c.Len.X * random.Half(src),
		Y: c.Len.Y * random.Half(src),
		Z: c.Len.Z * random.Half(src),
	}
}

func (c *Cuboid) Collision(p r3.Vec) bool {
	return math.Abs(p.X) > c.Len.X/2 || math.Abs(p.Y) > c.Len.Y/2 || math.Abs(p.Z) > c.Len.Z/2
}

func (c *Cuboid) Volume() float64 { return c.Len.X * c.Len.Y * c.Len.Z }

func (c *Cuboid) Record() core.Record {
	return core.Record{"type": "cuboid", "length": []float64{c.Len.X, c.Len.Y, c.Len.Z}}
}

// Sphere is a hard-walled spherical container centred on the origin.
type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere {
	return &Sphere{Radius: radius}
}

func (s *Sphere) Name() string                { return "sphere" }
func (s *Sphere) Distance(a, b r3.Vec) r3.Vec { return r3.Sub(a, b) }
func (s *Sphere) Boundary(p r3.Vec) r3.Vec    { return p }

func (s *Sphere) RandomPosition(src random.Source) r3.Vec {
	for {
		p := r3.Vec{X: 2 * random.Half(src), Y: 2 * random.Half(src), Z: 2 * random.Half(src)}
		if r3.Norm2(p) <= 1 {
			return r3.Scale(s.Radius, p)
		}
	}
}

func (s *Sphere) Collision(p r3.Vec) bool {
	return r3.Norm2(p) > s.Radius*s.Radius
}

func (s *Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

func (s *Sphere) Record() core.Record {
	return core.Record{"type": "sphere", "radius": s.Radius}
}

// Parse builds a geometry from a record such as
// {type: cuboid, length: [x, y, z]} or {type: sphere, radius: r}.
func Parse(rec core.Record) (Geometry, error) {
	kind, err := rec.String("type")
	if err != nil {
		return nil, err
	}
	switch kind {
	case "cuboid":
		l, err := rec.Floats("length")
		if err != nil {
			return nil, err
		}
		switch len(l) {
		case 1:
			l = []float64{l[0], l[0], l[0]}
		case 3:
		default:
			return nil, core.Errorf("length", core.ErrInvalidValue, "need 1 or 3 side lengths, got %d", len(l))
		}
		for _, v := range l {
			if v <= 0 {
				return nil, core.Errorf("length", core.ErrInvalidValue, "side length must be positive, got %g", v)
			}
		}
		return NewCuboid(l[0], l[1], l[2]), nil
	case "sphere":
		r, err := rec.Float("radius")
		if err != nil {
			return nil, err
		}
		if r <= 0 {
			return nil, core.Errorf("radius", core.ErrInvalidValue, "radius must be positive, got %g", r)
		}
		return NewSphere(r), nil
	}
	return nil, core.Errorf("type", core.ErrUnknownVariant, "geometry %q", kind)
}

// String formats a geometry for info blocks.
func String(g Geometry) string {
	switch v := g.(type) {
	case *Cuboid:
		return fmt.Sprintf("cuboid %gx%gx%g", v.Len.X, v.Len.Y, v.Len.Z)
	case *Sphere:
		return fmt.Sprintf("sphere r=%g", v.Radius)
	}
	return g.Name()
}
