package space

import (
	"fmt"
	"iter"
	"sort"

	"github.com/san-kum/mcsim/internal/geometry"
)

// Space owns a particle slice, the groups indexing into it and a geometry.
type Space struct {
	p      []Particle
	groups []Group
	geo    geometry.Geometry
}

func New(geo geometry.Geometry) *Space {
	return &Space{geo: geo}
}

func (s *Space) Geometry() geometry.Geometry { return s.geo }

// Particles returns the particle slice, inactive slots included. Elements may
// be modified in place; the slice must not be appended to.
func (s *Space) Particles() []Particle { return s.p }

// Groups returns the group slice.
func (s *Space) Groups() []Group { return s.groups }

func (s *Space) NumParticles() int { return len(s.p) }
func (s *Space) NumGroups() int    { return len(s.groups) }

// Group returns group i. An out-of-range index is a broken invariant and panics.
func (s *Space) Group(i int) *Group {
	if i < 0 || i >= len(s.groups) {
		panic(fmt.Sprintf("space: group index %d out of range [0,%d)", i, len(s.groups)))
	}
	return &s.groups[i]
}

// Particle returns particle i. It panics on an out-of-range index.
func (s *Space) Particle(i int) *Particle {
	if i < 0 || i >= len(s.p) {
		panic(fmt.Sprintf("space: particle index %d out of range [0,%d)", i, len(s.p)))
	}
	return &s.p[i]
}

// Append adds particles as a new, fully active group of molecule type molID.
// Appending nothing is a no-op.
func (s *Space) Append(molID int, in []Particle) {
	s.AppendReserve(molID, in, len(in))
}

// AppendReserve adds particles as a new group where only the first active
// slots are active.
func (s *Space) AppendReserve(molID int, in []Particle, active int) {
	if len(in) == 0 {
		return
	}
	if active < 0 || active > len(in) {
		panic(fmt.Sprintf("space: %d active slots requested for %d particles", active, len(in)))
	}

	old := s.p
	s.p = append(s.p, in...)
	if !sameBacking(old, s.p) {
		s.Rebase()
	}

	g := Group{
		ID:       molID,
		begin:    len(s.p) - len(in),
		size:     active,
		capacity: len(in),
	}
	g.rebase(s.p)
	s.groups = append(s.groups, g)
}

// Rebase re-anchors every group view onto the current particle slice,
// keeping each group's offsets.
func (s *Space) Rebase() {
	for i := range s.groups {
		s.groups[i].rebase(s.p)
	}
}

// Clear empties particle and group storage.
func (s *Space) Clear() {
	s.p = nil
	s.groups = nil
}

// Clone returns a deep copy that shares no particle storage with s.
func (s *Space) Clone() *Space {
	c := &Space{
		p:      append([]Particle(nil), s.p...),
		groups: append([]Group(nil), s.groups...),
		geo:    s.geo,
	}
	c.Rebase()
	return c
}

// FindGroupsByType yields (index, group) for every group of molecule type molID.
func (s *Space) FindGroupsByType(molID int) iter.Seq2[int, *Group] {
	return func(yield func(int, *Group) bool) {
		for i := range s.groups {
			if s.groups[i].ID != molID {
				continue
			}
			if !yield(i, &s.groups[i]) {
				return
			}
		}
	}
}

// FindParticlesByType yields (index, particle) for every active particle of
// atom type atomID.
func (s *Space) FindParticlesByType(atomID int) iter.Seq2[int, Particle] {
	return func(yield func(int, Particle) bool) {
		for gi := range s.groups {
			g := &s.groups[gi]
			for i := g.begin; i < g.begin+g.size; i++ {
				if s.p[i].ID != atomID {
					continue
				}
				if !yield(i, s.p[i]) {
					return
				}
			}
		}
	}
}

// ActiveCount returns the number of active particles.
func (s *Space) ActiveCount() int {
	n := 0
	for i := range s.groups {
		n += s.groups[i].size
	}
	return n
}

// ParticleGroup returns the index of the group owning slot i, or -1.
func (s *Space) ParticleGroup(i int) int {
	k := sort.Search(len(s.groups), func(k int) bool {
		return s.groups[k].begin+s.groups[k].capacity > i
	})
	if k < len(s.groups) && s.groups[k].begin <= i {
		return k
	}
	return -1
}

// Sync makes s equal to o, copying only what c says differs. When the two
// spaces differ in particle or group count everything is copied.
func (s *Space) Sync(o *Space, c *Change) {
	if s == o {
		panic("space: sync of a space with itself")
	}

	if len(s.p) != len(o.p) || len(s.groups) != len(o.groups) {
		s.p = append(s.p[:0:0], o.p...)
		s.groups = append(s.groups[:0:0], o.groups...)
		s.Rebase()
		return
	}

	if sameBacking(s.p, o.p) {
		panic("space: sync between spaces sharing particle storage")
	}

	for _, m := range c.Groups {
		dst := s.Group(m.Index)
		src := o.Group(m.Index)
		if dst.begin != src.begin || dst.capacity != src.capacity {
			panic(fmt.Sprintf("space: group %d layout differs between spaces", m.Index))
		}

		dst.size = src.size
		if m.All {
			copy(dst.view, src.view)
			continue
		}
		for _, i := range m.Atoms {
			dst.view[i] = src.view[i]
		}
		for _, r := range m.Activated {
			copy(dst.view[r.Begin:r.End], src.view[r.Begin:r.End])
		}
		for _, r := range m.Deactivated {
			copy(dst.view[r.Begin:r.End], src.view[r.Begin:r.End])
		}
	}
}

func sameBacking(a, b []Particle) bool {
	return cap(a) > 0 && cap(b) > 0 && &a[:1][0] == &b[:1][0]
}
