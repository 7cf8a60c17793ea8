package space

import (
	"fmt"
	"sort"

	"github.com/san-kum/mcsim/internal/random"
)

// Group is a contiguous slot range [begin, begin+capacity) of the particle
// slice. The first size slots are active.
type Group struct {
	ID       int
	begin    int
	size     int
	capacity int
	view     []Particle
}

func (g *Group) Begin() int    { return g.begin }
func (g *Group) End() int      { return g.begin + g.size }
func (g *Group) TrueEnd() int  { return g.begin + g.capacity }
func (g *Group) Len() int      { return g.size }
func (g *Group) Capacity() int { return g.capacity }
func (g *Group) Empty() bool   { return g.size == 0 }
func (g *Group) Full() bool    { return g.size == g.capacity }

// Particles returns the active particles. The slice aliases space storage.
func (g *Group) Particles() []Particle { return g.view[:g.size] }

// Slots returns every slot, active or not.
func (g *Group) Slots() []Particle { return g.view }

// At returns the particle in slot offset. It panics if offset is outside the
// group capacity.
func (g *Group) At(offset int) *Particle {
	if offset < 0 || offset >= g.capacity {
		panic(fmt.Sprintf("space: offset %d outside group of capacity %d", offset, g.capacity))
	}
	return &g.view[offset]
}

// Active reports whether slot offset is active.
func (g *Group) Active(offset int) bool { return offset >= 0 && offset < g.size }

// Contains reports whether the absolute particle index is an active member.
func (g *Group) Contains(index int) bool { return index >= g.begin && index < g.begin+g.size }

// Random returns the offset of a uniformly chosen active slot, or -1 when
// the group is empty.
func (g *Group) Random(src random.Source) int {
	if g.size == 0 {
		return -1
	}
	return src.IntN(g.size)
}

// Activate marks the next n inactive slots as active and returns their range.
func (g *Group) Activate(n int) Range {
	if n < 0 || g.size+n > g.capacity {
		panic(fmt.Sprintf("space: cannot activate %d slots in group with %d of %d active", n, g.size, g.capacity))
	}
	r := Range{Begin: g.size, End: g.size + n}
	g.size += n
	return r
}

// Deactivate removes the active slots at the given offsets by swapping each
// with the last active slot. It returns every offset whose content changed
// and the range that became inactive.
func (g *Group) Deactivate(offsets []int) ([]int, Range) {
	sorted := append([]int(nil), offsets...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for i, m := range sorted {
		if m < 0 || m >= g.size {
			panic(fmt.Sprintf("space: deactivating inactive offset %d (size %d)", m, g.size))
		}
		if i > 0 && sorted[i-1] == m {
			panic(fmt.Sprintf("space: offset %d deactivated twice", m))
		}
	}

	old := g.size
	touched := make([]int, 0, 2*len(sorted))
	for _, m := range sorted {
		last := g.size - 1
		if m != last {
			g.view[m], g.view[last] = g.view[last], g.view[m]
			touched = append(touched, m)
		}
		touched = append(touched, last)
		g.size--
	}
	return touched, Range{Begin: g.size, End: old}
}

func (g *Group) rebase(p []Particle) {
	g.view = p[g.begin : g.begin+g.capacity : g.begin+g.capacity]
}
