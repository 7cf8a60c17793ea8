package space

import "iter"

// Range is a half-open slot range relative to a group's begin.
type Range struct {
	Begin, End int
}

func (r Range) Len() int { return r.End - r.Begin }

// GroupChange describes what changed in one group. If All is set every slot
// is considered touched and Atoms is ignored.
type GroupChange struct {
	Index       int
	All         bool
	Atoms       []int
	Activated   []Range
	Deactivated []Range
}

// Change is the difference between two spaces, produced by a move and
// consumed once by Sync.
type Change struct {
	DV     float64
	Groups []GroupChange
}

// AddGroup appends gc and returns a pointer to the stored entry.
func (c *Change) AddGroup(gc GroupChange) *GroupChange {
	c.Groups = append(c.Groups, gc)
	return &c.Groups[len(c.Groups)-1]
}

// Find returns the entry for group index, or nil.
func (c *Change) Find(index int) *GroupChange {
	for i := range c.Groups {
		if c.Groups[i].Index == index {
			return &c.Groups[i]
		}
	}
	return nil
}

// TouchedGroupIndex yields the index of every touched group.
func (c *Change) TouchedGroupIndex() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, g := range c.Groups {
			if !yield(g.Index) {
				return
			}
		}
	}
}

func (c *Change) Clear() {
	c.DV = 0
	c.Groups = c.Groups[:0]
}

func (c *Change) Empty() bool {
	return len(c.Groups) == 0 && c.DV == 0
}
