package mc

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/bond"
	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/geometry"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// BathConfig configures a salt bath move.
type BathConfig struct {
	Index int
	// Mu is the chemical potential in kT. Nil disables the move.
	Mu *float64
	// K is the number of Rosenbluth trial positions per particle.
	K       int
	Polymer []string
	Counter []string
	// Bond tags the polymer connectivity. Only "none" is supported: every
	// monomer is placed independently in the container.
	Bond        string
	RunFraction float64
}

// DefaultBathConfig returns a disabled bath inserting NA/CL pairs.
func DefaultBathConfig() BathConfig {
	return BathConfig{
		K:           1,
		Polymer:     []string{"NA"},
		Counter:     []string{"CL"},
		Bond:        "none",
		RunFraction: 1,
	}
}

type species struct {
	names []string
	atoms []int
	group int
}

// Bath inserts or removes one polymer together with its counter ions using
// configurational bias (Rosenbluth) sampling. Insertion and removal are
// chosen with equal probability. Each inserted particle is placed at one of
// K trial positions chosen with probability proportional to exp(-u).
type Bath struct {
	Base
	Index int
	Mu    float64
	K     int
	Bond  bond.Kind

	enabled bool
	polymer species
	counter species
	spc     *space.Space

	weights   []float64
	energies  []float64
	positions []r3.Vec
}

// NewBath resolves the species of cfg against cat and the groups of s. The
// polymer and counter ion groups are the first groups of the atomic
// molecule types holding the first atom of each sequence.
func NewBath(cfg BathConfig, cat *atoms.Catalog, s *space.Space) (*Bath, error) {
	b := &Bath{
		Base:  NewBase("bath", 0),
		Index: cfg.Index,
		K:     cfg.K,
		spc:   s,
	}
	if cfg.Mu == nil {
		return b, nil
	}
	b.Mu = *cfg.Mu
	b.enabled = true
	b.runFraction = cfg.RunFraction

	if b.K < 1 {
		return nil, core.Errorf("k", core.ErrInvalidValue, "need at least one trial position, got %d", b.K)
	}
	kind, ok := bond.ParseKind(cfg.Bond)
	if !ok {
		return nil, core.Errorf("bond", core.ErrUnknownVariant, "bath bond type %q", cfg.Bond)
	}
	// Monomers are placed independently. Grown chains are not reversible here.
	if kind != bond.None {
		return nil, core.Errorf("bond", core.ErrUnimplemented, "bath insertion of %s bonded polymers", kind)
	}
	b.Bond = kind

	var err error
	if b.polymer, err = resolveSpecies("polymer", cfg.Polymer, cat, s); err != nil {
		return nil, err
	}
	if b.counter, err = resolveSpecies("counter", cfg.Counter, cat, s); err != nil {
		return nil, err
	}
	if b.polymer.group == b.counter.group {
		return nil, core.Errorf("counter", core.ErrInvalidValue, "polymer and counter ions share group %d", b.polymer.group)
	}

	b.weights = make([]float64, b.K)
	b.energies = make([]float64, b.K)
	b.positions = make([]r3.Vec, b.K)
	return b, nil
}

func resolveSpecies(key string, names []string, cat *atoms.Catalog, s *space.Space) (species, error) {
	if len(names) == 0 {
		return species{}, core.Errorf(key, core.ErrMissingField, "empty particle sequence")
	}
	sp := species{names: slices.Clone(names), atoms: make([]int, len(names)), group: -1}
	for i, n := range names {
		a, ok := cat.AtomByName(n)
		if !ok {
			return species{}, core.Errorf(key, core.ErrUnknownName, "atom %q", n)
		}
		sp.atoms[i] = a.ID
	}
	m, ok := cat.MoleculeWithAtom(names[0])
	if !ok {
		return species{}, core.Errorf(key, core.ErrUnknownName, "no atomic molecule holds %q", names[0])
	}
	for gi := range s.FindGroupsByType(m.ID) {
		sp.group = gi
		break
	}
	if sp.group < 0 {
		return species{}, core.Errorf(key, core.ErrInvalidValue, "molecule %q has no group in the space", m.Name)
	}
	return sp, nil
}

// Enabled reports whether a chemical potential was given.
func (b *Bath) Enabled() bool { return b.enabled }

func (b *Bath) Propose(sys *System, src random.Source, c *space.Change) (Proposal, error) {
	if !b.enabled {
		return Proposal{Refused: true}, nil
	}
	if src.Float64() < 0.5 {
		return b.insert(sys, src, c), nil
	}
	return b.remove(sys, src, c), nil
}

// valency is the total number of particles inserted or removed per move.
func (b *Bath) valency() int { return len(b.polymer.atoms) + len(b.counter.atoms) }

func (b *Bath) insert(sys *System, src random.Source, c *space.Change) Proposal {
	s := sys.Trial
	pg, cg := s.Group(b.polymer.group), s.Group(b.counter.group)
	va, vb := len(b.polymer.atoms), len(b.counter.atoms)
	na, nb := pg.Len(), cg.Len()
	if pg.Capacity()-na < va || cg.Capacity()-nb < vb {
		return Proposal{Refused: true, Label: "insert"}
	}

	ra, rb := pg.Activate(va), cg.Activate(vb)
	c.AddGroup(space.GroupChange{Index: b.polymer.group, Activated: []space.Range{ra}})
	c.AddGroup(space.GroupChange{Index: b.counter.group, Activated: []space.Range{rb}})

	slots := make([]int, 0, va+vb)
	for l := ra.Begin; l < ra.End; l++ {
		slots = append(slots, pg.Begin()+l)
	}
	for l := rb.Begin; l < rb.End; l++ {
		slots = append(slots, cg.Begin()+l)
	}
	ids := append(slices.Clone(b.polymer.atoms), b.counter.atoms...)

	var du, lnW float64
	for l, i := range slots {
		pending := slots[l:]
		exclude := func(j int) bool { return slices.Contains(pending, j) }
		p := s.Particle(i)
		*p = space.NewParticle(sys.Catalog.Atom(ids[l]), r3.Vec{})

		for j := range b.weights {
			b.positions[j] = trialPosition(s.Geometry(), src)
			p.Pos = b.positions[j]
			b.sample(sys, j, p, exclude)
		}
		w := floats.Sum(b.weights)
		if !(w > 0) || math.IsInf(w, 1) {
			return Proposal{Refused: true, Label: "insert"}
		}
		pick := random.Pick(src, b.weights)
		p.Pos = b.positions[pick]
		du += b.energies[pick]
		lnW += math.Log(w / float64(b.K))
	}

	lnAcc := b.Mu + float64(b.valency())*math.Log(s.Geometry().Volume()) +
		lnFactorialRatio(na, na+va) + lnFactorialRatio(nb, nb+vb) + lnW
	return Proposal{DU: du, Bias: -lnAcc - du, Label: "insert"}
}

func (b *Bath) remove(sys *System, src random.Source, c *space.Change) Proposal {
	s := sys.Trial
	pg, cg := s.Group(b.polymer.group), s.Group(b.counter.group)
	va, vb := len(b.polymer.atoms), len(b.counter.atoms)
	na, nb := pg.Len(), cg.Len()
	if na < va || nb < vb {
		return Proposal{Refused: true, Label: "remove"}
	}

	offA, offB := pickDistinct(src, na, va), pickDistinct(src, nb, vb)
	slots := make([]int, 0, va+vb)
	for _, o := range offA {
		slots = append(slots, pg.Begin()+o)
	}
	for _, o := range offB {
		slots = append(slots, cg.Begin()+o)
	}

	var du, lnW float64
	for l, i := range slots {
		pending := slots[l:]
		exclude := func(j int) bool { return slices.Contains(pending, j) }
		p := s.Particle(i)
		ghost := *p

		b.sample(sys, 0, p, exclude)
		u0 := b.energies[0]
		for j := 1; j < b.K; j++ {
			ghost.Pos = trialPosition(s.Geometry(), src)
			b.sample(sys, j, &ghost, exclude)
		}
		w := floats.Sum(b.weights)
		if !(w > 0) || math.IsInf(w, 1) {
			return Proposal{Refused: true, Label: "remove"}
		}
		du -= u0
		lnW += math.Log(w / float64(b.K))
	}

	touched, r := pg.Deactivate(offA)
	c.AddGroup(space.GroupChange{Index: b.polymer.group, Atoms: touched, Deactivated: []space.Range{r}})
	touched, r = cg.Deactivate(offB)
	c.AddGroup(space.GroupChange{Index: b.counter.group, Atoms: touched, Deactivated: []space.Range{r}})

	lnAcc := -b.Mu - float64(b.valency())*math.Log(s.Geometry().Volume()) +
		lnFactorialRatio(na, na-va) + lnFactorialRatio(nb, nb-vb) - lnW
	return Proposal{DU: du, Bias: -lnAcc - du, Label: "remove"}
}

// trialPosition is a uniform position in geo, wrapped into the primary cell.
func trialPosition(geo geometry.Geometry, src random.Source) r3.Vec {
	return geo.Boundary(geo.RandomPosition(src))
}

// sample stores the energy and Boltzmann weight of p in trial slot j.
func (b *Bath) sample(sys *System, j int, p *space.Particle, exclude func(int) bool) {
	if sys.Trial.Geometry().Collision(p.Pos) {
		b.energies[j], b.weights[j] = math.Inf(1), 0
		return
	}
	u := sys.Hamiltonian.ParticleEnergy(sys.Trial, p, exclude)
	if math.IsNaN(u) {
		u = math.Inf(1)
	}
	b.energies[j], b.weights[j] = u, math.Exp(-u)
}

// lnFactorialRatio returns ln(n!/m!).
func lnFactorialRatio(n, m int) float64 {
	a, _ := math.Lgamma(float64(n) + 1)
	c, _ := math.Lgamma(float64(m) + 1)
	return a - c
}

// pickDistinct returns m distinct offsets drawn uniformly from [0, n).
func pickDistinct(src random.Source, n, m int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < m; i++ {
		j := i + src.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:m]
}

func (b *Bath) Info() string {
	if !b.enabled {
		return fmt.Sprintf("%s %d\n  disabled (no chemical potential)\n", b.Name(), b.Index)
	}
	var sb strings.Builder
	sb.WriteString(b.Base.Info())
	fmt.Fprintf(&sb, "  %-24s %d\n", "index", b.Index)
	fmt.Fprintf(&sb, "  %-24s %g\n", "chemical potential (kT)", b.Mu)
	fmt.Fprintf(&sb, "  %-24s %d %d\n", "monomers", len(b.polymer.atoms), b.spc.Group(b.polymer.group).Len())
	fmt.Fprintf(&sb, "  %-24s %d %d\n", "counter ions", len(b.counter.atoms), b.spc.Group(b.counter.group).Len())
	fmt.Fprintf(&sb, "  %-24s %d\n", "trials", b.K)
	fmt.Fprintf(&sb, "  %-24s %s\n", "bond type", b.Bond)
	return sb.String()
}
