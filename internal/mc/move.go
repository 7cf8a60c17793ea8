package mc

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/energy"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
)

// System is the trial/accepted pair of spaces and the energy function moves
// evaluate.
type System struct {
	Trial       *space.Space
	Accepted    *space.Space
	Hamiltonian *energy.Hamiltonian
	Catalog     *atoms.Catalog

	change space.Change
}

// NewSystem uses s as the accepted space and a deep copy of it as the trial.
func NewSystem(s *space.Space, h *energy.Hamiltonian, cat *atoms.Catalog) *System {
	return &System{
		Trial:       s.Clone(),
		Accepted:    s,
		Hamiltonian: h,
		Catalog:     cat,
	}
}

// Energy returns the total energy of the accepted space.
func (s *System) Energy() float64 {
	return s.Hamiltonian.SystemEnergy(s.Accepted)
}

// DeltaEnergy is the energy change described by c between the trial and the
// accepted space.
func (s *System) DeltaEnergy(c *space.Change) float64 {
	return s.Hamiltonian.ChangeEnergy(s.Trial, c) - s.Hamiltonian.ChangeEnergy(s.Accepted, c)
}

// Proposal is the outcome of proposing a move. The Metropolis test runs on
// DU + Bias. A refused proposal is rejected without a test.
type Proposal struct {
	DU      float64
	Bias    float64
	Refused bool
	// Label names the kind of proposal for per-kind counters, e.g. "insert".
	Label string
	// Displacement2 is the squared displacement accumulated on acceptance.
	Displacement2 float64
}

// Move is a Monte Carlo move.
type Move interface {
	Name() string
	RunFraction() float64
	Propose(sys *System, src random.Source, c *space.Change) (Proposal, error)
	Info() string
	Stats() *Base
}

// Base holds the name, run fraction and counters every move shares.
type Base struct {
	name        string
	runFraction float64

	trials   int
	accepted int
	utot     float64
	msd      float64

	labelTrials   map[string]int
	labelAccepted map[string]int
}

// NewBase returns a Base with the given name and run fraction.
func NewBase(name string, runFraction float64) Base {
	return Base{name: name, runFraction: runFraction}
}

func (b *Base) Name() string          { return b.name }
func (b *Base) RunFraction() float64  { return b.runFraction }
func (b *Base) Stats() *Base          { return b }
func (b *Base) Trials() int           { return b.trials }
func (b *Base) Accepted() int         { return b.accepted }
func (b *Base) EnergyChange() float64 { return b.utot }

// Decide is the Metropolis test: du <= 0 is always accepted, otherwise with
// probability exp(-du). NaN is rejected.
func (b *Base) Decide(src random.Source, du float64) bool {
	if math.IsNaN(du) {
		return false
	}
	if du <= 0 {
		return true
	}
	return src.Float64() < math.Exp(-du)
}

// AcceptanceRatio returns accepted/trials, or 0 before the first trial.
func (b *Base) AcceptanceRatio() float64 {
	if b.trials == 0 {
		return 0
	}
	return float64(b.accepted) / float64(b.trials)
}

// MeanSquareDisplacement is the mean squared displacement per trial.
func (b *Base) MeanSquareDisplacement() float64 {
	if b.trials == 0 {
		return 0
	}
	return b.msd / float64(b.trials)
}

// Counts returns the trials and acceptances of proposals with label.
func (b *Base) Counts(label string) (trials, accepted int) {
	return b.labelTrials[label], b.labelAccepted[label]
}

// Reset zeroes every counter.
func (b *Base) Reset() {
	b.trials, b.accepted = 0, 0
	b.utot, b.msd = 0, 0
	b.labelTrials, b.labelAccepted = nil, nil
}

func (b *Base) record(p Proposal, accepted bool) {
	b.trials++
	if p.Label != "" {
		if b.labelTrials == nil {
			b.labelTrials = make(map[string]int)
			b.labelAccepted = make(map[string]int)
		}
		b.labelTrials[p.Label]++
	}
	if !accepted {
		return
	}
	b.accepted++
	b.utot += p.DU
	b.msd += p.Displacement2
	if p.Label != "" {
		b.labelAccepted[p.Label]++
	}
}

// Info formats the counters as an indented block.
func (b *Base) Info() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", b.name)
	fmt.Fprintf(&sb, "  %-24s %g\n", "run fraction", b.runFraction)
	fmt.Fprintf(&sb, "  %-24s %d\n", "trials", b.trials)
	fmt.Fprintf(&sb, "  %-24s %.4f\n", "acceptance", b.AcceptanceRatio())
	fmt.Fprintf(&sb, "  %-24s %.6g\n", "energy change (kT)", b.utot)
	if b.msd > 0 {
		fmt.Fprintf(&sb, "  %-24s %.6g\n", "msd (Å²)", b.MeanSquareDisplacement())
	}

	labels := make([]string, 0, len(b.labelTrials))
	for l := range b.labelTrials {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(&sb, "  %-24s %d/%d\n", l+" accepted", b.labelAccepted[l], b.labelTrials[l])
	}
	return sb.String()
}

// Step proposes m on sys.Trial and runs the Metropolis test. On acceptance
// the accepted space is synced from the trial and the energy change is
// returned; otherwise the trial is restored and Step returns 0.
func Step(m Move, sys *System, src random.Source) (float64, error) {
	c := &sys.change
	defer c.Clear()

	b := m.Stats()
	p, err := m.Propose(sys, src, c)
	if err != nil {
		sys.Trial.Sync(sys.Accepted, c)
		return 0, fmt.Errorf("%s: %w", m.Name(), err)
	}

	if !p.Refused && b.Decide(src, p.DU+p.Bias) {
		sys.Accepted.Sync(sys.Trial, c)
		b.record(p, true)
		return p.DU, nil
	}

	sys.Trial.Sync(sys.Accepted, c)
	b.record(p, false)
	return 0, nil
}
