package mc_test

import (
	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/energy"
	"github.com/san-kum/mcsim/internal/geometry"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/potential"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"

	. "github.com/onsi/gomega"
)

type saltOptions struct {
	ninit, reserve int
	side           float64
	ideal          bool
}

// newSalt builds an NA/CL system in a periodic cube. Group 0 holds NA and
// group 1 CL.
func newSalt(o saltOptions, seed int64) *mc.System {
	cat, err := atoms.NewCatalog(
		[]atoms.AtomType{
			{Name: "NA", Charge: 1, Sigma: 1, Eps: 0.1, Dp: 1},
			{Name: "CL", Charge: -1, Sigma: 1, Eps: 0.1, Dp: 1},
		},
		[]atoms.MoleculeType{
			{Name: "Na", Atoms: []string{"NA"}, Atomic: true, Ninit: o.ninit, Reserve: o.reserve},
			{Name: "Cl", Atoms: []string{"CL"}, Atomic: true, Ninit: o.ninit, Reserve: o.reserve},
		},
	)
	Expect(err).NotTo(HaveOccurred())

	var pair potential.Combined
	if !o.ideal {
		m, err := potential.NewMixingTable(cat, potential.LorentzBerthelot)
		Expect(err).NotTo(HaveOccurred())
		pair = potential.Add(potential.NewCoulomb(7), potential.NewWCA(m))
	}
	h, err := energy.New(pair, cat)
	Expect(err).NotTo(HaveOccurred())

	s := space.New(geometry.NewCuboid(o.side, o.side, o.side))
	Expect(s.Populate(cat, random.New(seed))).To(Succeed())
	return mc.NewSystem(s, h, cat)
}

// scripted returns the queued values from Float64 before falling back to
// the wrapped source.
type scripted struct {
	random.Source
	queue []float64
}

func (s *scripted) Float64() float64 {
	if len(s.queue) > 0 {
		v := s.queue[0]
		s.queue = s.queue[1:]
		return v
	}
	return s.Source.Float64()
}

func expectSynced(sys *mc.System) {
	Expect(sys.Trial.Particles()).To(Equal(sys.Accepted.Particles()))
	for i := range sys.Accepted.Groups() {
		Expect(sys.Trial.Group(i).Len()).To(Equal(sys.Accepted.Group(i).Len()))
	}
}

func mu(v float64) *float64 { return &v }
