package mc_test

import (
	"errors"
	"math"

	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
	"gonum.org/v1/gonum/spatial/r3"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// fixedMove shifts particle 0 and reports a fixed outcome.
type fixedMove struct {
	mc.Base
	proposal mc.Proposal
	err      error
}

func (m *fixedMove) Propose(sys *mc.System, _ random.Source, c *space.Change) (mc.Proposal, error) {
	c.AddGroup(space.GroupChange{Index: 0, Atoms: []int{0}})
	p := sys.Trial.Particle(0)
	p.Pos = r3.Add(p.Pos, r3.Vec{X: 0.1})
	return m.proposal, m.err
}

var _ = Describe("Base", func() {
	It("accepts downhill and rejects NaN and infinite steps", func() {
		b := mc.NewBase("test", 1)
		src := random.New(1)
		Expect(b.Decide(src, -1)).To(BeTrue())
		Expect(b.Decide(src, 0)).To(BeTrue())
		Expect(b.Decide(src, math.Inf(-1))).To(BeTrue())
		Expect(b.Decide(src, math.NaN())).To(BeFalse())
		Expect(b.Decide(src, math.Inf(1))).To(BeFalse())
	})

	DescribeTable("accepts uphill steps with frequency exp(-du)",
		func(du float64) {
			b := mc.NewBase("test", 1)
			src := random.New(42)
			const n = 200000
			hits := 0
			for i := 0; i < n; i++ {
				if b.Decide(src, du) {
					hits++
				}
			}
			want := math.Exp(-du)
			sd := math.Sqrt(want * (1 - want) / n)
			Expect(float64(hits)/n).To(BeNumerically("~", want, 5*sd))
		},
		Entry("du=0.1", 0.1),
		Entry("du=1", 1.0),
		Entry("du=3", 3.0),
	)

	It("reports zero acceptance before any trial", func() {
		b := mc.NewBase("test", 0.5)
		Expect(b.AcceptanceRatio()).To(BeZero())
		Expect(b.Info()).To(ContainSubstring("run fraction"))
	})
})

var _ = Describe("Step", func() {
	var sys *mc.System

	BeforeEach(func() {
		sys = newSalt(saltOptions{ninit: 3, reserve: 2, side: 20}, 1)
	})

	It("syncs the accepted space on acceptance", func() {
		m := &fixedMove{Base: mc.NewBase("fixed", 1), proposal: mc.Proposal{DU: -2, Displacement2: 0.01}}
		x := sys.Accepted.Particle(0).Pos.X

		du, err := mc.Step(m, sys, random.New(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(du).To(Equal(-2.0))
		Expect(sys.Accepted.Particle(0).Pos.X).NotTo(Equal(x))
		expectSynced(sys)
		Expect(m.Trials()).To(Equal(1))
		Expect(m.Accepted()).To(Equal(1))
		Expect(m.EnergyChange()).To(Equal(-2.0))
		Expect(m.MeanSquareDisplacement()).To(BeNumerically("~", 0.01, 1e-12))
	})

	It("restores the trial space on rejection", func() {
		m := &fixedMove{Base: mc.NewBase("fixed", 1), proposal: mc.Proposal{DU: math.Inf(1)}}
		before := append([]space.Particle(nil), sys.Accepted.Particles()...)

		du, err := mc.Step(m, sys, random.New(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(du).To(BeZero())
		Expect(sys.Accepted.Particles()).To(Equal(before))
		expectSynced(sys)
		Expect(m.Accepted()).To(BeZero())
	})

	It("rejects refused proposals without a test", func() {
		m := &fixedMove{Base: mc.NewBase("fixed", 1), proposal: mc.Proposal{DU: -100, Refused: true}}
		du, err := mc.Step(m, sys, random.New(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(du).To(BeZero())
		expectSynced(sys)
		Expect(m.Trials()).To(Equal(1))
	})

	It("restores the trial space and wraps proposal errors", func() {
		boom := errors.New("boom")
		m := &fixedMove{Base: mc.NewBase("fixed", 1), err: boom}
		_, err := mc.Step(m, sys, random.New(1))
		Expect(err).To(MatchError(boom))
		Expect(err.Error()).To(HavePrefix("fixed:"))
		expectSynced(sys)
	})
})

var _ = Describe("Translate", func() {
	It("keeps the running energy equal to the system energy", func() {
		sys := newSalt(saltOptions{ninit: 8, reserve: 0, side: 25}, 3)
		m := mc.NewTranslate(mc.AnyAtom, 0, 1)
		src := random.New(5)

		u := sys.Energy()
		for i := 0; i < 500; i++ {
			du, err := mc.Step(m, sys, src)
			Expect(err).NotTo(HaveOccurred())
			u += du
		}
		Expect(u).To(BeNumerically("~", sys.Energy(), 1e-8*(1+math.Abs(u))))
		expectSynced(sys)
		Expect(m.Accepted()).To(BeNumerically(">", 0))
		Expect(m.Accepted()).To(BeNumerically("<=", m.Trials()))
	})

	It("only moves the requested atom type", func() {
		sys := newSalt(saltOptions{ninit: 4, reserve: 0, side: 25}, 3)
		cl := sys.Accepted.Group(1)
		before := append([]space.Particle(nil), cl.Particles()...)

		m := mc.NewTranslate(0, 2, 1)
		src := random.New(9)
		for i := 0; i < 100; i++ {
			_, err := mc.Step(m, sys, src)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(sys.Accepted.Group(1).Particles()).To(Equal(before))
	})

	It("refuses when no particle matches", func() {
		sys := newSalt(saltOptions{ninit: 0, reserve: 2, side: 25}, 3)
		var c space.Change
		p, err := mc.NewTranslate(mc.AnyAtom, 1, 1).Propose(sys, random.New(1), &c)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Refused).To(BeTrue())
	})
})
