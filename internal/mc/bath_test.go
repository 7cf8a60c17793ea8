package mc_test

import (
	"errors"
	"math"

	"github.com/san-kum/mcsim/internal/core"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	chooseInsert = 0.1
	chooseRemove = 0.9
)

var _ = Describe("Bath", func() {
	newBath := func(sys *mc.System, cfg mc.BathConfig) *mc.Bath {
		b, err := mc.NewBath(cfg, sys.Catalog, sys.Accepted)
		Expect(err).NotTo(HaveOccurred())
		return b
	}

	Context("without a chemical potential", func() {
		It("is disabled and never proposes", func() {
			sys := newSalt(saltOptions{ninit: 2, reserve: 2, side: 20}, 1)
			b := newBath(sys, mc.DefaultBathConfig())

			Expect(b.Enabled()).To(BeFalse())
			Expect(b.RunFraction()).To(BeZero())
			Expect(b.Info()).To(ContainSubstring("disabled"))

			before := append([]space.Particle(nil), sys.Accepted.Particles()...)
			du, err := mc.Step(b, sys, random.New(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(du).To(BeZero())
			Expect(sys.Accepted.Particles()).To(Equal(before))
			Expect(b.Accepted()).To(BeZero())
		})
	})

	Context("configuration", func() {
		var sys *mc.System
		BeforeEach(func() {
			sys = newSalt(saltOptions{ninit: 2, reserve: 2, side: 20}, 1)
		})

		DescribeTable("rejects invalid settings",
			func(edit func(*mc.BathConfig), sentinel error) {
				cfg := mc.DefaultBathConfig()
				cfg.Mu = mu(-1)
				edit(&cfg)
				_, err := mc.NewBath(cfg, sys.Catalog, sys.Accepted)
				Expect(err).To(MatchError(sentinel))
			},
			Entry("zero trials", func(c *mc.BathConfig) { c.K = 0 }, core.ErrInvalidValue),
			Entry("unknown bond", func(c *mc.BathConfig) { c.Bond = "spring" }, core.ErrUnknownVariant),
			Entry("fene bond", func(c *mc.BathConfig) { c.Bond = "fene" }, core.ErrUnimplemented),
			Entry("harmonic bond", func(c *mc.BathConfig) { c.Bond = "harmonic" }, core.ErrUnimplemented),
			Entry("unknown atom", func(c *mc.BathConfig) { c.Counter = []string{"K"} }, core.ErrUnknownName),
			Entry("shared group", func(c *mc.BathConfig) { c.Counter = []string{"NA"} }, core.ErrInvalidValue),
		)

		It("parses records", func() {
			b, err := mc.ParseBath(core.Record{
				"index":      2,
				"mu":         -3.5,
				"k":          4,
				"polymer":    []any{"NA", "NA"},
				"counter":    "CL",
				"bond":       "none",
			}, sys.Catalog, sys.Accepted)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Enabled()).To(BeTrue())
			Expect(b.Index).To(Equal(2))
			Expect(b.Mu).To(Equal(-3.5))
			Expect(b.K).To(Equal(4))
			Expect(b.RunFraction()).To(Equal(1.0))

			info := b.Info()
			Expect(info).To(ContainSubstring("chemical potential (kT)"))
			Expect(info).To(MatchRegexp(`bond type\s+none`))
			Expect(info).To(MatchRegexp(`monomers\s+2 2`))
		})

		It("refuses to grow harmonic chains", func() {
			_, err := mc.ParseBath(core.Record{
				"mu":         -3.5,
				"polymer":    []any{"NA", "NA"},
				"counter":    "CL",
				"bond":       "harmonic",
				"bondlength": 1.2,
			}, sys.Catalog, sys.Accepted)
			Expect(err).To(MatchError(core.ErrUnimplemented))

			var pe *core.ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Key).To(Equal("bond"))
		})
	})

	Context("proposals", func() {
		It("uses the exact ideal gas acceptance ratio for insertion", func() {
			sys := newSalt(saltOptions{ninit: 3, reserve: 5, side: 10, ideal: true}, 1)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(-2)
			b := newBath(sys, cfg)

			var c space.Change
			p, err := b.Propose(sys, &scripted{Source: random.New(1), queue: []float64{chooseInsert}}, &c)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Refused).To(BeFalse())
			Expect(p.Label).To(Equal("insert"))
			Expect(p.DU).To(BeZero())

			lnAcc := -2 + 2*math.Log(1000) - math.Log(4) - math.Log(4)
			Expect(p.DU + p.Bias).To(BeNumerically("~", -lnAcc, 1e-12))
			sys.Trial.Sync(sys.Accepted, &c)
		})

		It("uses the exact ideal gas acceptance ratio for removal", func() {
			sys := newSalt(saltOptions{ninit: 3, reserve: 5, side: 10, ideal: true}, 1)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(-2)
			cfg.K = 3
			b := newBath(sys, cfg)

			var c space.Change
			p, err := b.Propose(sys, &scripted{Source: random.New(1), queue: []float64{chooseRemove}}, &c)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Label).To(Equal("remove"))

			lnAcc := 2 - 2*math.Log(1000) + math.Log(3) + math.Log(3)
			Expect(p.DU + p.Bias).To(BeNumerically("~", -lnAcc, 1e-12))
			Expect(sys.Trial.Group(0).Len()).To(Equal(2))
			sys.Trial.Sync(sys.Accepted, &c)
			expectSynced(sys)
		})

		DescribeTable("reports an energy change matching the local energy",
			func(choice float64) {
				sys := newSalt(saltOptions{ninit: 6, reserve: 6, side: 18}, 4)
				cfg := mc.DefaultBathConfig()
				cfg.Mu = mu(-1)
				cfg.K = 5
				cfg.Polymer = []string{"NA", "NA"}
				b := newBath(sys, cfg)

				var c space.Change
				p, err := b.Propose(sys, &scripted{Source: random.New(8), queue: []float64{choice}}, &c)
				Expect(err).NotTo(HaveOccurred())
				Expect(p.Refused).To(BeFalse())
				want := sys.DeltaEnergy(&c)
				Expect(p.DU).To(BeNumerically("~", want, 1e-8*(1+math.Abs(want))))
				sys.Trial.Sync(sys.Accepted, &c)
				expectSynced(sys)
			},
			Entry("insert", chooseInsert),
			Entry("remove", chooseRemove),
		)

		It("keeps inserted particles inside the primary cell", func() {
			sys := newSalt(saltOptions{ninit: 2, reserve: 30, side: 12, ideal: true}, 6)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(-2)
			cfg.K = 3
			b := newBath(sys, cfg)

			geo := sys.Accepted.Geometry()
			src := random.New(14)
			for i := 0; i < 300; i++ {
				_, err := mc.Step(b, sys, src)
				Expect(err).NotTo(HaveOccurred())
			}
			_, ins := b.Counts("insert")
			Expect(ins).To(BeNumerically(">", 0))
			for _, g := range sys.Accepted.Groups() {
				for i := g.Begin(); i < g.End(); i++ {
					pos := sys.Accepted.Particle(i).Pos
					Expect(geo.Collision(pos)).To(BeFalse())
					Expect(geo.Boundary(pos)).To(Equal(pos))
				}
			}
		})

		It("refuses insertion into a full group", func() {
			sys := newSalt(saltOptions{ninit: 3, reserve: 0, side: 10}, 1)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(0)
			b := newBath(sys, cfg)

			var c space.Change
			p, err := b.Propose(sys, &scripted{Source: random.New(1), queue: []float64{chooseInsert}}, &c)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Refused).To(BeTrue())
		})

		It("refuses removal below the valency", func() {
			sys := newSalt(saltOptions{ninit: 1, reserve: 4, side: 10}, 1)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(0)
			cfg.Polymer = []string{"NA", "NA"}
			b := newBath(sys, cfg)

			var c space.Change
			p, err := b.Propose(sys, &scripted{Source: random.New(1), queue: []float64{chooseRemove}}, &c)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Refused).To(BeTrue())
		})
	})

	Context("sampling", func() {
		It("balances particle numbers with accepted insertions and removals", func() {
			sys := newSalt(saltOptions{ninit: 6, reserve: 20, side: 20}, 2)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(-4)
			cfg.K = 4
			cfg.Polymer = []string{"NA", "NA"}
			b := newBath(sys, cfg)

			src := random.New(11)
			u := sys.Energy()
			for i := 0; i < 2000; i++ {
				du, err := mc.Step(b, sys, src)
				Expect(err).NotTo(HaveOccurred())
				u += du
			}
			_, ins := b.Counts("insert")
			_, rem := b.Counts("remove")
			Expect(ins + rem).To(BeNumerically(">", 0))

			Expect(sys.Accepted.Group(0).Len()).To(Equal(6 + 2*(ins-rem)))
			Expect(sys.Accepted.Group(1).Len()).To(Equal(6 + (ins - rem)))
			Expect(u).To(BeNumerically("~", sys.Energy(), 1e-8*(1+math.Abs(u))))
			expectSynced(sys)
		})

		It("samples the ideal gas particle number distribution", func() {
			// P(N) ∝ z^N/(N!)², z = exp(mu)·V², has mean √z·I1(2√z)/I0(2√z).
			const side = 10.0
			z := 100.0
			sys := newSalt(saltOptions{ninit: 10, reserve: 40, side: side, ideal: true}, 3)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(math.Log(z) - 2*math.Log(side*side*side))
			b := newBath(sys, cfg)

			src := random.New(12)
			var sum float64
			const n = 40000
			for i := 0; i < n; i++ {
				_, err := mc.Step(b, sys, src)
				Expect(err).NotTo(HaveOccurred())
				sum += float64(sys.Accepted.Group(0).Len())
			}
			Expect(sum/n).To(BeNumerically("~", 9.75, 0.5))
		})

		It("samples the ideal gas distribution of a two monomer polymer", func() {
			// Inserting k polymers from the initial state weights it by
			// z^k/(Na!·Cl!) with Na = 4+2k, Cl = 4+k and z = exp(mu)·V³.
			const side = 10.0
			lnz := math.Log(1e4)
			sys := newSalt(saltOptions{ninit: 4, reserve: 30, side: side, ideal: true}, 5)
			cfg := mc.DefaultBathConfig()
			cfg.Mu = mu(lnz - 3*math.Log(side*side*side))
			cfg.Polymer = []string{"NA", "NA"}
			b := newBath(sys, cfg)

			var norm, want float64
			for k := -2; 4+2*k <= 34; k++ {
				na, _ := math.Lgamma(float64(4+2*k) + 1)
				nb, _ := math.Lgamma(float64(4+k) + 1)
				w := math.Exp(float64(k)*lnz - na - nb)
				norm += w
				want += w * float64(4+k)
			}
			want /= norm

			src := random.New(13)
			var sum float64
			const n = 40000
			for i := 0; i < n; i++ {
				_, err := mc.Step(b, sys, src)
				Expect(err).NotTo(HaveOccurred())
				sum += float64(sys.Accepted.Group(1).Len())
			}
			Expect(sys.Accepted.Group(0).Len()).To(Equal(2*sys.Accepted.Group(1).Len() - 4))
			Expect(sum/n).To(BeNumerically("~", want, 0.5))
		})
	})
})
