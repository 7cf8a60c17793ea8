package mc_test

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/random"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type countingObserver struct {
	macros []int
}

func (o *countingObserver) OnMacroStep(s mc.Sample) { o.macros = append(o.macros, s.Macro) }

type lastEnergy struct{ u float64 }

func (m *lastEnergy) Name() string        { return "last_energy" }
func (m *lastEnergy) Observe(s mc.Sample) { m.u = s.Energy }
func (m *lastEnergy) Value() float64      { return m.u }
func (m *lastEnergy) Reset()              { m.u = 0 }

func newPropagator(seed int64) *mc.Propagator {
	sys := newSalt(saltOptions{ninit: 5, reserve: 10, side: 30}, seed)
	p := mc.NewPropagator(sys, random.New(seed), nil)
	p.AddMove(mc.NewTranslate(mc.AnyAtom, 2, 1))
	cfg := mc.DefaultBathConfig()
	cfg.Mu = mu(-12)
	cfg.K = 3
	b, err := mc.NewBath(cfg, sys.Catalog, sys.Accepted)
	Expect(err).NotTo(HaveOccurred())
	p.AddMove(b)
	return p
}

var _ = Describe("Propagator", func() {
	It("runs macro × micro steps and tracks the energy", func() {
		p := newPropagator(1)
		obs := &countingObserver{}
		metric := &lastEnergy{}
		p.AddObserver(obs)
		p.AddMetric(metric)

		res, err := p.Run(context.Background(), mc.Config{Macro: 4, Micro: 50})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.MacroSteps).To(Equal(4))
		Expect(res.Energies).To(HaveLen(4))
		Expect(res.ActiveCounts).To(HaveLen(4))
		Expect(obs.macros).To(Equal([]int{0, 1, 2, 3}))
		Expect(res.Metrics).To(HaveKeyWithValue("last_energy", res.Energies[3]))
		Expect(math.Abs(res.Drift)).To(BeNumerically("<", 1e-8))

		trials := 0
		for _, m := range res.Moves {
			trials += m.Trials
		}
		Expect(trials).To(Equal(200))
		Expect(res.Moves[1].Info).To(ContainSubstring("chemical potential"))
		expectSynced(p.System())
	})

	It("never selects a move with zero run fraction", func() {
		p := newPropagator(2)
		disabled, err := mc.NewBath(mc.DefaultBathConfig(), p.System().Catalog, p.System().Accepted)
		Expect(err).NotTo(HaveOccurred())
		p.AddMove(disabled)

		for i := 0; i < 500; i++ {
			Expect(p.Select()).NotTo(BeIdenticalTo(disabled))
		}
	})

	It("fails without enabled moves", func() {
		sys := newSalt(saltOptions{ninit: 2, reserve: 2, side: 20}, 1)
		p := mc.NewPropagator(sys, random.New(1), nil)
		b, err := mc.NewBath(mc.DefaultBathConfig(), sys.Catalog, sys.Accepted)
		Expect(err).NotTo(HaveOccurred())
		p.AddMove(b)

		_, err = p.Run(context.Background(), mc.Config{Macro: 1, Micro: 1})
		Expect(err).To(MatchError(mc.ErrNoMoves))
	})

	It("validates the step counts", func() {
		_, err := newPropagator(1).Run(context.Background(), mc.Config{Macro: 0, Micro: 10})
		Expect(err).To(HaveOccurred())
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := newPropagator(1).Run(ctx, mc.Config{Macro: 10, Micro: 10})
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.MacroSteps).To(BeZero())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one independent propagator per seed", func() {
		e := mc.NewEnsemble(func(seed int64) (*mc.Propagator, error) {
			defer GinkgoRecover()
			return newPropagator(seed), nil
		}, 3, 10)

		results, err := e.Run(context.Background(), mc.Config{Macro: 2, Micro: 20})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.MacroSteps).To(Equal(2))
		}
		Expect(results[0].InitialEnergy).NotTo(Equal(results[1].InitialEnergy))
	})

	It("returns builder errors", func() {
		boom := errors.New("boom")
		e := mc.NewEnsemble(func(int64) (*mc.Propagator, error) { return nil, boom }, 2, 0)
		_, err := e.Run(context.Background(), mc.Config{Macro: 1, Micro: 1})
		Expect(err).To(MatchError(boom))
	})
})
