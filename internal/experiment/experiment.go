package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/mcsim/internal/atoms"
	"github.com/san-kum/mcsim/internal/config"
	"github.com/san-kum/mcsim/internal/energy"
	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/mc"
	"github.com/san-kum/mcsim/internal/potential"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
)

var errNotSetup = errors.New("experiment not setup")

type Experiment struct {
	cfg        *config.Config
	registry   *Registry
	log        logging.Logger
	propagator *mc.Propagator
}

func New(cfg *config.Config, log logging.Logger) *Experiment {
	if log == nil {
		log = logging.NewNop()
	}
	return &Experiment{cfg: cfg, registry: NewRegistry(), log: log}
}

// Setup builds the propagator for the configured seed.
func (e *Experiment) Setup() error {
	p, err := e.Build(e.cfg.Seed)
	if err != nil {
		return err
	}
	e.propagator = p
	return nil
}

// Build assembles an independent propagator seeded with seed: catalog,
// populated space, Hamiltonian, moves and the default metrics.
func (e *Experiment) Build(seed int64) (*mc.Propagator, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	geo, err := e.registry.GetGeometry(e.cfg.Geometry)
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	cat, err := atoms.Parse(e.cfg.Atoms, e.cfg.Molecules)
	if err != nil {
		return nil, err
	}

	src := random.New(seed)
	s := space.New(geo)
	if err := s.Populate(cat, src); err != nil {
		return nil, fmt.Errorf("populate: %w", err)
	}
	e.log.Debugf("populated %s with %d particles in %d groups", s.Geometry().Name(), s.NumParticles(), s.NumGroups())

	pair, err := potential.ParseCombined(e.cfg.Energy, cat)
	if err != nil {
		return nil, err
	}
	h, err := energy.New(pair, cat)
	if err != nil {
		return nil, err
	}

	sys := mc.NewSystem(s, h, cat)
	p := mc.NewPropagator(sys, src, e.log)
	for i, rec := range e.cfg.Moves {
		m, err := e.registry.GetMove(rec, cat, sys.Accepted)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i, err)
		}
		p.AddMove(m)
	}
	for _, m := range e.registry.DefaultMetrics(cat, p.Moves()) {
		p.AddMetric(m)
	}

	e.log.Infof("seed %d: energy %s, %d moves", seed, h.Name(), len(p.Moves()))
	return p, nil
}

func (e *Experiment) Run(ctx context.Context) (*mc.Result, error) {
	if e.propagator == nil {
		return nil, errNotSetup
	}
	return e.propagator.Run(ctx, e.runConfig())
}

// RunEnsemble runs n independent copies seeded from the configured seed
// upwards.
func (e *Experiment) RunEnsemble(ctx context.Context, n int) ([]*mc.Result, error) {
	return mc.NewEnsemble(e.Build, n, e.cfg.Seed).Run(ctx, e.runConfig())
}

func (e *Experiment) Propagator() *mc.Propagator {
	return e.propagator
}

func (e *Experiment) runConfig() mc.Config {
	return mc.Config{Macro: e.cfg.Macro, Micro: e.cfg.Micro}
}
