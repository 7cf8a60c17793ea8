package mc

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/mcsim/internal/logging"
	"github.com/san-kum/mcsim/internal/random"
	"github.com/san-kum/mcsim/internal/space"
)

// ErrNoMoves is returned when no move has a positive run fraction.
var ErrNoMoves = errors.New("mc: no enabled moves")

// Sample is the state handed to metrics and observers after a macro step.
type Sample struct {
	Macro int
	// Energy is the running energy, the initial energy plus every accepted
	// change.
	Energy float64
	// Drift is Energy minus a full recomputation on the accepted space.
	Drift float64
	Space *space.Space
	Moves []Move
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnMacroStep(s Sample)
}

// Config sets the number of steps. Each of the Macro × Micro steps runs one
// move.
type Config struct {
	Macro int
	Micro int
}

// MoveResult summarises one move after a run.
type MoveResult struct {
	Name       string
	Trials     int
	Accepted   int
	Acceptance float64
	Info       string
}

// Result is the outcome of a run.
type Result struct {
	MacroSteps    int
	Energies      []float64
	ActiveCounts  []int
	InitialEnergy float64
	FinalEnergy   float64
	// Drift is the relative difference between the running and the
	// recomputed final energy.
	Drift   float64
	Metrics map[string]float64
	Moves   []MoveResult
}

// Propagator selects moves with probability proportional to their run
// fraction and steps them on one system.
type Propagator struct {
	sys       *System
	src       random.Source
	log       logging.Logger
	moves     []Move
	metrics   []Metric
	observers []Observer
}

func NewPropagator(sys *System, src random.Source, log logging.Logger) *Propagator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Propagator{
		sys:       sys,
		src:       src,
		log:       log,
		moves:     make([]Move, 0),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (p *Propagator) AddMove(m Move)         { p.moves = append(p.moves, m) }
func (p *Propagator) AddMetric(m Metric)     { p.metrics = append(p.metrics, m) }
func (p *Propagator) AddObserver(o Observer) { p.observers = append(p.observers, o) }

func (p *Propagator) System() *System { return p.sys }
func (p *Propagator) Moves() []Move   { return p.moves }

// Select returns a move chosen by run fraction, or nil if none is enabled.
func (p *Propagator) Select() Move {
	weights := make([]float64, len(p.moves))
	for i, m := range p.moves {
		weights[i] = m.RunFraction()
	}
	i := random.Pick(p.src, weights)
	if i < 0 {
		return nil
	}
	return p.moves[i]
}

// Run performs cfg.Macro × cfg.Micro move steps. Cancellation is checked
// between steps; the partial result is returned with the context error.
func (p *Propagator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	weights := 0.0
	for _, m := range p.moves {
		weights += m.RunFraction()
	}
	if weights <= 0 {
		return nil, ErrNoMoves
	}

	for _, m := range p.metrics {
		m.Reset()
	}

	u := p.sys.Energy()
	result := &Result{
		Energies:      make([]float64, 0, cfg.Macro),
		ActiveCounts:  make([]int, 0, cfg.Macro),
		InitialEnergy: u,
		Metrics:       make(map[string]float64),
	}
	p.log.Infof("starting %d x %d steps with %d moves, initial energy %.6g kT", cfg.Macro, cfg.Micro, len(p.moves), u)

	var runErr error
loop:
	for macro := 0; macro < cfg.Macro; macro++ {
		for micro := 0; micro < cfg.Micro; micro++ {
			select {
			case <-ctx.Done():
				runErr = ctx.Err()
				break loop
			default:
			}

			m := p.Select()
			du, err := Step(m, p.sys, p.src)
			if err != nil {
				runErr = fmt.Errorf("macro step %d: %w", macro, err)
				break loop
			}
			u += du
		}

		sample := Sample{
			Macro:  macro,
			Energy: u,
			Drift:  u - p.sys.Energy(),
			Space:  p.sys.Accepted,
			Moves:  p.moves,
		}
		for _, m := range p.metrics {
			m.Observe(sample)
		}
		for _, o := range p.observers {
			o.OnMacroStep(sample)
		}
		result.Energies = append(result.Energies, u)
		result.ActiveCounts = append(result.ActiveCounts, p.sys.Accepted.ActiveCount())
		result.MacroSteps++
		p.log.Debugf("macro %d: energy %.6g kT, drift %.3g", macro, u, sample.Drift)
	}

	result.FinalEnergy = p.sys.Energy()
	result.Drift = relativeDrift(u, result.FinalEnergy)
	if math.Abs(result.Drift) > 1e-6 {
		p.log.Warnf("energy drift %.3g between running and recomputed energy", result.Drift)
	}

	for _, m := range p.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	for _, m := range p.moves {
		b := m.Stats()
		result.Moves = append(result.Moves, MoveResult{
			Name:       m.Name(),
			Trials:     b.Trials(),
			Accepted:   b.Accepted(),
			Acceptance: b.AcceptanceRatio(),
			Info:       m.Info(),
		})
	}
	p.log.Infof("finished %d macro steps, final energy %.6g kT", result.MacroSteps, result.FinalEnergy)
	return result, runErr
}

func validateConfig(cfg Config) error {
	if cfg.Macro <= 0 {
		return fmt.Errorf("macro steps must be positive, got %d", cfg.Macro)
	}
	if cfg.Micro <= 0 {
		return fmt.Errorf("micro steps must be positive, got %d", cfg.Micro)
	}
	return nil
}

func relativeDrift(running, exact float64) float64 {
	if exact == 0 {
		return running
	}
	return (running - exact) / math.Abs(exact)
}
