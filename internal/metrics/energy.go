// Package metrics holds the observables sampled by the propagator after each
// macro step.
package metrics

import (
	"math"

	"github.com/san-kum/mcsim/internal/mc"
	"gonum.org/v1/gonum/stat"
)

// Energy is the mean sampled energy in kT.
type Energy struct {
	name    string
	samples []float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s mc.Sample) {
	e.samples = append(e.samples, s.Energy)
}

func (e *Energy) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

// StdDev is the standard deviation of the sampled energies.
func (e *Energy) StdDev() float64 {
	if len(e.samples) < 2 {
		return 0
	}
	return stat.StdDev(e.samples, nil)
}

func (e *Energy) Reset() {
	e.samples = e.samples[:0]
}

// EnergyDrift is the largest relative difference seen between the running
// energy and a full recomputation.
type EnergyDrift struct {
	name     string
	maxDrift float64
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s mc.Sample) {
	exact := s.Energy - s.Drift
	drift := math.Abs(s.Drift)
	if exact != 0 {
		drift /= math.Abs(exact)
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.maxDrift = 0
}
