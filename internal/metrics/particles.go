package metrics

import (
	"github.com/san-kum/mcsim/internal/mc"
	"gonum.org/v1/gonum/stat"
)

// ParticleCount is the mean number of active particles in groups of one
// molecule type.
type ParticleCount struct {
	name     string
	molecule int
	samples  []float64
}

func NewParticleCount(molecule int, label string) *ParticleCount {
	return &ParticleCount{name: "count_" + label, molecule: molecule}
}

func (p *ParticleCount) Name() string {
	return p.name
}

func (p *ParticleCount) Observe(s mc.Sample) {
	n := 0
	for _, g := range s.Space.FindGroupsByType(p.molecule) {
		n += g.Len()
	}
	p.samples = append(p.samples, float64(n))
}

func (p *ParticleCount) Value() float64 {
	if len(p.samples) == 0 {
		return 0
	}
	return stat.Mean(p.samples, nil)
}

func (p *ParticleCount) Reset() {
	p.samples = p.samples[:0]
}
