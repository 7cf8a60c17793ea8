package metrics

import "github.com/san-kum/mcsim/internal/mc"

// Acceptance is the fraction of accepted trials, over every move or over
// the moves with one name.
type Acceptance struct {
	name     string
	move     string
	trials   int
	accepted int
}

// NewAcceptance tracks the moves named move, or every move when move is empty.
func NewAcceptance(move string) *Acceptance {
	name := "acceptance"
	if move != "" {
		name += "_" + move
	}
	return &Acceptance{name: name, move: move}
}

func (a *Acceptance) Name() string {
	return a.name
}

// Observe keeps the cumulative counters of the latest sample.
func (a *Acceptance) Observe(s mc.Sample) {
	a.trials, a.accepted = 0, 0
	for _, m := range s.Moves {
		if a.move != "" && m.Name() != a.move {
			continue
		}
		b := m.Stats()
		a.trials += b.Trials()
		a.accepted += b.Accepted()
	}
}

func (a *Acceptance) Value() float64 {
	if a.trials == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.trials)
}

func (a *Acceptance) Reset() {
	a.trials = 0
	a.accepted = 0
}
