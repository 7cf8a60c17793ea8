package mc

import (
	"context"
	"sync"
)

// Builder creates an independent propagator for one seed.
type Builder func(seed int64) (*Propagator, error)

// Ensemble runs one propagator per seed concurrently. Runs share no mutable
// state.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// Run returns the results ordered by seed. The first error aborts the
// ensemble result.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p, err := e.build(e.seedStart + int64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = p.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
