// Package mc implements the Metropolis Monte Carlo moves and the loop that
// drives them.
//
// Every move works on a [System]: a trial space that moves mutate and an
// accepted space that only changes through [space.Space.Sync]. A move
// proposes a mutation of the trial space, records it in a [space.Change] and
// returns a [Proposal]. [Step] then runs the Metropolis test on
// DU + Bias and either syncs the accepted space from the trial space or
// restores the trial space from the accepted one.
//
// Available moves:
//
//   - [Translate]: single particle displacement
//   - [MoleculeTranslate]: rigid translation of one molecule
//   - [Bath]: grand canonical salt insertion and removal with Rosenbluth
//     sampling
//
// A [Propagator] selects moves by run fraction for macro × micro steps and
// tracks the running energy against a full recomputation. [Ensemble] runs
// independent propagators for a range of seeds.
package mc
