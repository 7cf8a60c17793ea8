// Package core provides the shared primitives of the Monte Carlo engine.
//
// The package is the leaf every other package builds on:
//
//   - [Record]: structured key/value configuration record with typed getters
//   - [ParseError]: configuration failure identifying the offending key
//   - [ParallelFor]: chunked fan-out used by energy summation
//
// # Errors
//
// Configuration problems are reported as [*ParseError] values wrapping one of
// the sentinels [ErrMissingField], [ErrUnknownVariant] or [ErrInvalidValue]:
//
//	_, err := potential.ParsePair(rec, catalog)
//	if errors.Is(err, core.ErrMissingField) {
//	    // rec lacks a required numeric field
//	}
//
// Broken invariants (out-of-range group index, aliased spaces passed to sync)
// are programming errors and panic instead.
package core
