// Package space holds particle configurations and their change tracking.
//
// A [Space] owns one particle slice and a list of [Group] values. Groups are
// contiguous slot ranges into that slice, stored as offsets plus a cached view
// that [Space.Rebase] re-anchors whenever the slice is reallocated.
//
// # Trial and accepted states
//
// Moves work on two independent spaces. A move mutates the trial space and
// records what it touched in a [Change]; the caller then either syncs the
// accepted space from the trial one or restores the trial from the accepted:
//
//	trial.Group(0).At(3).Pos = newPos
//	change.AddGroup(space.GroupChange{Index: 0, Atoms: []int{3}})
//	if accepted {
//	    acc.Sync(trial, &change)
//	} else {
//	    trial.Sync(acc, &change)
//	}
//	change.Clear()
//
// # Active slots
//
// A group may reserve more slots than it currently uses. Active slots are
// always the prefix of the range; deactivation swaps the removed slot with the
// last active one. Grand-canonical moves use this to insert and delete
// particles without changing the particle slice length.
package space
