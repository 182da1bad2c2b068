// Package state holds the Pitchside entity store and the closed sets of
// messages that cross the worker boundary.
//
// # Overview
//
// The Store is owned by exactly one goroutine: the presentation consumer.
// The background worker never touches it. Instead the worker emits Delta
// values and the consumer folds them into the store with Apply, strictly in
// emission order:
//
//	Worker goroutine:              Consumer goroutine:
//	┌──────────────────┐           ┌────────────────────┐
//	│ fetch / tick     │  Delta    │ drain queue        │
//	│   ↓              │──────────→│ Apply(store, d)    │
//	│ emit Delta       │           │ RecomputeRankings  │
//	│                  │←──────────│ emit Command       │
//	└──────────────────┘  Command  └────────────────────┘
//
// Both queues are unbounded and ordered (see package queue). Because the
// store has a single writer there are no locks in this package.
//
// # Deltas
//
// Apply is total: every Delta variant is accepted for every store shape, and
// deltas that no longer make sense (a SetAnalysis for a league the user has
// since left, a network result for the placeholder match) are dropped
// silently. Apply performs no I/O, never blocks and never reads the clock;
// deltas carry their own timestamps, so replaying a sequence from the same
// initial store always produces the same result.
//
// # Placeholder
//
// PlaceholderMatchID names a synthetic demo match that only the user can
// create or remove. While it is enabled, a SetMatches delta replaces every
// real match and then re-inserts the placeholder and its pinned detail.
// Detail and event deltas for the placeholder id are ignored.
//
// # Rankings
//
// Rankings are derived from the analysis team list plus the cached squads
// and player details. Any delta that changes those inputs sets
// RankingsDirty. RecomputeRankings is a no-op while the team list is empty
// and leaves the flag set, so the first recompute after data arrives always
// runs regardless of the order in which the league switch and the analysis
// fetch were observed.
package state
