// Package app is the composition root of pitchside.
//
// Run loads the config and preferences, opens the log file, restores the
// analysis cache and then runs two goroutines under one errgroup:
//
//	feed.Worker  ── Deltas ──▶  ui.Model (owns state.Store)
//	             ◀─ Commands ──
//
// The worker does every network call; the UI applies deltas on its tick and
// is the only writer of the store. When the UI exits the worker context is
// cancelled, background jobs drain, and the cache and prefs are saved.
//
// DumpMatchDetails is the non-interactive diagnostic used by
// -dump-match-details.
package app
