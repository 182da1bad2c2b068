// Package feed implements the background worker.
//
// The worker wakes every 900ms. Each tick drains the command queue, then
// refreshes the live list when its poll interval has elapsed, advances the
// minute of live matches once a minute and otherwise nudges the estimate of
// one random live match. Results leave the worker only as state.Delta values.
//
// Detail fetches run on a bounded ants pool with one outstanding request
// per match id. Squads are fanned out with a conc result pool and squad
// members with a per-job ants pool. Failures become "[WARN]" log deltas and
// never stop the loop; nothing is retried before the next natural request.
package feed
