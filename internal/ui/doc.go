// Package ui is the presentation consumer: a Bubble Tea program that owns
// the state.Store.
//
// Every tick the Model drains the delta queue, applies the deltas in the
// order the worker emitted them, and recomputes rankings when they are
// dirty and a team list exists. It then decides which Commands the
// current view needs (detail for the highlighted match, the upcoming
// window, the league analysis) and applies request throttles before
// pushing them. The model never performs network I/O; the only disk
// access is saving prefs and the per-league cache on a league switch.
//
// Views cycle with tab: Pulse (live list and match detail), Upcoming,
// Analysis (teams, squad, player), Rankings and Logs. A commentary error
// on a match detail is shown verbatim above any commentary that was
// decoded.
package ui
