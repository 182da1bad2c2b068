package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panes stack vertically.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show the probability columns.
	LayoutWideWidth = 130
)

// Request throttles applied before a Command is sent.
const (
	DetailThrottle   = 5 * time.Second
	AnalysisThrottle = 30 * time.Second
	UpcomingFresh    = time.Minute
)

// DefaultUIInterval is how often pending deltas are drained.
const DefaultUIInterval = 100 * time.Millisecond

// commentaryLimit caps the ticker lines shown under a match.
const commentaryLimit = 40
