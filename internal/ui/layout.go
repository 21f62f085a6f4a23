package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the width below which list rows drop the company.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the width from which the list pane narrows to 40%.
	LayoutWideWidth = 160
)

// Activity log limits.
const (
	// LogTailLines is how many trailing log lines the activity view reads.
	LogTailLines = 500
)

// Timing constants.
const (
	// DefaultRefreshInterval is how often the console re-reads the store.
	DefaultRefreshInterval = 250 * time.Millisecond
)
