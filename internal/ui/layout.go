package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops
	// the KPI progress bar and the timestamp.
	LayoutCompactWidth = 100

	// LayoutKPIBarWidth is the width of the KPI progress bar.
	LayoutKPIBarWidth = 24
)

// Timing constants.
const (
	// DefaultUIInterval is the default interval for re-reading the store.
	DefaultUIInterval = time.Second
)
