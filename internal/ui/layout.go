package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the status line drops
	// the scheduler details.
	LayoutCompactWidth = 80

	// helpModalWidth is the width of the help overlay.
	helpModalWidth = 44
)

// Log pane limits.
const (
	// LogPaneLines is the number of log lines read for the log pane.
	LogPaneLines = 200

	// LogPaneHeight is the height of the log pane in rows.
	LogPaneHeight = 8
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// FlashDuration is how long a status message stays in the footer.
	FlashDuration = 4 * time.Second
)
