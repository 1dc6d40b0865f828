package util //nolint:revive // package name util hosts shared formatting helpers used by the CLI

import "time"

// FormatRemaining renders the time left until a deadline for display.
// Returns "expired" for zero or negative durations and truncates to minutes.
func FormatRemaining(d time.Duration) string {
	switch {
	case d <= 0:
		return "expired"
	case d < time.Minute:
		return "under a minute"
	default:
		return d.Truncate(time.Minute).String()
	}
}
