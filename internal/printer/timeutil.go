package printer

import (
	"time"

	"github.com/dustin/go-humanize"
)

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// TimeUntil returns a human-readable relative time from now to t.
// Examples: "3 minutes from now", "2 days from now", "now".
func TimeUntil(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
