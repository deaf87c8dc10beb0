package push

import (
	"log/slog"
	"time"
)

// IsQuietHours reports whether now falls inside the user's do-not-disturb
// window. start and end are zero-padded 24-hour "HH:MM" strings, which sort
// correctly as plain strings, so no date arithmetic is needed. A window with
// start > end spans midnight (22:00-07:00 is quiet at 02:00).
//
// Any timezone resolution failure fails open: delivery is favored over
// silence, and the problem is logged rather than returned.
func IsQuietHours(start, end, timezone string, now time.Time) bool {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("quiet hours: unresolvable timezone, delivering anyway",
			"timezone", timezone, "error", err)
		return false
	}

	current := now.In(loc).Format("15:04")

	if start > end {
		return current >= start || current <= end
	}
	return current >= start && current <= end
}
