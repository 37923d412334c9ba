package types

import (
	"fmt"
	"time"
)

// WeekKey returns the ISO 8601 week identifier for t, UTC-anchored,
// e.g. "2026-W09". Weekly usage counters are keyed by this value so a
// fresh counter starts implicitly at each ISO week boundary.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// CurrentWeekKey returns the week key for the current instant.
func CurrentWeekKey() string {
	return WeekKey(time.Now())
}
