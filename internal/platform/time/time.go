// Package time holds the instant helpers shared by date parsing and job bookkeeping
package time

import "time"

// UTC returns t converted to UTC, or nil for the zero time so it reads as a missing instant
func UTC(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}

// Millis is d in whole milliseconds, never below floor
func Millis(d time.Duration, floor int64) int64 {
	return max(floor, d.Milliseconds())
}
