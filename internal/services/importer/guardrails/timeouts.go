// Package guardrails holds the time budgets an import runs under
package guardrails

import (
	"context"
	"time"
)

// Timeouts bounds the phases of one import.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Job caps job level writes: begin, counter updates, finish
	Job time.Duration

	// Row caps the persistence of a single row including its audit entry
	Row time.Duration
}

// ForJob returns a sub context for a job level write
func ForJob(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Job)
}

// ForRow returns a sub context for one row
func ForRow(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Row)
}

// Detached keeps the values of ctx but not its cancellation, bounded by the job budget.
// Used to record partial progress after the caller gave up
func Detached(ctx context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if t.Job <= 0 {
		return context.WithTimeout(base, 30*time.Second)
	}
	return context.WithTimeout(base, t.Job)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout picks the tighter of d and the parent remainder; it never extends the parent
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
