package guardrails

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry bounds how often a row write is re-attempted after a transient failure
type Retry struct {
	// Attempts is the total number of tries; values below 1 mean one try
	Attempts int

	// Base is the first backoff; it doubles per attempt, jittered by half, capped at 2s
	Base time.Duration
}

const maxBackoff = 2 * time.Second

func (r Retry) policy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.Base
	if b.InitialInterval <= 0 {
		b.InitialInterval = 50 * time.Millisecond
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(max(r.Attempts, 1)-1)), ctx)
}

// Do runs fn until it succeeds, returns an error transient rejects, or attempts run out.
// The last error from fn is returned, also when ctx ends during a backoff
func Do(ctx context.Context, r Retry, transient func(error) bool, fn func(context.Context) error) error {
	var last error
	err := backoff.Retry(func() error {
		last = fn(ctx)
		if last != nil && !transient(last) {
			return backoff.Permanent(last)
		}
		return last
	}, r.policy(ctx))
	if err != nil && last != nil {
		return last
	}
	return err
}
