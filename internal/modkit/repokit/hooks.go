package repokit

import (
	"context"
	"fmt"
	"time"
)

// BeginHook runs first inside every transaction, on the tx-bound Queryer.
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns a TxRunner that runs hooks before fn in the same tx.
// Calls outside Tx pass straight through to inner. A nil inner stays nil.
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if inner == nil || len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// StatementTimeout caps every statement in the tx via SET LOCAL. d <= 0 is a no-op hook.
func StatementTimeout(d time.Duration) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		if d <= 0 {
			return nil
		}
		// SET does not take bind parameters
		_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds()))
		return err
	}
}
