package guardrails

import (
	"context"
	"testing"
	"time"
)

func TestForRow_ZeroInheritsParent(t *testing.T) {
	ctx, cancel := ForRow(context.Background(), Timeouts{})
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatalf("zero Row budget should not set a deadline")
	}
}

func TestForJob_NeverExtendsParent(t *testing.T) {
	parent, pcancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer pcancel()

	ctx, cancel := ForJob(parent, Timeouts{Job: time.Hour})
	defer cancel()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatalf("expected a deadline")
	}
	if time.Until(dl) > time.Second {
		t.Fatalf("child deadline %v extends parent", time.Until(dl))
	}
}

func TestForRow_TighterBudget(t *testing.T) {
	ctx, cancel := ForRow(context.Background(), Timeouts{Row: 20 * time.Millisecond})
	defer cancel()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("row context never expired")
	}
}

func TestDetached_SurvivesParentCancel(t *testing.T) {
	parent, pcancel := context.WithCancel(context.Background())
	pcancel()

	ctx, cancel := Detached(parent, Timeouts{Job: time.Minute})
	defer cancel()
	if ctx.Err() != nil {
		t.Fatalf("detached context inherited cancellation: %v", ctx.Err())
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Fatalf("detached context should still be bounded")
	}
}

func TestRemaining(t *testing.T) {
	if Remaining(context.Background()) != 0 {
		t.Fatalf("no deadline should report zero")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if r := Remaining(ctx); r <= 0 || r > time.Minute {
		t.Fatalf("Remaining = %v", r)
	}
}
