// Package testkit holds the assertions and seam helpers shared by package tests
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// seamMu serializes tests that swap package-level seams
var seamMu sync.Mutex

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// MustContain fails unless out contains want. Long outputs such as log
// captures are written to a temp file instead of the failure message.
func MustContain(t *testing.T, out, want string) {
	t.Helper()
	if strings.Contains(out, want) {
		return
	}
	if len(out) < 512 {
		t.Fatalf("expected %q in:\n%s", want, out)
	}
	f := filepath.Join(t.TempDir(), "output.txt")
	_ = os.WriteFile(f, []byte(out), 0o600)
	t.Fatalf("expected %q in output, full text at %s", want, f)
}

// Swap replaces *target for the duration of t.
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	orig := *target
	*target = v
	t.Cleanup(func() { *target = orig })
}

// Serial holds a process-wide lock until t ends; pair it with Swap on shared seams.
func Serial(t *testing.T) {
	t.Helper()
	seamMu.Lock()
	t.Cleanup(seamMu.Unlock)
}
