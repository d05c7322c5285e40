// Package leaktest provides goroutine accounting for tests of the engine's
// long-running components (worker pool, game loop, connection pool).
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

// GoroutineChecker snapshots the goroutine count so a test can assert that a
// component's shutdown path left nothing running.
type GoroutineChecker struct {
	before int
	t      testing.TB
}

// NewGoroutineChecker records the current goroutine count.
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()

	// Let goroutines from earlier tests settle first
	runtime.Gosched()
	time.Sleep(10 * time.Millisecond)

	return &GoroutineChecker{
		before: runtime.NumGoroutine(),
		t:      t,
	}
}

// Check fails the test when more than tolerance goroutines outlived the
// checked code.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	runtime.Gosched()
	time.Sleep(50 * time.Millisecond)
	runtime.GC()
	time.Sleep(50 * time.Millisecond)

	after := runtime.NumGoroutine()
	leaked := after - g.before

	if leaked > tolerance {
		g.t.Errorf("goroutine leak: before=%d, after=%d, leaked=%d (tolerance=%d)",
			g.before, after, leaked, tolerance)
	}
}

// CheckNoGoroutineLeak runs fn and fails the test if any goroutine it started
// is still alive afterwards.
func CheckNoGoroutineLeak(t *testing.T, fn func()) {
	t.Helper()

	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}
