package workout

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// TestTimersFireOnce verifies a countdown runs its callback once and then
// leaves the running set.
func TestTimersFireOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := newTimers()
	var fired atomic.Int32
	done := make(chan struct{})
	if !ts.Start(1, 5, 5*time.Millisecond, func() {
		fired.Add(1)
		close(done)
	}) {
		t.Fatal("Start on open set returned false")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown never fired")
	}
	if n := fired.Load(); n != 1 {
		t.Errorf("fired = %d, want 1", n)
	}
	if ts.Len() != 0 {
		t.Errorf("Len after firing = %d, want 0", ts.Len())
	}
}

// TestTimersRestartReplaces verifies starting an exercise twice keeps only
// the second countdown.
func TestTimersRestartReplaces(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := newTimers()
	var first atomic.Bool
	ts.Start(1, 5, 20*time.Millisecond, func() { first.Store(true) })
	done := make(chan struct{})
	ts.Start(1, 5, 40*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replacement countdown never fired")
	}
	if first.Load() {
		t.Error("replaced countdown still fired")
	}
}

// TestTimersClose verifies Close cancels running countdowns, refuses new
// ones and leaves no goroutines behind.
func TestTimersClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := newTimers()
	var fired atomic.Bool
	ts.Start(1, 60, time.Hour, func() { fired.Store(true) })
	ts.Start(2, 60, time.Hour, func() { fired.Store(true) })
	if c, ok := ts.Get(1); !ok || c.Remaining(time.Now()) <= 0 {
		t.Fatalf("Get(1) = %v, %v; want a running countdown", c, ok)
	}

	ts.Close()
	if ts.Len() != 0 {
		t.Errorf("Len after Close = %d, want 0", ts.Len())
	}
	if ts.Start(3, 5, time.Millisecond, func() {}) {
		t.Error("Start after Close returned true")
	}
	if ts.Stop(1) {
		t.Error("Stop after Close reported a running countdown")
	}
	if fired.Load() {
		t.Error("cancelled countdown fired")
	}
}
