package workout

import (
	"sync"
	"time"
)

// Countdown is one running exercise timer.
type Countdown struct {
	ExerciseID int64
	Seconds    int
	deadline   time.Time
	timer      *time.Timer
}

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining(now time.Time) time.Duration {
	return max(0, c.deadline.Sub(now))
}

// Timers is the set of countdowns owned by one workout session. Nothing
// outside the session can reach them; Close cancels them all.
type Timers struct {
	mu      sync.Mutex
	running map[int64]*Countdown
	closed  bool
}

func newTimers() *Timers {
	return &Timers{running: make(map[int64]*Countdown)}
}

// Start runs fn after d unless the countdown is stopped first. Starting an
// exercise that already has a countdown replaces it. It reports false once
// the set is closed.
func (t *Timers) Start(exerciseID int64, seconds int, d time.Duration, fn func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	if old, ok := t.running[exerciseID]; ok {
		old.timer.Stop()
	}

	c := &Countdown{ExerciseID: exerciseID, Seconds: seconds, deadline: time.Now().Add(d)}
	c.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		current := t.running[exerciseID] == c
		if current {
			delete(t.running, exerciseID)
		}
		t.mu.Unlock()
		if current {
			fn()
		}
	})
	t.running[exerciseID] = c
	return true
}

// Stop cancels the exercise's countdown. It reports whether one was running.
func (t *Timers) Stop(exerciseID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.running[exerciseID]
	if !ok {
		return false
	}
	c.timer.Stop()
	delete(t.running, exerciseID)
	return true
}

// Get returns the exercise's running countdown, if any.
func (t *Timers) Get(exerciseID int64) (*Countdown, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.running[exerciseID]
	return c, ok
}

// Len returns the number of running countdowns.
func (t *Timers) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.running)
}

// Close cancels every countdown and refuses new ones.
func (t *Timers) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, c := range t.running {
		c.timer.Stop()
		delete(t.running, id)
	}
	t.closed = true
}
