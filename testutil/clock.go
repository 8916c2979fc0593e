package testutil

import (
	"sync"
	"time"
)

// SteppingClock returns a strictly increasing time on every call, so rows
// written in one test have distinct, ordered timestamps.
//
// Thread-safety: all methods are safe for concurrent use.
type SteppingClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewSteppingClock starts at start and advances by step after each Now.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{next: start.UTC(), step: step}
}

// Now returns the current time and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}

// Peek returns the time the next call to Now will return.
func (c *SteppingClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
