package engine

import (
	"sync"
	"time"
)

// Clock abstracts the engine's time source. The wall clock ties one unit of
// simulated execution time to one unit of real elapsed time; VirtualClock
// advances instantly so scenarios run deterministically in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

// NewWallClock returns the real time source used in production.
func NewWallClock() Clock { return wallClock{} }

// VirtualClock is a Clock whose Sleep advances a synthetic now instead of
// blocking. Ordering and metric computation are unchanged; only the passage
// of time is simulated.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock creates a virtual clock starting at the given instant.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now returns the current virtual instant.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the virtual clock by d and returns immediately.
// Non-positive durations are ignored, as with time.Sleep.
func (c *VirtualClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	c.Advance(d)
}

// Advance moves the virtual clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
