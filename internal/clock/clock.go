// Package clock provides the pausable media clock that drives the
// playback position.
package clock

import (
	"sync"
	"time"
)

// Clock is a pausable, resettable time source. While running, its position
// advances with wall time; while paused it holds.
type Clock struct {
	mu        sync.Mutex
	now       func() time.Time
	offset    time.Duration
	startedAt time.Time
	running   bool
}

// New creates a paused clock at position zero.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock reading time from now.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Play starts advancing the clock. No-op if already running.
func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.startedAt = c.now()
	c.running = true
}

// Pause freezes the clock at its current position. No-op if paused.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.offset += c.now().Sub(c.startedAt)
	c.running = false
}

// Reset pauses the clock and rewinds it to zero.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
	c.running = false
}

// Update moves the clock to position, keeping its running state.
func (c *Clock) Update(position time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = position
	if c.running {
		c.startedAt = c.now()
	}
}

// Position returns the current clock position.
func (c *Clock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return c.offset
	}
	return c.offset + c.now().Sub(c.startedAt)
}

// IsRunning returns true if the clock is advancing.
func (c *Clock) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
