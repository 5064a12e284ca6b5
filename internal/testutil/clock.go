package testutil

import (
	"sync"
	"time"
)

// LabEpoch is the time every Clock starts at unless told otherwise.
var LabEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// Clock is a manual time source. Pass Clock.Now wherever a component
// takes a func() time.Time.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at LabEpoch.
func NewClock() *Clock {
	return &Clock{now: LabEpoch}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
