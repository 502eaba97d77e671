// Package test contains helper functions useful for testing hush packages.
package test

import (
	"sync"
	"time"
)

// Epoch is the start time of every Clock.
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Clock is a manual time source. It only moves when Advance is called.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to Epoch.
func NewClock() *Clock {
	return &Clock{now: Epoch}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Channel returns every channels-th sample starting at offset.
func Channel[S any](samples []S, channels, offset int) []S {
	result := make([]S, 0, len(samples)/channels+1)
	for i := offset; i < len(samples); i += channels {
		result = append(result, samples[i])
	}
	return result
}
