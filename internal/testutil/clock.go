package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant returned by a StepClock.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// StepClock is a deterministic wall clock for tests.
//
// Each call to Now advances by one second, so timestamps written by the
// store are distinct and predictable.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	steps int
}

// NewStepClock creates a clock whose first reading is Epoch.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Now returns the next instant.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := Epoch.Add(time.Duration(c.steps) * time.Second)
	c.steps++
	return t
}

// Reset rewinds the clock to Epoch for test reuse.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = 0
}
