// Package clock abstracts the wall clock so build durations can be asserted
// in tests.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Stepping returns Start on the first call and advances by Step on every
// call after that.
type Stepping struct {
	Start time.Time
	Step  time.Duration

	mu    sync.Mutex
	calls int
}

// Now implements Clock.
func (s *Stepping) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.Start.Add(time.Duration(s.calls) * s.Step)
	s.calls++
	return t
}

// Ensure both clocks implement Clock.
var (
	_ Clock = RealClock{}
	_ Clock = (*Stepping)(nil)
)
