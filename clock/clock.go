// Package clock supplies the current time to services and token issuing so
// timestamps, order numbers and token expiry can be pinned in tests.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time. Every timestamp the storefront writes comes
// from a Clock, never from time.Now directly.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock, always in UTC so stored timestamps compare
// lexically in SQLite.
type RealClock struct{}

// NewRealClock returns the wall clock.
func NewRealClock() Clock {
	return RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// MockClock stands still until a test moves it. Background jobs read it
// concurrently, hence the lock.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMockClock returns a MockClock stopped at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start.UTC()}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set jumps to t.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t.UTC()
}

// Advance moves the clock forward by d.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
