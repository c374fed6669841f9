// Package clock provides the time source and elapsed-time arithmetic used for
// interval accounting.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// System is the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Manual is a settable clock for tests and replays.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t, backwards included.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

// Elapsed returns floor((end_ms - start_ms) / 1000). Negative results and results above
// limit (when limit > 0) are clamped to zero and reported as anomalous.
func Elapsed(start, end time.Time, limit time.Duration) (int64, bool) {
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		return 0, true
	}
	seconds := ms / 1000
	if limit > 0 && seconds > int64(limit/time.Second) {
		return 0, true
	}
	return seconds, false
}
