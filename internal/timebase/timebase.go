// Package timebase implements the core's time model (C1): a monotonic
// int64 microsecond timeline relative to an explicit session epoch, with
// clock-domain tagging (§3).
package timebase

import (
	"sync"
	"time"

	"github.com/aeegmon/core/internal/domain"
)

// Session anchors wall-clock time to a session-relative microsecond
// timeline. Epoch is 0 at construction; Now() never returns a value
// smaller than the previous call (monotonic within a session).
type Session struct {
	mu      sync.Mutex
	anchor  time.Time
	lastUS  domain.Timestamp
	domainT domain.ClockDomain
}

// NewSession starts a session epoch at the current wall-clock instant.
func NewSession() *Session {
	return &Session{anchor: time.Now()}
}

// Domain returns the clock domain this session stamps timestamps with.
func (s *Session) Domain() domain.ClockDomain {
	return s.domainT
}

// Now returns the current session-relative microsecond timestamp. It is
// monotonically non-decreasing even if the wall clock is adjusted
// backwards underneath it (a guarantee Go's monotonic time.Time already
// provides via time.Since, enforced here in case of measurement jitter).
func (s *Session) Now() domain.Timestamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	us := domain.Timestamp(time.Since(s.anchor).Microseconds())
	if us < s.lastUS {
		us = s.lastUS
	}
	s.lastUS = us
	return us
}

// Elapsed converts a session-relative timestamp back to a time.Duration
// since the session epoch, for interop with wall-clock APIs.
func Elapsed(ts domain.Timestamp) time.Duration {
	return time.Duration(ts) * time.Microsecond
}

// FromDuration converts a wall-clock duration since epoch into a
// session-relative timestamp.
func FromDuration(d time.Duration) domain.Timestamp {
	return domain.Timestamp(d.Microseconds())
}
