// Package playback implements the core's unified playback clock (C9): a
// rate-scaled monotonic clock supporting start/pause/seek/rate-change,
// used to keep EEG sample emission and video frame seeks within a
// bounded tolerance of each other.
package playback

import (
	"sync"

	"github.com/aeegmon/core/internal/domain"
)

// Option configures a Clock at construction.
type Option func(*Clock)

// WithInitialRate sets the clock's starting playback rate (default 1.0).
func WithInitialRate(rate float64) Option {
	return func(c *Clock) {
		c.rate = rate
	}
}

// Clock is a rate-scaled monotonic clock anchored to an external wall-clock
// reading. Every method takes the current wall-clock microsecond reading
// explicitly, rather than sampling time.Now() internally, so the clock
// stays driven by a single upstream source of "now" (§4.7).
type Clock struct {
	mu sync.Mutex

	running      bool
	positionUS   domain.Timestamp
	rate         float64
	wallAnchorUS domain.Timestamp
}

// New creates a stopped clock at position 0, rate 1.0.
func New(opts ...Option) *Clock {
	c := &Clock{rate: 1.0}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentUS returns the current playback position given the wall-clock
// reading nowWallUS: position_us + (now_wall - wall_anchor) * rate while
// running, else the frozen position_us.
func (c *Clock) CurrentUS(nowWallUS domain.Timestamp) domain.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentUSLocked(nowWallUS)
}

func (c *Clock) currentUSLocked(nowWallUS domain.Timestamp) domain.Timestamp {
	if !c.running {
		return c.positionUS
	}
	elapsed := float64(nowWallUS - c.wallAnchorUS)
	return c.positionUS + domain.Timestamp(elapsed*c.rate)
}

// Start begins (or resumes) playback, anchoring to nowWallUS. Idempotent.
func (c *Clock) Start(nowWallUS domain.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.wallAnchorUS = nowWallUS
	c.running = true
}

// Pause freezes playback at its current position. Idempotent.
func (c *Clock) Pause(nowWallUS domain.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.positionUS = c.currentUSLocked(nowWallUS)
	c.running = false
}

// SeekTo jumps to an absolute position. If running, re-anchors to
// nowWallUS so playback continues forward from the new position.
func (c *Clock) SeekTo(posUS, nowWallUS domain.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positionUS = posUS
	if c.running {
		c.wallAnchorUS = nowWallUS
	}
}

// SetRate changes the playback rate. If running, the current position is
// snapshotted first and the clock resumes from a fresh anchor at the new
// rate, so the change takes effect without a position jump.
func (c *Clock) SetRate(rate float64, nowWallUS domain.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.positionUS = c.currentUSLocked(nowWallUS)
		c.wallAnchorUS = nowWallUS
	}
	c.rate = rate
}

// Rate returns the current playback rate.
func (c *Clock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Running reports whether the clock is currently advancing.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Reset returns the clock to position 0, stopped, without touching rate.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positionUS = 0
	c.running = false
}
