package playback

import (
	"testing"
)

// TestPlaybackDrift is scenario S5.
func TestPlaybackDrift(t *testing.T) {
	c := New()
	c.Start(0)

	got := c.CurrentUS(1_000_000)
	if got < 990_000 || got > 1_010_000 {
		t.Fatalf("rate=1.0 after 1.000s wall: got %d, want in [990000,1010000]", got)
	}

	c.SetRate(0.5, 1_000_000)
	got = c.CurrentUS(3_000_000)
	delta := got - 1_000_000
	if delta < 900_000 || delta > 1_100_000 {
		t.Fatalf("rate=0.5 after 2.000s wall: advanced %d, want in [900000,1100000]", delta)
	}

	c.SeekTo(10_000_000, 3_000_000)
	got = c.CurrentUS(3_000_000)
	if got < 10_000_000 || got > 10_500_000 {
		t.Fatalf("seek while running: got %d, want in [10000000,10500000]", got)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	c := New()
	c.Start(0)
	c.Start(500)
	if got := c.CurrentUS(1_000_000); got != 1_000_000 {
		t.Fatalf("second Start should not re-anchor: got %d, want 1000000", got)
	}
}

func TestPauseFreezesPosition(t *testing.T) {
	c := New()
	c.Start(0)
	c.Pause(1_000_000)
	if got := c.CurrentUS(5_000_000); got != 1_000_000 {
		t.Fatalf("paused clock should not advance: got %d", got)
	}
	c.Pause(9_000_000) // idempotent
	if got := c.CurrentUS(9_000_000); got != 1_000_000 {
		t.Fatalf("second Pause should not change position: got %d", got)
	}
}

func TestSeekWhilePaused(t *testing.T) {
	c := New()
	c.SeekTo(5_000_000, 0)
	if got := c.CurrentUS(9_999_999); got != 5_000_000 {
		t.Fatalf("seek while paused must hold position: got %d", got)
	}
}

func TestResetZeroesPositionAndStops(t *testing.T) {
	c := New()
	c.Start(0)
	c.SeekTo(5_000_000, 1_000_000)
	c.Reset()
	if c.Running() {
		t.Fatal("expected clock stopped after Reset")
	}
	if got := c.CurrentUS(99_999); got != 0 {
		t.Fatalf("expected position 0 after Reset, got %d", got)
	}
}

func TestRateChangeDoesNotJumpPosition(t *testing.T) {
	c := New()
	c.Start(0)
	before := c.CurrentUS(2_000_000)
	c.SetRate(2.0, 2_000_000)
	after := c.CurrentUS(2_000_000)
	if before != after {
		t.Fatalf("rate change must not jump position: before=%d after=%d", before, after)
	}
	if got := c.CurrentUS(3_000_000); got-after != 2_000_000 {
		t.Fatalf("expected 2x advance of 1s wall = 2,000,000us, got delta %d", got-after)
	}
}
