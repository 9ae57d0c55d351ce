package coordinator

import (
	"context"
	"math"
	"testing"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/playback"
)

// fakeEegSource is an in-memory EegPlaybackSource over a fixed slice of
// samples, sorted by timestamp.
type fakeEegSource struct {
	samples []domain.EegSample
	cursor  int
}

func (f *fakeEegSource) HasData() bool { return len(f.samples) > 0 }

func (f *fakeEegSource) NotifySeek(pos domain.Timestamp) {
	f.cursor = 0
	for f.cursor < len(f.samples) && f.samples[f.cursor].Timestamp < pos {
		f.cursor++
	}
}

func (f *fakeEegSource) Next(maxTS domain.Timestamp) (domain.EegSample, bool) {
	if f.cursor >= len(f.samples) || f.samples[f.cursor].Timestamp > maxTS {
		return domain.EegSample{}, false
	}
	s := f.samples[f.cursor]
	f.cursor++
	return s, true
}

type fakeVideoSource struct {
	entries []domain.VideoIndexEntry
	loaded  bool
}

func (f *fakeVideoSource) HasData() bool          { return f.loaded }
func (f *fakeVideoSource) NotifySeek(domain.Timestamp) {}

func (f *fakeVideoSource) Lookup(ts domain.Timestamp) (domain.VideoIndexEntry, bool) {
	var best domain.VideoIndexEntry
	found := false
	for _, e := range f.entries {
		if e.HostTimestampUS <= ts {
			best = e
			found = true
		}
	}
	return best, found
}

// TestGapMarker is scenario S6.
func TestGapMarker(t *testing.T) {
	eeg := &fakeEegSource{samples: []domain.EegSample{
		{Timestamp: 0, Domain: domain.Host},
		{Timestamp: 100_000, Domain: domain.Host},
	}}
	clock := playback.New()
	c := New(clock, eeg)

	if err := c.Play(0); err != nil {
		t.Fatalf("Play: %v", err)
	}

	result := c.Tick(context.Background(), 200_000)
	if len(result.Emitted) != 3 {
		t.Fatalf("expected 3 emitted (sample, synthetic gap marker, sample), got %d", len(result.Emitted))
	}

	gap := result.Emitted[1]
	if gap.Timestamp != domain.SampleIntervalUS {
		t.Fatalf("expected synthetic marker at %d, got %d", domain.SampleIntervalUS, gap.Timestamp)
	}
	for _, q := range gap.Quality {
		if q != domain.Missing {
			t.Fatalf("expected synthetic marker quality Missing, got %v", q)
		}
	}
	if !math.IsNaN(gap.Ch1) || !math.IsNaN(gap.Ch4) {
		t.Fatalf("expected NaN values on synthetic marker")
	}
}

func TestPlayRefusesWithoutData(t *testing.T) {
	eeg := &fakeEegSource{}
	c := New(playback.New(), eeg)
	if err := c.Play(0); err != domain.ErrNotReady {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if c.State() != Paused {
		t.Fatalf("expected Paused after refused Play")
	}
}

func TestPlayRefusesWithoutVideoData(t *testing.T) {
	eeg := &fakeEegSource{samples: []domain.EegSample{{Timestamp: 0}}}
	video := &fakeVideoSource{loaded: false}
	c := New(playback.New(), eeg, WithVideoSource(video))
	if err := c.Play(0); err != domain.ErrNotReady {
		t.Fatalf("expected ErrNotReady when video not loaded, got %v", err)
	}
}

func TestVideoLookupTracksTick(t *testing.T) {
	eeg := &fakeEegSource{samples: []domain.EegSample{{Timestamp: 0}}}
	video := &fakeVideoSource{loaded: true, entries: []domain.VideoIndexEntry{
		{HostTimestampUS: 0, FrameOffset: 100},
		{HostTimestampUS: 50_000, FrameOffset: 200},
	}}
	c := New(playback.New(), eeg, WithVideoSource(video))
	if err := c.Play(0); err != nil {
		t.Fatal(err)
	}
	result := c.Tick(context.Background(), 60_000)
	if !result.VideoOK || result.VideoEntry.FrameOffset != 200 {
		t.Fatalf("expected video entry offset 200, got %+v ok=%v", result.VideoEntry, result.VideoOK)
	}
}

func TestDriftMonitorCountsViolations(t *testing.T) {
	// The stored sample lags 200,000us behind the clock's current wall-time
	// position, forcing drift above the default 100,000us tolerance.
	eeg := &fakeEegSource{samples: []domain.EegSample{
		{Timestamp: 500_000},
	}}
	c := New(playback.New(), eeg)
	if err := c.Play(0); err != nil {
		t.Fatal(err)
	}
	c.Tick(context.Background(), 700_000)

	violations, checks := c.SyncStats()
	if checks != 1 {
		t.Fatalf("expected 1 sync check, got %d", checks)
	}
	if violations != 1 {
		t.Fatalf("expected 1 sync violation, got %d", violations)
	}
}

func TestSeekResetsCursorsInBothStates(t *testing.T) {
	eeg := &fakeEegSource{samples: []domain.EegSample{
		{Timestamp: 0}, {Timestamp: 6250}, {Timestamp: 12500},
	}}
	c := New(playback.New(), eeg)
	c.SeekTo(6250, 0) // legal while Paused
	if eeg.cursor != 1 {
		t.Fatalf("expected cursor at index 1 after seek, got %d", eeg.cursor)
	}

	if err := c.Play(0); err != nil {
		t.Fatal(err)
	}
	c.SeekTo(12500, 0) // legal while Playing
	if eeg.cursor != 2 {
		t.Fatalf("expected cursor at index 2 after seek while playing, got %d", eeg.cursor)
	}
}

func TestStopResetsToZero(t *testing.T) {
	eeg := &fakeEegSource{samples: []domain.EegSample{{Timestamp: 0}}}
	c := New(playback.New(), eeg)
	if err := c.Play(0); err != nil {
		t.Fatal(err)
	}
	c.SeekTo(50_000, 0)
	c.Stop(100_000)
	if c.State() != Paused {
		t.Fatalf("expected Paused after Stop")
	}
	if eeg.cursor != 0 {
		t.Fatalf("expected cursor reset to 0 after Stop, got %d", eeg.cursor)
	}
}
