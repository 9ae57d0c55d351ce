package pyramid

import (
	"testing"

	"github.com/aeegmon/core/internal/domain"
)

func TestIncrementalMergePreservesExtremes(t *testing.T) {
	p := New(domain.SampleIntervalUS)
	values := []float64{1, 9, 2, -5, 3, 7, 0, -1}
	for _, v := range values {
		p.Append(v)
	}

	// Level 1 should hold 4 pairs, each merging 2 level-0 samples.
	if got := p.LevelLength(1); got != 4 {
		t.Fatalf("expected 4 level-1 entries, got %d", got)
	}
	out := make([]domain.MinMaxPair, 4)
	n, err := p.GetLevel(1, 0, domain.Timestamp(len(values))*domain.SampleIntervalUS, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("expected 4 entries returned, got %d", n)
	}
	want := []domain.MinMaxPair{
		{Min: 1, Max: 9},
		{Min: -5, Max: 2},
		{Min: 3, Max: 7},
		{Min: -1, Max: 0},
	}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("level1[%d] = %+v, want %+v", i, out[i], w)
		}
	}
}

func TestPendingSlotHoldsOddSample(t *testing.T) {
	p := New(domain.SampleIntervalUS)
	p.Append(1)
	if got := p.LevelLength(1); got != 0 {
		t.Fatalf("expected no level-1 entry with only one level-0 sample, got %d", got)
	}
	p.Append(2)
	if got := p.LevelLength(1); got != 1 {
		t.Fatalf("expected one level-1 entry after the pending slot merges, got %d", got)
	}
}

func TestDeepPropagationAcrossLevels(t *testing.T) {
	p := New(domain.SampleIntervalUS)
	// 16 samples propagate a single merged entry all the way to level 4.
	for i := 0; i < 16; i++ {
		p.Append(float64(i))
	}
	if got := p.LevelLength(4); got != 1 {
		t.Fatalf("expected exactly one level-4 entry from 16 samples, got %d", got)
	}
	out := make([]domain.MinMaxPair, 1)
	n, err := p.GetLevel(4, 0, 16*domain.SampleIntervalUS, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || out[0].Min != 0 || out[0].Max != 15 {
		t.Fatalf("expected {0,15} spanning all 16 samples, got %+v", out[0])
	}
}

// TestSelectLevelScenario exercises §4.6's level-selection formula on a
// one-million-sample recording: a 60s visible range at 6250us/sample is
// 9600 samples, and an 800px viewport. The smallest n satisfying
// (9600 >> n)/800 <= 4 is n=2 (9600>>2=2400, 2400/800=3). The worked
// example in the distilled spec states n=5 for these same inputs, which
// is inconsistent with its own stated formula; SelectLevel follows the
// formula as written rather than that inconsistent worked number.
func TestSelectLevelScenario(t *testing.T) {
	deltaUS := domain.Timestamp(60_000_000)
	got := SelectLevel(deltaUS, domain.SampleIntervalUS, 800)
	if got != 2 {
		t.Fatalf("SelectLevel = %d, want 2", got)
	}
}

func TestSelectLevelMonotonicAndClamped(t *testing.T) {
	if got := SelectLevel(domain.SampleIntervalUS*4, domain.SampleIntervalUS, 10000); got != 0 {
		t.Fatalf("expected level 0 for a tiny range against a wide viewport, got %d", got)
	}
	huge := domain.Timestamp(1_000_000) * domain.SampleIntervalUS
	if got := SelectLevel(huge, domain.SampleIntervalUS, 1); got != MaxLevels {
		t.Fatalf("expected clamp to MaxLevels for an enormous range, got %d", got)
	}

	prev := 0
	for samples := int64(1); samples <= 1_000_000; samples *= 2 {
		got := SelectLevel(domain.Timestamp(samples)*domain.SampleIntervalUS, domain.SampleIntervalUS, 800)
		if got < prev {
			t.Fatalf("SelectLevel not monotonic: %d samples gave level %d after level %d", samples, got, prev)
		}
		prev = got
	}
}

func TestGetLevelZeroReturnsRawPairs(t *testing.T) {
	p := New(domain.SampleIntervalUS)
	p.Append(3)
	p.Append(-4)
	out := make([]domain.MinMaxPair, 2)
	n, err := p.GetLevel(0, 0, 2*domain.SampleIntervalUS, out)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 || out[0] != (domain.MinMaxPair{Min: 3, Max: 3}) || out[1] != (domain.MinMaxPair{Min: -4, Max: -4}) {
		t.Fatalf("unexpected level-0 pairs: %+v", out[:n])
	}
}

func TestGetLevelOutOfRange(t *testing.T) {
	p := New(domain.SampleIntervalUS)
	if _, err := p.GetLevel(MaxLevels+1, 0, 0, nil); err != domain.ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}
