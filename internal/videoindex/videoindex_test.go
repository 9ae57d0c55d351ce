package videoindex

import (
	"bytes"
	"testing"

	"github.com/aeegmon/core/internal/domain"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	entries := []domain.VideoIndexEntry{
		{HostTimestampUS: 0, FrameOffset: 44},
		{HostTimestampUS: 33_333, FrameOffset: 18_200},
		{HostTimestampUS: 66_666, FrameOffset: 36_400},
	}

	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		t.Fatal(err)
	}

	got, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i, e := range entries {
		if got[i] != e {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	entries := []domain.VideoIndexEntry{{HostTimestampUS: 0, FrameOffset: 1}}
	if err := Write(&buf, entries); err != nil {
		t.Fatal(err)
	}
	corrupt := buf.Bytes()
	corrupt[0] = 'X'

	got, err := Load(bytes.NewReader(corrupt))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero entries on bad magic, got %d", len(got))
	}
}

func TestLoadRejectsWrongVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil); err != nil {
		t.Fatal(err)
	}
	corrupt := buf.Bytes()
	corrupt[4] = 99

	got, err := Load(bytes.NewReader(corrupt))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero entries on wrong version, got %d", len(got))
	}
}

func TestSourceLookupReturnsGreatestAtOrBefore(t *testing.T) {
	s := NewSource([]domain.VideoIndexEntry{
		{HostTimestampUS: 0, FrameOffset: 1},
		{HostTimestampUS: 10_000, FrameOffset: 2},
		{HostTimestampUS: 20_000, FrameOffset: 3},
	})
	entry, ok := s.Lookup(15_000)
	if !ok || entry.FrameOffset != 2 {
		t.Fatalf("expected frame offset 2, got %+v ok=%v", entry, ok)
	}
}

func TestSourceHasDataReflectsEmptyIndex(t *testing.T) {
	s := NewSource(nil)
	if s.HasData() {
		t.Fatal("expected HasData false for empty index")
	}
}
