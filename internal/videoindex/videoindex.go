// Package videoindex reads and writes the video-index side-car file
// (§6): a fixed-width binary format mapping host timestamps to byte
// offsets into the video frame store, and a domain.VideoIndexPlaybackSource
// adapter over a loaded index.
package videoindex

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/aeegmon/core/internal/domain"
)

// Magic identifies a video-index file. Version is the only format this
// package writes or accepts.
var Magic = [4]byte{'A', 'E', 'V', 'I'}

const Version uint32 = 1

const (
	headerSize = 16
	entrySize  = 16
)

// Load parses a video-index file from r. An invalid magic or version
// number yields zero entries and a nil error — the coordinator's Play
// then refuses to start rather than the loader raising a fault (§6).
func Load(r io.Reader) ([]domain.VideoIndexEntry, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil
		}
		return nil, err
	}

	var magic [4]byte
	copy(magic[:], header[0:4])
	version := binary.LittleEndian.Uint32(header[4:8])
	if magic != Magic || version != Version {
		return nil, nil
	}

	count := binary.LittleEndian.Uint32(header[8:12])
	entries := make([]domain.VideoIndexEntry, 0, count)

	buf := make([]byte, entrySize)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}
		ts := int64(binary.LittleEndian.Uint64(buf[0:8]))
		off := int64(binary.LittleEndian.Uint64(buf[8:16]))
		entries = append(entries, domain.VideoIndexEntry{
			HostTimestampUS: domain.Timestamp(ts),
			FrameOffset:     off,
		})
	}
	return entries, nil
}

// LoadFile opens path and loads its video index.
func LoadFile(path string) ([]domain.VideoIndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Write serializes entries to w in the §6 binary format.
func Write(w io.Writer, entries []domain.VideoIndexEntry) error {
	header := make([]byte, headerSize)
	copy(header[0:4], Magic[:])
	binary.LittleEndian.PutUint32(header[4:8], Version)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(entries)))
	if _, err := w.Write(header); err != nil {
		return err
	}

	buf := make([]byte, entrySize)
	for _, e := range entries {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(e.HostTimestampUS))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(e.FrameOffset))
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile creates (or truncates) path and writes entries to it.
func WriteFile(path string, entries []domain.VideoIndexEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Write(f, entries)
}

var _ domain.VideoIndexPlaybackSource = (*Source)(nil)

// Source adapts a loaded index slice into a VideoIndexPlaybackSource.
// Lookup is a linear scan — acceptable since index length is bounded (§4.8).
type Source struct {
	entries []domain.VideoIndexEntry
}

// NewSource wraps a loaded (or empty) entry slice.
func NewSource(entries []domain.VideoIndexEntry) *Source {
	return &Source{entries: entries}
}

// HasData reports whether any entries were loaded.
func (s *Source) HasData() bool { return len(s.entries) > 0 }

// NotifySeek is a no-op: Lookup always scans the full index, so there is
// no emission cursor to reset.
func (s *Source) NotifySeek(domain.Timestamp) {}

// Lookup returns the greatest entry with HostTimestampUS <= ts.
func (s *Source) Lookup(ts domain.Timestamp) (domain.VideoIndexEntry, bool) {
	var best domain.VideoIndexEntry
	found := false
	for _, e := range s.entries {
		if e.HostTimestampUS <= ts {
			best = e
			found = true
		}
	}
	return best, found
}
