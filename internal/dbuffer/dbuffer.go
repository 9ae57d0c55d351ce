// Package dbuffer implements the core's lock-free single-producer/
// single-consumer double buffer (C3): a fixed-capacity handoff between
// the acquisition thread and the DSP thread with no locks and no
// allocation on the hot path.
package dbuffer

import (
	"sync/atomic"

	"github.com/aeegmon/core/internal/domain"
)

// Snapshot is a read-only view handed to the consumer by Snapshot/TrySnapshot.
// It is valid only for the duration of the current consumer frame — the
// producer may swap the underlying array back on its next Publish. Callers
// must copy out anything they need to keep (§4.1, §9).
type Snapshot[T any] struct {
	Data    []T
	Count   int
	TsUS    domain.Timestamp
	Version uint64
}

// Buffer is a fixed-capacity SPSC double buffer parameterised by element
// type T. Exactly one goroutine may call Publish; exactly one goroutine
// may call Snapshot/TrySnapshot. No locks are taken by either side.
type Buffer[T any] struct {
	capacity int
	slots    [2][]T

	publishedIndex atomic.Int32
	publishedCount atomic.Int64
	publishedTsUS  atomic.Int64
	version        atomic.Uint64

	// writeIndex is producer-private: it names the non-published slot.
	writeIndex int32
}

// New creates a double buffer with the given fixed per-slot capacity.
func New[T any](capacity int) *Buffer[T] {
	b := &Buffer[T]{
		capacity: capacity,
		slots:    [2][]T{make([]T, capacity), make([]T, capacity)},
	}
	b.writeIndex = 1 // slot 0 starts as "published" (empty), producer writes into 1
	return b
}

// Capacity returns the fixed per-slot capacity.
func (b *Buffer[T]) Capacity() int {
	return b.capacity
}

// WriteSlot returns the producer-private slice to fill before Publish.
// Only the producer goroutine may call this or write through the result.
func (b *Buffer[T]) WriteSlot() []T {
	return b.slots[b.writeIndex]
}

// Publish atomically stores count/timestamp, swaps the published index,
// and increments the version counter. Producer-only.
func (b *Buffer[T]) Publish(count int, tsUS domain.Timestamp) error {
	if count > b.capacity {
		return domain.ErrCapacityExceeded
	}

	b.publishedCount.Store(int64(count))
	b.publishedTsUS.Store(int64(tsUS))
	b.publishedIndex.Store(b.writeIndex)
	b.version.Add(1)

	// Flip producer's private write target to the now-unpublished slot.
	if b.writeIndex == 0 {
		b.writeIndex = 1
	} else {
		b.writeIndex = 0
	}
	return nil
}

// Snapshot returns the current published view. Consumer-only.
func (b *Buffer[T]) Snapshot() Snapshot[T] {
	idx := b.publishedIndex.Load()
	count := b.publishedCount.Load()
	ts := b.publishedTsUS.Load()
	ver := b.version.Load()

	return Snapshot[T]{
		Data:    b.slots[idx][:count],
		Count:   int(count),
		TsUS:    domain.Timestamp(ts),
		Version: ver,
	}
}

// TrySnapshot returns the current snapshot only if its version differs
// from lastVersion, avoiding redundant work when nothing new was
// published since the consumer's previous call.
func (b *Buffer[T]) TrySnapshot(lastVersion uint64) (Snapshot[T], bool) {
	if b.version.Load() == lastVersion {
		return Snapshot[T]{}, false
	}
	return b.Snapshot(), true
}

// Reset clears published state. Legal only when quiescent (no concurrent
// Publish/Snapshot in flight) — the caller is responsible for that
// quiescence, matching §4.1's documented contract.
func (b *Buffer[T]) Reset() {
	b.publishedIndex.Store(0)
	b.publishedCount.Store(0)
	b.publishedTsUS.Store(0)
	b.version.Store(0)
	b.writeIndex = 1
}
