// Package pyramid implements the core's LOD min/max pyramid (C8): an
// append-only multi-resolution structure supporting sub-10ms viewport
// queries over multi-hour recordings. Per channel: level 0 is the raw
// sample array; level n (n>=1) is an append-only array of MinMaxPair,
// each entry summarising 2^n consecutive level-0 samples.
package pyramid

import (
	"sync"

	"github.com/aeegmon/core/internal/domain"
)

// MaxLevels is the maximum pyramid depth (1024x downsample at level 10).
const MaxLevels = 10

// Pyramid is a single channel's multi-resolution min/max structure.
// Thread safety: one mutex guards both append and query (§4.6). The
// multi-channel case is simply one independent Pyramid per channel.
type Pyramid struct {
	mu               sync.Mutex
	sampleIntervalUS domain.Timestamp

	level0  []float64
	levels  [MaxLevels][]domain.MinMaxPair
	pending [MaxLevels]*domain.MinMaxPair
}

// New creates an empty pyramid for samples spaced sampleIntervalUS apart.
func New(sampleIntervalUS domain.Timestamp) *Pyramid {
	return &Pyramid{sampleIntervalUS: sampleIntervalUS}
}

// Append adds one new level-0 sample, incrementally propagating merged
// min/max pairs upward through the pending-slot algorithm (§4.6): at
// each level a single pending entry is kept; when a second arrives they
// merge (preserving global min and max) into the next level up.
func (p *Pyramid) Append(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level0 = append(p.level0, v)
	p.propagateLocked(0, domain.MinMaxPair{Min: v, Max: v})
}

func (p *Pyramid) propagateLocked(level int, pair domain.MinMaxPair) {
	if level >= MaxLevels {
		return
	}
	if p.pending[level] == nil {
		cp := pair
		p.pending[level] = &cp
		return
	}

	merged := domain.MergeMinMax(*p.pending[level], pair)
	p.levels[level] = append(p.levels[level], merged)
	p.pending[level] = nil
	p.propagateLocked(level+1, merged)
}

// LevelLength returns the number of entries currently stored at level n
// (n=0 is the raw array length).
func (p *Pyramid) LevelLength(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.levelLengthLocked(n)
}

func (p *Pyramid) levelLengthLocked(n int) int {
	if n == 0 {
		return len(p.level0)
	}
	if n < 0 || n > MaxLevels {
		return 0
	}
	return len(p.levels[n-1])
}

// GetLevel converts [startTS, endTS] to indices at level n via
// elapsed/(sampleInterval<<n), clamps to [0, levelLength), and copies
// into out, returning the count written. Completes in O(result size).
func (p *Pyramid) GetLevel(n int, startTS, endTS domain.Timestamp, out []domain.MinMaxPair) (int, error) {
	if n < 0 || n > MaxLevels {
		return 0, domain.ErrOutOfRange
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	length := p.levelLengthLocked(n)
	if length == 0 {
		return 0, nil
	}

	blockUS := p.sampleIntervalUS << uint(n)
	startIdx := int(startTS / blockUS)
	endIdx := int(endTS / blockUS)

	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx >= length {
		endIdx = length - 1
	}
	if startIdx >= length || endIdx < startIdx {
		return 0, nil
	}

	count := 0
	for i := startIdx; i <= endIdx && count < len(out); i++ {
		if n == 0 {
			v := p.level0[i]
			out[count] = domain.MinMaxPair{Min: v, Max: v}
		} else {
			out[count] = p.levels[n-1][i]
		}
		count++
	}
	return count, nil
}

// SelectLevel picks the finest level (smallest n) whose oversample factor stays at
// most 4 samples per pixel-pair, given the visible time range and
// viewport pixel width (§4.6). Returns 0 for a tiny viewport and clamps
// to MaxLevels.
func SelectLevel(deltaUS, sampleIntervalUS domain.Timestamp, viewportPx int) int {
	if viewportPx <= 0 {
		return 0
	}
	totalSamples := int64(deltaUS) / int64(sampleIntervalUS)

	for n := 0; n <= MaxLevels; n++ {
		if (totalSamples>>uint(n))/int64(viewportPx) <= 4 {
			return n
		}
	}
	return MaxLevels
}
