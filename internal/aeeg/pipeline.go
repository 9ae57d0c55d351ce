// Package aeeg implements the core's amplitude-integrated EEG pipeline
// (C6): band-pass 2-15 Hz, half-wave rectify, 1-second min/max envelope,
// and the semi-log display mapping consumed by the render builders (C11).
package aeeg

import (
	"math"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/filter"
)

// WarmupSamples is the settle period after start or a gap: 1.5 s @ 160 Hz.
const WarmupSamples = 240

// WindowSamples is the envelope window: 1 s @ 160 Hz.
const WindowSamples = 160

// Pipeline runs the band-pass -> rectify -> envelope stages per channel.
// It owns no lock; the core's single DSP thread is its sole producer.
type Pipeline struct {
	hpf *filter.Chain // aEEG HPF-2 Hz
	lpf *filter.Chain // aEEG LPF-15 Hz

	channels int

	warmupRemaining []int
	windowCount     []int
	windowMin       []float64
	windowMax       []float64
	windowStartTS   []domain.Timestamp
	lastRectified   []float64
}

// NewPipeline builds an aEEG pipeline for the given channel count, using
// the fixed aEEG HPF-2/LPF-15 specs from table (BuiltinTable satisfies
// this; the entries are bit-exact constants, never externally replaced).
func NewPipeline(table filter.Table, channels int) (*Pipeline, error) {
	hpfSpec, ok := table.Lookup(filter.VariantAeegHPF, 2.0)
	if !ok {
		return nil, domain.ErrNotReady
	}
	lpfSpec, ok := table.Lookup(filter.VariantAeegLPF, 15.0)
	if !ok {
		return nil, domain.ErrNotReady
	}

	p := &Pipeline{
		hpf:             filter.NewChain(hpfSpec, channels),
		lpf:             filter.NewChain(lpfSpec, channels),
		channels:        channels,
		warmupRemaining: make([]int, channels),
		windowCount:     make([]int, channels),
		windowMin:       make([]float64, channels),
		windowMax:       make([]float64, channels),
		windowStartTS:   make([]domain.Timestamp, channels),
		lastRectified:   make([]float64, channels),
	}
	for ch := 0; ch < channels; ch++ {
		p.warmupRemaining[ch] = WarmupSamples
	}
	return p, nil
}

// ResetChannel clears filter state and restarts warm-up for one channel,
// e.g. on a detected gap (§4.4: "the first 240 samples after start or gap
// are flagged Warming").
func (p *Pipeline) ResetChannel(ch int) {
	p.hpf.ResetChannel(ch)
	p.lpf.ResetChannel(ch)
	p.warmupRemaining[ch] = WarmupSamples
	p.windowCount[ch] = 0
	p.windowMin[ch] = 0
	p.windowMax[ch] = 0
}

// LastRectified returns the most recent per-sample rectified amplitude
// for channel ch, independent of window/warm-up state. The GS histogram
// (C7) is fed from this instantaneous stream, not from AeegOutput, since
// it accumulates every sample rather than once per window (§4.5).
func (p *Pipeline) LastRectified(ch int) float64 {
	return p.lastRectified[ch]
}

// Process feeds one raw EEG sample for channel ch through the band-pass
// and rectifier, accumulates it into the current 1-second envelope
// window, and returns an AeegOutput with ok=true exactly when a window
// closes. Samples arriving during warm-up are processed (to settle
// filter state) but never close a window early — they simply do not
// count toward the window if still warming.
func (p *Pipeline) Process(ch int, ts domain.Timestamp, x float64, quality domain.QualityFlag) (domain.AeegOutput, bool) {
	if quality == domain.Missing {
		p.ResetChannel(ch)
		return domain.AeegOutput{}, false
	}

	y := p.hpf.Process(ch, x)
	y = p.lpf.Process(ch, y)
	rectified := math.Abs(y)
	p.lastRectified[ch] = rectified

	if p.warmupRemaining[ch] > 0 {
		p.warmupRemaining[ch]--
		return domain.AeegOutput{}, false
	}

	if p.windowCount[ch] == 0 {
		p.windowStartTS[ch] = ts
		p.windowMin[ch] = rectified
		p.windowMax[ch] = rectified
	} else {
		if rectified < p.windowMin[ch] {
			p.windowMin[ch] = rectified
		}
		if rectified > p.windowMax[ch] {
			p.windowMax[ch] = rectified
		}
	}
	p.windowCount[ch]++

	if p.windowCount[ch] < WindowSamples {
		return domain.AeegOutput{}, false
	}

	out := domain.AeegOutput{
		TsCenter: p.windowStartTS[ch] + (ts-p.windowStartTS[ch])/2,
		MinUV:    p.windowMin[ch],
		MaxUV:    p.windowMax[ch],
		Quality:  quality,
	}
	p.windowCount[ch] = 0
	return out, true
}
