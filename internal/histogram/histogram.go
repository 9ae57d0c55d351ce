// Package histogram implements the core's GS amplitude-distribution
// histogram (C7): 230 saturating-counter bins accumulated from the
// aEEG-rectified stream, closed into a frame on a device-provided
// counter byte rather than wall-clock alone.
package histogram

import (
	"math"

	"github.com/aeegmon/core/internal/domain"
)

// Bin layout constants. These numbers are invariant (§4.5) and must
// never be "optimised" or parameterised away.
const (
	TotalBins      = 230
	LinearBins     = 100
	LogBins        = 130
	LinearMaxUV    = 10.0
	SaturationUV   = 200.0
	BinCap         = 249
	CounterIgnore  = 255
	CounterCloses  = 229
	SaturatedIndex = TotalBins - 1 // bin 229
)

// BinIndex returns the bin a rectified amplitude (in uV) falls into.
// Amplitudes >= SaturationUV clamp to SaturatedIndex.
func BinIndex(uv float64) int {
	if uv < 0 {
		uv = 0
	}
	if uv < LinearMaxUV {
		idx := int(uv / (LinearMaxUV / LinearBins))
		if idx >= LinearBins {
			idx = LinearBins - 1
		}
		return idx
	}
	if uv >= SaturationUV {
		return SaturatedIndex
	}

	logSpan := math.Log10(SaturationUV) - math.Log10(LinearMaxUV)
	frac := (math.Log10(uv) - math.Log10(LinearMaxUV)) / logSpan
	idx := LinearBins + int(frac*LogBins)
	if idx >= TotalBins {
		idx = SaturatedIndex
	}
	if idx < LinearBins {
		idx = LinearBins
	}
	return idx
}

// Channel accumulates one channel's GS histogram frames, cycling through
// the Collecting -> (counter=229) -> Emitting -> Collecting state machine
// synchronously within each Accumulate call. Owned exclusively by the
// single DSP producer thread (§5).
type Channel struct {
	bins       [TotalBins]uint8
	startTS    domain.Timestamp
	lastTS     domain.Timestamp
	frameIndex int
	started    bool
}

// NewChannel creates an empty GS histogram accumulator.
func NewChannel() *Channel {
	return &Channel{}
}

// Accumulate feeds one rectified amplitude sample with its device
// counter byte. It returns a closed GsFrame with ok=true exactly when
// counter == 229 closes the current frame.
//
//   - counter == 255: the sample is ignored entirely (not counted).
//   - counter == 229: the sample is accumulated, then the frame closes.
//   - any other value: the sample is accumulated into its bin.
func (c *Channel) Accumulate(ts domain.Timestamp, uv float64, counter uint8) (domain.GsFrame, bool) {
	if counter == CounterIgnore {
		return domain.GsFrame{}, false
	}

	if !c.started {
		c.startTS = ts
		c.started = true
	}
	c.lastTS = ts

	idx := BinIndex(uv)
	if c.bins[idx] < BinCap {
		c.bins[idx]++
	}

	if counter != CounterCloses {
		return domain.GsFrame{}, false
	}

	frame := domain.GsFrame{
		FrameIndex: c.frameIndex,
		StartTS:    c.startTS,
		EndTS:      c.lastTS,
		Bins:       c.bins,
	}

	c.frameIndex++
	c.bins = [TotalBins]uint8{}
	c.started = false
	return frame, true
}
