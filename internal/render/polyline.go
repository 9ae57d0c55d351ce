// Package render builds the immutable render-data snapshots consumed by
// the render thread (C11): a gap-segmented EEG polyline and an aEEG
// semi-log band. Both builders run off the render thread and allocate
// freely; the render thread itself performs no further computation on
// their output (§4.9, §5).
package render

import (
	"github.com/aeegmon/core/internal/domain"
)

// Gain is one of the enumerated trace gains in uV/cm (§4.10).
type Gain int

// Valid gain settings. Swapping the active gain never rescales stored
// data; it only changes uv_to_px for future polyline builds.
const (
	Gain10   Gain = 10
	Gain20   Gain = 20
	Gain50   Gain = 50
	Gain70   Gain = 70
	Gain100  Gain = 100
	Gain200  Gain = 200
	Gain1000 Gain = 1000
)

// ValidGains lists every enumerated gain in ascending order.
var ValidGains = []Gain{Gain10, Gain20, Gain50, Gain70, Gain100, Gain200, Gain1000}

// IsValidGain reports whether g is one of the enumerated settings.
func IsValidGain(g Gain) bool {
	for _, v := range ValidGains {
		if v == g {
			return true
		}
	}
	return false
}

// UVToPx converts a gain (uV/cm) and display density (dpi) into pixels
// per microvolt: (dpi / 2.54 cm-per-inch) / gain.
func UVToPx(gain Gain, dpi float64) float64 {
	return (dpi / 2.54) / float64(gain)
}

// maxGapSamples is the largest run of consecutive missing samples that
// is still bridged as one segment; 4 samples at 6250us = exactly 25ms,
// so a run longer than this (the 5th consecutive missing sample) breaks
// the polyline (§4.9).
const maxGapSamples = 4

// Point is one rendered polyline vertex.
type Point struct {
	Index  int
	YPixel float64
}

// Segment is a contiguous run of Points, given as (start, length) into
// the Points slice.
type Segment struct {
	Start, Length int
}

// Polyline is the polyline builder's immutable output snapshot.
type Polyline struct {
	Points            []Point
	Segments          []Segment
	Gaps              []int // indices into the source span where a break begins
	SaturationIndices []int
}

// BuildPolyline renders one channel of a windowed sample span at the
// given gain and saturation threshold (in uV). Zero interpolation: a
// run of more than maxGapSamples consecutive Missing samples breaks the
// polyline into a new segment rather than bridging it (iron law 2).
func BuildPolyline(samples []domain.EegSample, channel int, gain Gain, dpi, baselinePx, saturationThresholdUV float64) Polyline {
	pxPerUV := UVToPx(gain, dpi)

	var out Polyline
	segStart := -1
	missingRun := 0

	flush := func(end int) {
		if segStart >= 0 && end > segStart {
			out.Segments = append(out.Segments, Segment{Start: segStart, Length: end - segStart})
		}
		segStart = -1
	}

	for i, s := range samples {
		if s.Quality[channel] == domain.Missing {
			missingRun++
			if missingRun == maxGapSamples+1 {
				flush(len(out.Points))
				out.Gaps = append(out.Gaps, i-maxGapSamples)
			}
			continue
		}
		missingRun = 0

		uv := channelUV(s, channel)
		if segStart < 0 {
			segStart = len(out.Points)
		}
		if abs(uv) >= saturationThresholdUV {
			out.SaturationIndices = append(out.SaturationIndices, i)
		}
		out.Points = append(out.Points, Point{Index: i, YPixel: baselinePx - uv*pxPerUV})
	}
	flush(len(out.Points))

	return out
}

func channelUV(s domain.EegSample, channel int) float64 {
	switch channel {
	case 0:
		return s.Ch1
	case 1:
		return s.Ch2
	case 2:
		return s.Ch3
	default:
		return s.Ch4
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
