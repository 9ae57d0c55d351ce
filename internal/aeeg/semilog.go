package aeeg

import "math"

// SemiLogAnchors configures the aEEG semi-log display mapping (§4.4):
// the lower half of the display height is linear over [0, LinearMaxUV],
// the upper half is log10 over [LinearMaxUV, LogMaxUV]. Anchors are
// configurable only within medically accepted bounds; the documented
// default anchors are 10, 25, 50, 75, 100 (LinearMaxUV=10, LogMaxUV=100).
type SemiLogAnchors struct {
	LinearMaxUV float64
	LogMaxUV    float64
}

// DefaultSemiLogAnchors returns the spec's documented default anchors.
func DefaultSemiLogAnchors() SemiLogAnchors {
	return SemiLogAnchors{LinearMaxUV: 10, LogMaxUV: 100}
}

// MapUVToY maps an amplitude in microvolts to a display y-coordinate in
// [0, totalHeight], where y=0 is the top (LogMaxUV) and y=totalHeight is
// the bottom (0 uV). uv < 0 maps to NaN; uv >= 0 is always defined (values
// above LogMaxUV extrapolate along the same log curve rather than
// clamping, since the core never substitutes values on overrange input).
func (a SemiLogAnchors) MapUVToY(uv, totalHeight float64) float64 {
	if uv < 0 {
		return math.NaN()
	}

	half := totalHeight / 2
	if uv <= a.LinearMaxUV {
		return totalHeight - (uv/a.LinearMaxUV)*half
	}

	logSpan := math.Log10(a.LogMaxUV) - math.Log10(a.LinearMaxUV)
	frac := (math.Log10(uv) - math.Log10(a.LinearMaxUV)) / logSpan
	return half - frac*half
}

// MapYToUV is the inverse of MapUVToY: given a display y-coordinate in
// [0, totalHeight], returns the amplitude in microvolts. Satisfies the
// round-trip invariant MapUVToY(MapYToUV(y)) == y within 1e-9 for
// y in [0, totalHeight] (§8 property 5).
func (a SemiLogAnchors) MapYToUV(y, totalHeight float64) float64 {
	half := totalHeight / 2
	if y >= half {
		return (totalHeight - y) / half * a.LinearMaxUV
	}

	frac := (half - y) / half
	logSpan := math.Log10(a.LogMaxUV) - math.Log10(a.LinearMaxUV)
	return a.LinearMaxUV * math.Pow(10, frac*logSpan)
}
