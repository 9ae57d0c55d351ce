package filter

// ProcessBlockZeroPhase applies spec's cascade forward over in, reverses,
// applies again, reverses (for playback; §4.3). State is fresh per call
// and never touches a live Chain's state. Edge effects are mitigated by
// padding with reflected samples of length 3 x section-count x 2.
func ProcessBlockZeroPhase(spec Spec, in []float64, out []float64) {
	n := len(in)
	if n == 0 {
		return
	}

	padLen := 3 * len(spec.Sections) * 2
	if padLen > n-1 {
		padLen = n - 1
	}
	if padLen < 0 {
		padLen = 0
	}

	padded := reflectPad(in, padLen)

	fwd := make([]float64, len(padded))
	forwardPass(spec, padded, fwd)

	reverseInPlace(fwd)

	back := make([]float64, len(fwd))
	forwardPass(spec, fwd, back)

	reverseInPlace(back)

	copy(out, back[padLen:padLen+n])
}

// forwardPass runs spec's cascade over x with fresh per-section state,
// independent of any live Chain.
func forwardPass(spec Spec, x []float64, out []float64) {
	st := make([]state, len(spec.Sections))
	for i, v := range x {
		y := v
		for s := range spec.Sections {
			y = processSection(spec.Sections[s], &st[s], y)
		}
		out[i] = y * spec.Gain
	}
}

// reflectPad mirrors samples at both edges of x (excluding the edge
// sample itself, so no sample is duplicated) to produce a length
// n+2*padLen array used to absorb filter transients at the boundaries.
func reflectPad(x []float64, padLen int) []float64 {
	n := len(x)
	out := make([]float64, n+2*padLen)
	for i := 0; i < padLen; i++ {
		out[i] = x[padLen-i]
	}
	copy(out[padLen:padLen+n], x)
	for i := 0; i < padLen; i++ {
		out[padLen+n+i] = x[n-2-i]
	}
	return out
}

func reverseInPlace(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
