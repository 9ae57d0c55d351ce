// Package filter implements the core's IIR filter bank (C5): biquad
// second-order-section (SOS) cascades in Direct-Form-II-Transposed, with
// a stateful live variant and a stateless zero-phase variant for
// playback. Coefficients are immutable constants keyed by (variant,
// cutoff) — changing a cutoff setting swaps the active Chain instance,
// it never mutates coefficients in place (§4.3).
package filter

// Section is one second-order biquad section:
// y = b0*x + b1*x[-1] + b2*x[-2] - a1*y[-1] - a2*y[-2].
type Section struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Variant names a filter family. Notch/HPF/LPF variants are display/
// acquisition filters; AeegHPF/AeegLPF are the fixed aEEG band-defining
// filters (§4.4).
type Variant int

const (
	VariantNotch Variant = iota
	VariantHPF
	VariantLPF
	VariantAeegHPF
	VariantAeegLPF
)

// String returns a human-readable variant name.
func (v Variant) String() string {
	switch v {
	case VariantNotch:
		return "notch"
	case VariantHPF:
		return "hpf"
	case VariantLPF:
		return "lpf"
	case VariantAeegHPF:
		return "aeeg_hpf"
	case VariantAeegLPF:
		return "aeeg_lpf"
	default:
		return "unknown"
	}
}

// ParseVariant parses the String() form back into a Variant, for
// decoding an externally-supplied coefficient table.
func ParseVariant(s string) (Variant, bool) {
	switch s {
	case "notch":
		return VariantNotch, true
	case "hpf":
		return VariantHPF, true
	case "lpf":
		return VariantLPF, true
	case "aeeg_hpf":
		return VariantAeegHPF, true
	case "aeeg_lpf":
		return VariantAeegLPF, true
	default:
		return 0, false
	}
}

// Key identifies one immutable coefficient set by variant and cutoff
// frequency in Hz (§6: "the core loads them as a read-only table keyed
// by (variant, cutoff)").
type Key struct {
	Variant  Variant
	CutoffHz float64
}

// Spec is one immutable, bit-exact coefficient set: the SOS cascade, the
// scalar gain applied once after the cascade, and the warm-up sample
// count after which output is considered settled.
type Spec struct {
	Sections      []Section
	Gain          float64
	WarmupSamples int
}

// state holds the two history registers for one SOS section.
type state struct {
	Z1, Z2 float64
}

// processSection runs one Direct-Form-II-Transposed biquad step,
// mutating z1/z2 in place and returning the section's output.
func processSection(sec Section, st *state, x float64) float64 {
	y := sec.B0*x + st.Z1
	st.Z1 = sec.B1*x - sec.A1*y + st.Z2
	st.Z2 = sec.B2*x - sec.A2*y
	return y
}
