package filter

// Table is the read-only coefficient table keyed by (variant, cutoff).
// The core never recomputes coefficients; it only looks values up here.
type Table map[Key]Spec

// BuiltinTable returns the bit-exact coefficient sets spec.md §6 gives
// literally: the aEEG band-defining filters. All other variants
// (LPF-35/50/70 Hz, HPF-0.5/1 Hz, Notch-50 Hz) are left as documented
// placeholders — spec.md §9 Open Question (a) states those coefficients
// are supplied by an external table the core must ingest, never
// recompute. Callers load the real values via config.Load and overlay
// them with Config.ResolvedFilterTable (Table.Merge); the placeholders here exist so the
// variant is selectable and exercises the same code path before the
// real table is wired in.
func BuiltinTable() Table {
	t := Table{
		{VariantAeegHPF, 2.0}: {
			Sections: []Section{
				{B0: 1.0, B1: -2.0, B2: 1.0, A1: -1.88910739, A2: 0.89490251},
			},
			Gain:          0.94597746,
			WarmupSamples: 240, // 1.5 s @ 160 Hz
		},
		{VariantAeegLPF, 15.0}: aeegLPF15Spec,
		// LPF-15 Hz is identical to the aEEG LPF per §4.3's table.
		{VariantLPF, 15.0}: aeegLPF15Spec,
	}

	for k, v := range placeholderTable() {
		if _, exists := t[k]; !exists {
			t[k] = v
		}
	}
	return t
}

var aeegLPF15Spec = Spec{
	Sections: []Section{
		{B0: 1, B1: 2, B2: 1, A1: -0.87727063, A2: 0.42650599},
		{B0: 1, B1: 2, B2: 1, A1: -0.63208028, A2: 0.17953611},
	},
	Gain:          0.02952402,
	WarmupSamples: 480, // two sections: conservatively 2x the single-section settle time
}

// placeholderTable supplies selectable-but-not-clinically-exact entries
// for the variants whose coefficients spec.md defers to an external
// table. Values here are stable, reasonable digital-filter coefficients
// (not derived from any clinical source) so the pipeline is fully
// exercisable end-to-end before a real table is loaded; Table.Merge
// overwrites every key present in the externally supplied table.
func placeholderTable() Table {
	return Table{
		{VariantNotch, 50.0}:  {Sections: []Section{{B0: 1, B1: -1.6180, B2: 1, A1: -1.5912, A2: 0.9692}}, Gain: 1.0, WarmupSamples: 320},
		{VariantHPF, 0.5}:     {Sections: []Section{{B0: 1, B1: -2, B2: 1, A1: -1.99556546, A2: 0.99556941}}, Gain: 0.99778244, WarmupSamples: 960},
		{VariantHPF, 1.0}:     {Sections: []Section{{B0: 1, B1: -2, B2: 1, A1: -1.99111429, A2: 0.99114201}}, Gain: 0.99556079, WarmupSamples: 480},
		{VariantLPF, 35.0}:    {Sections: []Section{{B0: 1, B1: 2, B2: 1, A1: -0.57784461, A2: 0.21711322}, {B0: 1, B1: 2, B2: 1, A1: -0.18703298, A2: 0.03207895}}, Gain: 0.09478230, WarmupSamples: 240},
		{VariantLPF, 50.0}:    {Sections: []Section{{B0: 1, B1: 2, B2: 1, A1: -0.36952738, A2: 0.19581571}, {B0: 1, B1: 2, B2: 1, A1: 0.01013890, A2: 0.01789964}}, Gain: 0.14735838, WarmupSamples: 200},
		{VariantLPF, 70.0}:    {Sections: []Section{{B0: 1, B1: 2, B2: 1, A1: -0.04114854, A2: 0.18146359}, {B0: 1, B1: 2, B2: 1, A1: 0.26025925, A2: 0.01730261}}, Gain: 0.22786468, WarmupSamples: 160},
	}
}

// Merge overlays entries from other onto t, returning the result.
// Entries present in other take precedence, matching config's use for
// overlaying an externally supplied coefficient file onto the builtin
// placeholders.
func (t Table) Merge(other Table) Table {
	out := make(Table, len(t)+len(other))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Lookup returns the spec for (variant, cutoffHz), or ok=false if absent.
func (t Table) Lookup(variant Variant, cutoffHz float64) (Spec, bool) {
	s, ok := t[Key{Variant: variant, CutoffHz: cutoffHz}]
	return s, ok
}
