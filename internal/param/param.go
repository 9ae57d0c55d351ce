// Package param implements runtime parameter control (C13): enumerated
// gain/LPF/HPF/notch settings with an atomic double-buffered swap and
// one audit event per change.
package param

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/render"
)

// Valid LPF and HPF cutoffs (§4.10). Changing either swaps the active
// filter.Chain instance looked up from the table; it never mutates
// coefficients in place.
var (
	ValidLPFCutoffsHz = []float64{15, 35, 50, 70}
	ValidHPFCutoffsHz = []float64{0.5, 1.0}
)

// NotchCutoffHz is the single fixed notch frequency; only on/off toggles.
const NotchCutoffHz = 50.0

func isValidCutoff(hz float64, set []float64) bool {
	for _, v := range set {
		if v == hz {
			return true
		}
	}
	return false
}

// Settings is one immutable snapshot of the enumerated parameters. A new
// Settings value is built and atomically swapped in on every change
// (§4.10); the DSP and render threads each read Current() once per tick.
type Settings struct {
	Gain      render.Gain
	LPFCutoff float64
	HPFCutoff float64
	NotchOn   bool
}

func (s Settings) validate() error {
	if !render.IsValidGain(s.Gain) {
		return fmt.Errorf("%w: gain %v", domain.ErrOutOfRange, s.Gain)
	}
	if !isValidCutoff(s.LPFCutoff, ValidLPFCutoffsHz) {
		return fmt.Errorf("%w: LPF cutoff %v", domain.ErrOutOfRange, s.LPFCutoff)
	}
	if !isValidCutoff(s.HPFCutoff, ValidHPFCutoffsHz) {
		return fmt.Errorf("%w: HPF cutoff %v", domain.ErrOutOfRange, s.HPFCutoff)
	}
	return nil
}

// DefaultSettings returns a clinically unremarkable starting point:
// mid gain, widest LPF passband, lowest HPF cutoff, notch off.
func DefaultSettings() Settings {
	return Settings{Gain: render.Gain100, LPFCutoff: 70, HPFCutoff: 0.5, NotchOn: false}
}

// Controller holds the live Settings behind an atomic pointer and emits
// one audit event to sink per accepted change (§4.10b).
type Controller struct {
	current atomic.Pointer[Settings]
	sink    domain.AuditSink
}

// New creates a controller seeded with initial, rejecting invalid values.
func New(initial Settings, sink domain.AuditSink) (*Controller, error) {
	if err := initial.validate(); err != nil {
		return nil, err
	}
	c := &Controller{sink: sink}
	c.current.Store(&initial)
	return c, nil
}

// Current returns the active settings snapshot.
func (c *Controller) Current() Settings {
	return *c.current.Load()
}

func (c *Controller) swap(ctx context.Context, kind domain.AuditKind, next Settings, oldVal, newVal, detail string, nowWallUS domain.Timestamp) error {
	if err := next.validate(); err != nil {
		return err
	}
	c.current.Store(&next)
	if c.sink == nil {
		return nil
	}
	return c.sink.Record(ctx, domain.AuditEvent{TsUS: nowWallUS, Kind: kind, Old: oldVal, New: newVal, Detail: detail})
}

// SetGain swaps the active gain, used by the polyline builder's uv_to_px.
// nowWallUS stamps the resulting audit event (§6), the same explicit
// wall-clock-reading convention playback.Clock and coordinator.Tick use.
func (c *Controller) SetGain(ctx context.Context, gain render.Gain, nowWallUS domain.Timestamp) error {
	old := c.Current()
	next := old
	next.Gain = gain
	return c.swap(ctx, domain.GainChange, next, fmt.Sprint(old.Gain), fmt.Sprint(gain), "", nowWallUS)
}

// SetLPFCutoff swaps the active LPF filter.Chain instance.
func (c *Controller) SetLPFCutoff(ctx context.Context, hz float64, nowWallUS domain.Timestamp) error {
	old := c.Current()
	next := old
	next.LPFCutoff = hz
	return c.swap(ctx, domain.FilterChange, next, fmt.Sprint(old.LPFCutoff), fmt.Sprint(hz), "LPF", nowWallUS)
}

// SetHPFCutoff swaps the active HPF filter.Chain instance.
func (c *Controller) SetHPFCutoff(ctx context.Context, hz float64, nowWallUS domain.Timestamp) error {
	old := c.Current()
	next := old
	next.HPFCutoff = hz
	return c.swap(ctx, domain.FilterChange, next, fmt.Sprint(old.HPFCutoff), fmt.Sprint(hz), "HPF", nowWallUS)
}

// SetNotch toggles the fixed 50Hz notch stage in the chain.
func (c *Controller) SetNotch(ctx context.Context, on bool, nowWallUS domain.Timestamp) error {
	old := c.Current()
	next := old
	next.NotchOn = on
	return c.swap(ctx, domain.FilterChange, next, fmt.Sprint(old.NotchOn), fmt.Sprint(on), "Notch", nowWallUS)
}
