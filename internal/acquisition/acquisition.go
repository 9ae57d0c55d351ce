// Package acquisition binds a device-like sample source to the DSP chain
// that turns raw 160 Hz samples into everything the render layer needs:
// a filtered display history (C4), the aEEG trend (C6), the GS histogram
// (C7) and the LOD pyramid (C8). The acquisition goroutine and the DSP
// goroutine are separated by the double buffer (C3) exactly as spec'd for
// the core's single-producer/single-consumer concurrency model (§5).
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aeegmon/core/internal/aeeg"
	"github.com/aeegmon/core/internal/dbuffer"
	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/filter"
	"github.com/aeegmon/core/internal/histogram"
	"github.com/aeegmon/core/internal/logger"
	"github.com/aeegmon/core/internal/param"
	"github.com/aeegmon/core/internal/pyramid"
	"github.com/aeegmon/core/internal/ring"
	"github.com/aeegmon/core/internal/timebase"
)

// ChannelCount is the fixed channel count the DSP chain processes:
// Ch1-Ch3 physical, Ch4 derived (§2).
const ChannelCount = 4

// DeviceSource is the narrow boundary between the acquisition goroutine
// and whatever actually produces samples — a real serial/USB device, or
// SimulatedSource for tests and the dev harness. It is a deliberately
// narrowed form of the pack's hardware DataSource interfaces: this core
// only ever needs open-once, sample-repeatedly, close-once.
type DeviceSource interface {
	Open(ctx context.Context) error
	// Sample blocks until exactly one EegSample is available, or returns
	// io.EOF when the source is exhausted (only simulated sources do
	// this; a real device source blocks until ctx is cancelled).
	Sample(ctx context.Context) (domain.EegSample, error)
	Close() error
}

// Acquisition runs the producer side: read one sample at a time from a
// DeviceSource, batch them, and Publish into the double buffer. Exactly
// one goroutine may call Run — the dbuffer contract (§4.1).
type Acquisition struct {
	source    DeviceSource
	buf       *dbuffer.Buffer[domain.EegSample]
	batchSize int
	log       *logger.Logger
	clock     *timebase.Session

	audit domain.AuditSink
	alarm domain.AlarmSink
}

// Option configures an Acquisition at construction, matching the
// With*-option shape internal/coordinator and internal/playback use.
type Option func(*Acquisition)

// WithAuditSink attaches the sink Run records MonitoringStart/Stop and
// DeviceLost/DeviceRestored/CRCError/SerialError events to (§6).
func WithAuditSink(sink domain.AuditSink) Option {
	return func(a *Acquisition) { a.audit = sink }
}

// WithAlarmSink attaches the sink sounded when the device source reports
// an error, in addition to the audit event Run always records.
func WithAlarmSink(sink domain.AlarmSink) Option {
	return func(a *Acquisition) { a.alarm = sink }
}

// WithClock overrides the session clock used to stamp audit events. By
// default New creates a fresh timebase.Session.
func WithClock(clock *timebase.Session) Option {
	return func(a *Acquisition) { a.clock = clock }
}

// New creates an acquisition producer publishing into a freshly sized
// double buffer of the given per-slot batch capacity.
func New(source DeviceSource, batchSize int, log *logger.Logger, opts ...Option) *Acquisition {
	if batchSize <= 0 {
		batchSize = 1
	}
	a := &Acquisition{
		source:    source,
		buf:       dbuffer.New[domain.EegSample](batchSize),
		batchSize: batchSize,
		log:       log,
		clock:     timebase.NewSession(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// recordAudit stamps and records one audit event; a no-op if no sink was
// configured via WithAuditSink.
func (a *Acquisition) recordAudit(ctx context.Context, kind domain.AuditKind, detail string) {
	if a.audit == nil {
		return
	}
	event := domain.AuditEvent{TsUS: a.clock.Now(), Kind: kind, Detail: detail}
	if err := a.audit.Record(ctx, event); err != nil {
		a.log.Error("acquisition: audit record: %v", err)
	}
}

// auditKindForSampleErr classifies a DeviceSource.Sample error into one
// of the three acquisition-surface audit kinds (§7): a known CRC or
// serial-transport fault gets its specific kind, anything else (including
// an unrecognized error from a third-party driver) is treated as the
// device having dropped out entirely.
func auditKindForSampleErr(err error) domain.AuditKind {
	switch {
	case errors.Is(err, domain.ErrCRC):
		return domain.CRCError
	case errors.Is(err, domain.ErrSerialFault):
		return domain.SerialError
	default:
		return domain.DeviceLost
	}
}

// Buffer returns the double buffer the DSP side should consume from.
func (a *Acquisition) Buffer() *dbuffer.Buffer[domain.EegSample] {
	return a.buf
}

// Run opens the source and publishes batches of samples until ctx is
// cancelled or the source returns io.EOF. A partially filled batch at
// shutdown is published as-is so no sample is silently dropped. Start and
// stop each record a MonitoringStart/MonitoringStop audit event (§6); a
// Sample error records DeviceLost, CRCError, or SerialError as
// appropriate and sounds the alarm sink if one is attached, and the next
// successful Sample afterward records DeviceRestored.
func (a *Acquisition) Run(ctx context.Context) error {
	if err := a.source.Open(ctx); err != nil {
		return fmt.Errorf("acquisition: open: %w", err)
	}
	defer a.source.Close()

	a.recordAudit(ctx, domain.MonitoringStart, "")
	defer a.recordAudit(context.Background(), domain.MonitoringStop, "")

	batch := make([]domain.EegSample, 0, a.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		copy(a.buf.WriteSlot(), batch)
		err := a.buf.Publish(len(batch), batch[len(batch)-1].Timestamp)
		batch = batch[:0]
		return err
	}

	deviceDown := false
	for {
		select {
		case <-ctx.Done():
			_ = flush()
			return ctx.Err()
		default:
		}

		s, err := a.source.Sample(ctx)
		if err == io.EOF {
			return flush()
		}
		if err != nil {
			a.log.Error("acquisition: sample: %v", err)
			kind := auditKindForSampleErr(err)
			a.recordAudit(ctx, kind, err.Error())
			if a.alarm != nil {
				if alarmErr := a.alarm.SoundAlarm(ctx, kind); alarmErr != nil {
					a.log.Error("acquisition: alarm: %v", alarmErr)
				}
			}
			deviceDown = true
			continue
		}
		if deviceDown {
			a.recordAudit(ctx, domain.DeviceRestored, "")
			deviceDown = false
		}

		batch = append(batch, s)
		if len(batch) == a.batchSize {
			if err := flush(); err != nil {
				a.log.Error("acquisition: publish: %v", err)
			}
		}
	}
}

// DSP owns the consumer side: every published sample flows through the
// display filter chain into the LOD pyramid, then the aEEG pipeline and
// the GS histogram, and finally into the ring history, on a single goroutine
// (§5 forbids any of C4/C5/C6/C7/C8 state from being touched elsewhere).
type DSP struct {
	params  *param.Controller
	table   filter.Table
	aeegP   *aeeg.Pipeline
	ring    *ring.Buffer[domain.EegSample]
	hist    [ChannelCount]*histogram.Channel
	pyr     [ChannelCount]*pyramid.Pyramid
	log     *logger.Logger

	hpf, lpf, notch *filter.Chain
	cached          param.Settings

	onAeegOutput func(ch int, out domain.AeegOutput)
	onGsFrame    func(ch int, frame domain.GsFrame)
}

// NewDSP builds the consumer-side chain. ringCapacity is sized by the
// caller as seconds-of-history x 160 Hz (§4.2's "sized in practice").
func NewDSP(table filter.Table, params *param.Controller, ringCapacity int, log *logger.Logger) (*DSP, error) {
	aeegP, err := aeeg.NewPipeline(table, ChannelCount)
	if err != nil {
		return nil, err
	}

	d := &DSP{
		params: params,
		table:  table,
		aeegP:  aeegP,
		ring:   ring.New[domain.EegSample](ringCapacity),
		log:    log,
	}
	for ch := 0; ch < ChannelCount; ch++ {
		d.hist[ch] = histogram.NewChannel()
		d.pyr[ch] = pyramid.New(domain.SampleIntervalUS)
	}
	d.rebuildChains(params.Current())
	return d, nil
}

// OnAeegOutput registers a callback invoked synchronously each time a
// channel's 1-second aEEG window closes.
func (d *DSP) OnAeegOutput(fn func(ch int, out domain.AeegOutput)) { d.onAeegOutput = fn }

// OnGsFrame registers a callback invoked synchronously each time a
// channel's GS histogram frame closes (device counter == 229).
func (d *DSP) OnGsFrame(fn func(ch int, frame domain.GsFrame)) { d.onGsFrame = fn }

// Ring exposes the filtered display history for the render layer.
func (d *DSP) Ring() *ring.Buffer[domain.EegSample] { return d.ring }

// Pyramid exposes channel ch's LOD pyramid, built from the same
// filtered values stored in Ring.
func (d *DSP) Pyramid(ch int) *pyramid.Pyramid { return d.pyr[ch] }

func (d *DSP) rebuildChains(s param.Settings) {
	if hpfSpec, ok := d.table.Lookup(filter.VariantHPF, s.HPFCutoff); ok {
		d.hpf = filter.NewChain(hpfSpec, ChannelCount)
	} else {
		d.hpf = nil
	}
	if lpfSpec, ok := d.table.Lookup(filter.VariantLPF, s.LPFCutoff); ok {
		d.lpf = filter.NewChain(lpfSpec, ChannelCount)
	} else {
		d.lpf = nil
	}
	if notchSpec, ok := d.table.Lookup(filter.VariantNotch, param.NotchCutoffHz); ok {
		d.notch = filter.NewChain(notchSpec, ChannelCount)
	} else {
		d.notch = nil
	}
	d.cached = s
}

// Process runs one raw sample through the display filter chain, the
// ring history, the aEEG pipeline, the histogram and the pyramid. The
// aEEG pipeline always sees the raw channel value — its own HPF-2/LPF-15
// band is independent of whatever Notch/HPF/LPF the operator has picked
// for on-screen trace smoothing (§4.3 vs §4.4 are two separate filter
// stages, not one shared chain).
func (d *DSP) Process(sample domain.EegSample) {
	settings := d.params.Current()
	if settings != d.cached {
		d.rebuildChains(settings)
	}

	filtered := sample
	for ch := 0; ch < ChannelCount; ch++ {
		raw := channelValue(sample, ch)
		quality := sample.Quality[ch]

		if quality != domain.Missing {
			x := raw
			if d.hpf != nil {
				x = d.hpf.Process(ch, x)
			}
			if settings.NotchOn && d.notch != nil {
				x = d.notch.Process(ch, x)
			}
			if d.lpf != nil {
				x = d.lpf.Process(ch, x)
			}
			setChannelValue(&filtered, ch, x)
			d.pyr[ch].Append(x)
		}

		if out, ok := d.aeegP.Process(ch, sample.Timestamp, raw, quality); ok && d.onAeegOutput != nil {
			d.onAeegOutput(ch, out)
		}
		if quality != domain.Missing {
			if frame, ok := d.hist[ch].Accumulate(sample.Timestamp, d.aeegP.LastRectified(ch), sample.Counter); ok && d.onGsFrame != nil {
				d.onGsFrame(ch, frame)
			}
		}
	}
	d.ring.Write(filtered)
}

// Run polls buf at pollInterval, draining and processing every snapshot
// published since the last poll. It returns when ctx is cancelled.
func (d *DSP) Run(ctx context.Context, buf *dbuffer.Buffer[domain.EegSample], pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = time.Millisecond
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastVersion uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			snap, ok := buf.TrySnapshot(lastVersion)
			if !ok {
				continue
			}
			lastVersion = snap.Version
			for i := 0; i < snap.Count; i++ {
				d.Process(snap.Data[i])
			}
		}
	}
}

func channelValue(s domain.EegSample, ch int) float64 {
	switch ch {
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

func setChannelValue(s *domain.EegSample, ch int, v float64) {
	switch ch {
	case 0:
		s.Ch1 = v
	case 1:
		s.Ch2 = v
	case 2:
		s.Ch3 = v
	default:
		s.Ch4 = v
	}
}
