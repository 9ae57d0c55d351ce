package acquisition

import (
	"context"
	"io"
	"math"

	"github.com/aeegmon/core/internal/domain"
)

// SimulatedSource generates a deterministic synthetic 4-channel feed at
// the fixed 160 Hz sample interval, for tests and the dev harness —
// no randomness, so assertions on its output are reproducible.
type SimulatedSource struct {
	ts         domain.Timestamp
	n          int
	maxSamples int // 0 means unbounded; Sample blocks on ctx instead of EOF
	counter    uint8

	amplitudeUV float64
	freqHz      float64

	// gapEvery, when > 0, marks sample n as Missing on every nth sample
	// (n counted from 1) to exercise gap handling deterministically.
	gapEvery int
}

// NewSimulatedSource creates a source that emits maxSamples samples then
// returns io.EOF. maxSamples <= 0 means it never exhausts on its own —
// the caller must cancel ctx instead, matching a real device source that
// only stops on Close/ctx cancellation.
func NewSimulatedSource(maxSamples int) *SimulatedSource {
	return &SimulatedSource{
		maxSamples:  maxSamples,
		amplitudeUV: 40.0,
		freqHz:      6.0,
	}
}

// WithGapEvery marks every nth sample Missing on all channels, to
// exercise gap/reset handling deterministically in tests.
func (s *SimulatedSource) WithGapEvery(n int) *SimulatedSource {
	s.gapEvery = n
	return s
}

// Open is a no-op: the simulated source needs no handshake.
func (s *SimulatedSource) Open(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *SimulatedSource) Close() error { return nil }

// Sample synthesizes the next sample: a mix of sine components per
// channel standing in for real cortical rhythms, cycling the device
// counter byte 0..229 so callers can exercise the GS histogram's
// counter-driven frame closing (§4.5) end to end.
func (s *SimulatedSource) Sample(ctx context.Context) (domain.EegSample, error) {
	if s.maxSamples > 0 && s.n >= s.maxSamples {
		return domain.EegSample{}, io.EOF
	}

	t := float64(s.ts) / 1e6
	ch1 := s.amplitudeUV * math.Sin(2*math.Pi*s.freqHz*t)
	ch2 := s.amplitudeUV * 0.6 * math.Sin(2*math.Pi*s.freqHz*t+0.7)
	ch3 := s.amplitudeUV * 0.3 * math.Cos(2*math.Pi*s.freqHz*t*1.3)

	quality := [4]domain.QualityFlag{domain.Normal, domain.Normal, domain.Normal, domain.Normal}
	s.n++
	if s.gapEvery > 0 && s.n%s.gapEvery == 0 {
		quality = [4]domain.QualityFlag{domain.Missing, domain.Missing, domain.Missing, domain.Missing}
	}

	sample := domain.NewEegSample(s.ts, ch1, ch2, ch3, quality, s.counter)

	s.ts += domain.SampleIntervalUS
	if s.counter == histogramCounterWrap {
		s.counter = 0
	} else {
		s.counter++
	}
	return sample, nil
}

// histogramCounterWrap matches histogram.CounterCloses: the simulated
// feed closes a GS frame on the same cadence a real device would,
// instead of wrapping at the uint8 boundary (255 is CounterIgnore).
const histogramCounterWrap = 229
