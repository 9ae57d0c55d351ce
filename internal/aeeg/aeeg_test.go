package aeeg

import (
	"math"
	"testing"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/filter"
)

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestWarmupSuppressesEarlyOutput(t *testing.T) {
	p, err := NewPipeline(filter.BuiltinTable(), 4)
	if err != nil {
		t.Fatal(err)
	}

	emitted := 0
	for i := 0; i < WarmupSamples; i++ {
		ts := domain.Timestamp(i) * domain.SampleIntervalUS
		if _, ok := p.Process(0, ts, 5.0, domain.Normal); ok {
			emitted++
		}
	}
	if emitted != 0 {
		t.Fatalf("expected no output during warm-up, got %d", emitted)
	}
}

func TestOneOutputPerWindow(t *testing.T) {
	p, err := NewPipeline(filter.BuiltinTable(), 1)
	if err != nil {
		t.Fatal(err)
	}

	emissions := 0
	total := WarmupSamples + WindowSamples*3
	for i := 0; i < total; i++ {
		ts := domain.Timestamp(i) * domain.SampleIntervalUS
		if _, ok := p.Process(0, ts, 3.0, domain.Normal); ok {
			emissions++
		}
	}
	if emissions != 3 {
		t.Fatalf("expected 3 window emissions, got %d", emissions)
	}
}

func TestGapRestartsWarmup(t *testing.T) {
	p, err := NewPipeline(filter.BuiltinTable(), 1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < WarmupSamples+WindowSamples; i++ {
		ts := domain.Timestamp(i) * domain.SampleIntervalUS
		p.Process(0, ts, 2.0, domain.Normal)
	}

	// Gap.
	p.Process(0, 0, 0, domain.Missing)

	emitted := false
	for i := 0; i < WarmupSamples; i++ {
		ts := domain.Timestamp(i) * domain.SampleIntervalUS
		if _, ok := p.Process(0, ts, 2.0, domain.Normal); ok {
			emitted = true
		}
	}
	if emitted {
		t.Fatalf("expected warm-up to restart after gap")
	}
}

func TestSemiLogNegativeUVIsNaN(t *testing.T) {
	anchors := DefaultSemiLogAnchors()
	if math.IsNaN(anchors.MapUVToY(-1, 100)) != true {
		t.Fatalf("expected NaN for negative uv")
	}
}

func TestSemiLogRoundTrip(t *testing.T) {
	anchors := DefaultSemiLogAnchors()
	totalHeight := 200.0

	for _, y := range []float64{0, 10, 50, 100, 150, 199} {
		uv := anchors.MapYToUV(y, totalHeight)
		gotY := anchors.MapUVToY(uv, totalHeight)
		if !approxEqual(gotY, y, 1e-9) {
			t.Fatalf("round trip failed for y=%v: uv=%v gotY=%v", y, uv, gotY)
		}
	}

	for _, uv := range []float64{0, 5, 10, 25, 50, 75, 100} {
		y := anchors.MapUVToY(uv, totalHeight)
		gotUV := anchors.MapYToUV(y, totalHeight)
		if !approxEqual(gotUV, uv, 1e-9) {
			t.Fatalf("round trip failed for uv=%v: y=%v gotUV=%v", uv, y, gotUV)
		}
	}
}

func TestSemiLogContinuousAtBoundary(t *testing.T) {
	anchors := DefaultSemiLogAnchors()
	totalHeight := 100.0

	below := anchors.MapUVToY(anchors.LinearMaxUV-1e-9, totalHeight)
	at := anchors.MapUVToY(anchors.LinearMaxUV, totalHeight)
	above := anchors.MapUVToY(anchors.LinearMaxUV+1e-9, totalHeight)

	if !approxEqual(below, at, 1e-6) || !approxEqual(at, above, 1e-6) {
		t.Fatalf("discontinuity at linear/log boundary: below=%v at=%v above=%v", below, at, above)
	}
}
