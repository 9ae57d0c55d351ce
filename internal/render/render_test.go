package render

import (
	"testing"

	"github.com/aeegmon/core/internal/aeeg"
	"github.com/aeegmon/core/internal/domain"
)

func normalSample(ts domain.Timestamp, ch1 float64) domain.EegSample {
	return domain.EegSample{
		Timestamp: ts,
		Ch1:       ch1,
		Quality:   [4]domain.QualityFlag{domain.Normal, domain.Normal, domain.Normal, domain.Normal},
	}
}

func missingSample(ts domain.Timestamp) domain.EegSample {
	return domain.EegSample{
		Timestamp: ts,
		Quality:   [4]domain.QualityFlag{domain.Missing, domain.Missing, domain.Missing, domain.Missing},
	}
}

func TestUVToPxScalesInverselyWithGain(t *testing.T) {
	dpi := 96.0
	p10 := UVToPx(Gain10, dpi)
	p100 := UVToPx(Gain100, dpi)
	if p10 <= p100 {
		t.Fatalf("expected lower gain to produce more pixels/uV: p10=%v p100=%v", p10, p100)
	}
}

func TestPolylineShortGapDoesNotBreakSegment(t *testing.T) {
	samples := []domain.EegSample{
		normalSample(0, 5), missingSample(6250), missingSample(12500), normalSample(18750, 6),
	}
	out := BuildPolyline(samples, 0, Gain10, 96, 0, 200)
	if len(out.Segments) != 1 {
		t.Fatalf("expected 1 segment for a 2-sample gap, got %d", len(out.Segments))
	}
	if len(out.Gaps) != 0 {
		t.Fatalf("expected no recorded gap for a run <= 4, got %d", len(out.Gaps))
	}
}

func TestPolylineLongGapBreaksSegment(t *testing.T) {
	samples := []domain.EegSample{normalSample(0, 5)}
	for i := 1; i <= 5; i++ {
		samples = append(samples, missingSample(domain.Timestamp(i)*domain.SampleIntervalUS))
	}
	samples = append(samples, normalSample(6*domain.SampleIntervalUS, 6))

	out := BuildPolyline(samples, 0, Gain10, 96, 0, 200)
	if len(out.Segments) != 2 {
		t.Fatalf("expected 2 segments across a 5-sample gap, got %d", len(out.Segments))
	}
	if len(out.Gaps) != 1 {
		t.Fatalf("expected exactly one recorded gap, got %d", len(out.Gaps))
	}
}

func TestPolylineFlagsSaturation(t *testing.T) {
	samples := []domain.EegSample{normalSample(0, 50), normalSample(6250, 250)}
	out := BuildPolyline(samples, 0, Gain10, 96, 0, 200)
	if len(out.SaturationIndices) != 1 || out.SaturationIndices[0] != 1 {
		t.Fatalf("expected index 1 flagged saturated, got %v", out.SaturationIndices)
	}
}

func TestPolylineZeroInterpolationNeverBridgesValues(t *testing.T) {
	samples := []domain.EegSample{normalSample(0, 5), missingSample(6250), normalSample(12500, 7)}
	out := BuildPolyline(samples, 0, Gain10, 96, 0, 200)
	if len(out.Points) != 2 {
		t.Fatalf("expected missing sample to contribute no point, got %d points", len(out.Points))
	}
}

func TestSeriesSegmentsOnLargeGap(t *testing.T) {
	outputs := []domain.AeegOutput{
		{TsCenter: 0, MinUV: 1, MaxUV: 2},
		{TsCenter: 1_000_000, MinUV: 1, MaxUV: 2},
		{TsCenter: 4_000_000, MinUV: 1, MaxUV: 2}, // 3s gap > 2s threshold
	}
	s := BuildSeries(outputs, aeeg.DefaultSemiLogAnchors(), 200)
	if len(s.Segments) != 2 {
		t.Fatalf("expected 2 segments across a 3s gap, got %d", len(s.Segments))
	}
}

func TestSeriesMapsThroughSemiLog(t *testing.T) {
	outputs := []domain.AeegOutput{{TsCenter: 0, MinUV: 0, MaxUV: 100}}
	s := BuildSeries(outputs, aeeg.DefaultSemiLogAnchors(), 200)
	if len(s.Points) != 1 {
		t.Fatal("expected one point")
	}
	if s.Points[0].YMin != 200 || s.Points[0].YMax != 0 {
		t.Fatalf("expected min->bottom(200), max(100uV)->top(0), got %+v", s.Points[0])
	}
}
