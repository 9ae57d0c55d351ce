package render

import (
	"github.com/aeegmon/core/internal/aeeg"
	"github.com/aeegmon/core/internal/domain"
)

// aeegGapUS is the maximum gap between consecutive per-second AeegOutput
// points that is still bridged into one band segment; wider gaps break
// the series (§4.9).
const aeegGapUS = domain.Timestamp(2_000_000)

// BandPoint is one rendered aEEG band vertex: the semi-log-mapped y
// pixel for both the lower (min) and upper (max) trace.
type BandPoint struct {
	TsCenter domain.Timestamp
	YMin     float64
	YMax     float64
	Quality  domain.QualityFlag
}

// Series is the aEEG series builder's immutable output snapshot.
type Series struct {
	Points   []BandPoint
	Segments []Segment
}

// BuildSeries maps a span of per-second AeegOutput through the semi-log
// mapper (§4.4) to produce a filled min/max band, segmenting on gaps
// wider than 2 seconds.
func BuildSeries(outputs []domain.AeegOutput, anchors aeeg.SemiLogAnchors, totalHeight float64) Series {
	var out Series
	segStart := -1
	var lastTS domain.Timestamp
	haveLast := false

	flush := func(end int) {
		if segStart >= 0 && end > segStart {
			out.Segments = append(out.Segments, Segment{Start: segStart, Length: end - segStart})
		}
		segStart = -1
	}

	for _, o := range outputs {
		if haveLast && o.TsCenter-lastTS > aeegGapUS {
			flush(len(out.Points))
		}
		if segStart < 0 {
			segStart = len(out.Points)
		}

		out.Points = append(out.Points, BandPoint{
			TsCenter: o.TsCenter,
			YMin:     anchors.MapUVToY(o.MinUV, totalHeight),
			YMax:     anchors.MapUVToY(o.MaxUV, totalHeight),
			Quality:  o.Quality,
		})
		lastTS = o.TsCenter
		haveLast = true
	}
	flush(len(out.Points))

	return out
}
