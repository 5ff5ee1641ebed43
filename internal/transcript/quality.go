package transcript

import "math"

// Quality scoring constants. Deductions are sized so a segment can lose both
// checks and still contribute a positive score.
const (
	// structuralMismatchScore is returned when segment counts differ; no
	// per-segment comparison is attempted.
	structuralMismatchScore = 0.5
	// timestampTolerance is the start-time drift allowed before the sync
	// deduction applies.
	timestampTolerance = 0.1
	timestampPenalty   = 0.3
	// Acceptable dubbing expansion/contraction band for translated text length.
	lengthRatioMin = 0.7
	lengthRatioMax = 1.4
	lengthPenalty  = 0.2
)

// SegmentScore is the per-segment breakdown of a quality evaluation.
type SegmentScore struct {
	Index          int     `json:"index"`
	Score          float64 `json:"score"`
	TimestampDrift float64 `json:"timestamp_drift"`
	LengthRatio    float64 `json:"length_ratio"`
	Missing        bool    `json:"missing,omitempty"`
}

// QualityReport carries the aggregate score plus the per-segment breakdown.
type QualityReport struct {
	Score    float64        `json:"score"`
	Segments []SegmentScore `json:"segments,omitempty"`
}

// EvaluateTranslationQuality scores a translated segment batch against its
// source for timestamp drift and length adaptation. A structural mismatch in
// segment counts returns the fixed 0.5 penalty immediately. Missing translated
// counterparts are skipped from the accumulated sum but still counted in the
// averaging denominator; that bias is preserved intentionally.
func EvaluateTranslationQuality(original, translated []Segment) QualityReport {
	if len(original) != len(translated) {
		return QualityReport{Score: structuralMismatchScore}
	}

	segmentCount := len(original)
	if segmentCount == 0 {
		return QualityReport{Score: 0}
	}

	report := QualityReport{Segments: make([]SegmentScore, 0, segmentCount)}
	total := 0.0

	for i, source := range original {
		counterpart := translated[i]
		if counterpart.IsZero() {
			report.Segments = append(report.Segments, SegmentScore{Index: i, Missing: true})
			continue
		}

		score := 1.0

		drift := math.Abs(counterpart.Start - source.Start)
		if drift > timestampTolerance {
			score -= timestampPenalty
		}

		ratio := 1.0
		if len(source.Text) > 0 {
			ratio = float64(len(counterpart.Text)) / float64(len(source.Text))
		}
		if ratio < lengthRatioMin || ratio > lengthRatioMax {
			score -= lengthPenalty
		}

		total += score
		report.Segments = append(report.Segments, SegmentScore{
			Index:          i,
			Score:          score,
			TimestampDrift: drift,
			LengthRatio:    ratio,
		})
	}

	report.Score = total / float64(segmentCount)
	return report
}
