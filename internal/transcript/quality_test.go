package transcript_test

import (
	"math"
	"testing"

	"revoice/internal/transcript"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEvaluateTranslationQualityIdenticalBatch(t *testing.T) {
	segments := []transcript.Segment{
		{ID: 0, Text: "Hello world", Start: 0, End: 2.5},
		{ID: 1, Text: "How are you", Start: 2.5, End: 4.8},
	}
	report := transcript.EvaluateTranslationQuality(segments, segments)

	if !almostEqual(report.Score, 1.0) {
		t.Fatalf("score = %v, want 1.0", report.Score)
	}
	for _, seg := range report.Segments {
		if !almostEqual(seg.Score, 1.0) {
			t.Fatalf("segment %d score = %v", seg.Index, seg.Score)
		}
	}
}

func TestEvaluateTranslationQualityCountMismatch(t *testing.T) {
	original := []transcript.Segment{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1, End: 2},
	}
	translated := []transcript.Segment{
		{Text: "un", Start: 0, End: 1},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Score, 0.5) {
		t.Fatalf("score = %v, want 0.5", report.Score)
	}
	if len(report.Segments) != 0 {
		t.Fatalf("expected no per-segment breakdown, got %d entries", len(report.Segments))
	}
}

func TestEvaluateTranslationQualityEmptyInput(t *testing.T) {
	report := transcript.EvaluateTranslationQuality(nil, nil)
	if report.Score != 0 {
		t.Fatalf("score = %v, want 0", report.Score)
	}
}

func TestEvaluateTranslationQualityLengthExpansion(t *testing.T) {
	// 11-byte original against a 35-byte translation with matching timestamps
	// trips only the length deduction.
	original := []transcript.Segment{
		{Text: "Hello world", Start: 0, End: 2.5},
	}
	translated := []transcript.Segment{
		{Text: "Bonjour le monde entier aujourd'hui", Start: 0, End: 2.5},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Score, 0.8) {
		t.Fatalf("score = %v, want 0.8", report.Score)
	}
	seg := report.Segments[0]
	if seg.LengthRatio < 1.4 {
		t.Fatalf("length ratio = %v, expected expansion beyond 1.4", seg.LengthRatio)
	}
	if seg.TimestampDrift != 0 {
		t.Fatalf("timestamp drift = %v, want 0", seg.TimestampDrift)
	}
}

func TestEvaluateTranslationQualityTimestampDrift(t *testing.T) {
	original := []transcript.Segment{
		{Text: "Hello world", Start: 0, End: 2.5},
	}
	translated := []transcript.Segment{
		{Text: "Salut monde", Start: 0.25, End: 2.75},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Score, 0.7) {
		t.Fatalf("score = %v, want 0.7", report.Score)
	}
}

func TestEvaluateTranslationQualityBothDeductions(t *testing.T) {
	original := []transcript.Segment{
		{Text: "Hello world", Start: 0, End: 2.5},
	}
	translated := []transcript.Segment{
		{Text: "Bonjour le monde entier aujourd'hui", Start: 0.5, End: 3.0},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Score, 0.5) {
		t.Fatalf("score = %v, want 0.5", report.Score)
	}
}

func TestEvaluateTranslationQualityMissingCounterpart(t *testing.T) {
	// A missing counterpart contributes nothing to the sum but stays in the
	// denominator, dragging the average down.
	original := []transcript.Segment{
		{Text: "one", Start: 0, End: 1},
		{Text: "two", Start: 1, End: 2},
	}
	translated := []transcript.Segment{
		{Text: "un", Start: 0, End: 1},
		{},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Score, 0.5) {
		t.Fatalf("score = %v, want 0.5", report.Score)
	}
	if len(report.Segments) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(report.Segments))
	}
	if !report.Segments[1].Missing {
		t.Fatal("second segment not flagged missing")
	}
}

func TestEvaluateTranslationQualityEmptySourceText(t *testing.T) {
	// A zero-length source text skips the ratio computation instead of
	// dividing by zero.
	original := []transcript.Segment{
		{Text: "", Start: 0, End: 1},
	}
	translated := []transcript.Segment{
		{Text: "quelque chose", Start: 0, End: 1},
	}
	report := transcript.EvaluateTranslationQuality(original, translated)

	if !almostEqual(report.Segments[0].LengthRatio, 1.0) {
		t.Fatalf("length ratio = %v, want 1.0", report.Segments[0].LengthRatio)
	}
	if !almostEqual(report.Score, 1.0) {
		t.Fatalf("score = %v, want 1.0", report.Score)
	}
}
