package transcript_test

import (
	"fmt"
	"strings"
	"testing"

	"revoice/internal/transcript"
)

func makeWords(count int, wordDuration float64) []transcript.Word {
	words := make([]transcript.Word, 0, count)
	for i := 0; i < count; i++ {
		start := float64(i) * wordDuration
		words = append(words, transcript.Word{
			Text:  fmt.Sprintf("word%d", i),
			Start: start,
			End:   start + wordDuration,
		})
	}
	return words
}

func TestSegmentWordsEmptyInput(t *testing.T) {
	if got := transcript.SegmentWords(nil, 0); len(got) != 0 {
		t.Fatalf("expected no segments, got %d", len(got))
	}
}

func TestSegmentWordsPreservesWordOrder(t *testing.T) {
	words := makeWords(57, 0.3)
	segments := transcript.SegmentWords(words, 17.1)

	var rebuilt []string
	for _, seg := range segments {
		rebuilt = append(rebuilt, seg.Text)
	}
	joined := strings.Join(rebuilt, " ")

	var original []string
	for _, w := range words {
		original = append(original, w.Text)
	}
	if joined != strings.Join(original, " ") {
		t.Fatalf("segmented text does not reproduce input:\n%s", joined)
	}
}

func TestSegmentWordsRespectsThresholds(t *testing.T) {
	words := makeWords(100, 0.25)
	segments := transcript.SegmentWords(words, 25)

	for _, seg := range segments {
		if len(seg.Words) == 1 {
			continue // single overflowing word is allowed any duration
		}
		if seg.Duration() >= transcript.MaxSegmentSeconds+0.25 {
			t.Fatalf("segment %d spans %.2fs", seg.ID, seg.Duration())
		}
		if len(seg.Words) > transcript.MaxSegmentWords {
			t.Fatalf("segment %d holds %d words", seg.ID, len(seg.Words))
		}
	}
}

func TestSegmentWordsClosesOnWordCount(t *testing.T) {
	// Short words never hit the duration threshold, so the word ceiling rules.
	words := makeWords(45, 0.1)
	segments := transcript.SegmentWords(words, 4.5)

	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if len(segments[0].Words) != transcript.MaxSegmentWords {
		t.Fatalf("first segment holds %d words", len(segments[0].Words))
	}
	if len(segments[2].Words) != 5 {
		t.Fatalf("tail segment holds %d words", len(segments[2].Words))
	}
}

func TestSegmentWordsNoWordIsSplit(t *testing.T) {
	// One word longer than the duration ceiling stays intact.
	words := []transcript.Word{
		{Text: "loooong", Start: 0, End: 9.5},
		{Text: "after", Start: 9.5, End: 9.8},
	}
	segments := transcript.SegmentWords(words, 9.8)

	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Text != "loooong after" {
		t.Fatalf("text = %q", segments[0].Text)
	}
}

func TestSegmentWordsBoundaryScenario(t *testing.T) {
	// 22 words over 9.2 seconds: the first segment closes once its cumulative
	// duration first reaches 8 seconds, the remainder flushes as a second.
	wordDuration := 9.2 / 22.0
	words := makeWords(22, wordDuration)
	segments := transcript.SegmentWords(words, 9.2)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Duration() < transcript.MaxSegmentSeconds {
		t.Fatalf("first segment closed early at %.2fs", segments[0].Duration())
	}
	prior := segments[0].Duration() - wordDuration
	if prior >= transcript.MaxSegmentSeconds {
		t.Fatalf("first segment closed late: %.2fs before final word", prior)
	}
	if segments[0].ID != 0 || segments[1].ID != 1 {
		t.Fatalf("segment ids = %d, %d", segments[0].ID, segments[1].ID)
	}
}

func TestSegmentWordsIsPure(t *testing.T) {
	words := makeWords(30, 0.4)
	first := transcript.SegmentWords(words, 12)
	second := transcript.SegmentWords(words, 12)

	if len(first) != len(second) {
		t.Fatalf("segment counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Text != second[i].Text || first[i].Start != second[i].Start || first[i].End != second[i].End {
			t.Fatalf("segment %d differs between runs", i)
		}
	}
}
