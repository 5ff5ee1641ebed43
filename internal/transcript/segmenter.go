package transcript

// Segment grouping thresholds tuned for translation batch sizes.
const (
	// MaxSegmentSeconds closes a segment once its span reaches this duration.
	MaxSegmentSeconds = 8.0
	// MaxSegmentWords closes a segment once it holds this many words.
	MaxSegmentWords = 20
)

// SegmentWords groups a flat word-timestamp stream into translation-sized
// segments. The pass is greedy: each word is appended to the open segment,
// and the segment closes once it spans MaxSegmentSeconds or holds
// MaxSegmentWords. Boundaries are only drawn after a word lands, so no word
// is ever split across segments and a single overflowing word stays intact.
// The function is pure; totalDuration is accepted for contract compatibility
// with recognizer output but does not influence grouping.
func SegmentWords(words []Word, totalDuration float64) []Segment {
	_ = totalDuration

	var segments []Segment
	var current *Segment
	segmentID := 0

	for _, word := range words {
		if current == nil {
			current = &Segment{
				ID:    segmentID,
				Text:  word.Text,
				Start: word.Start,
				End:   word.End,
				Words: []Word{word},
			}
			continue
		}

		current.Text += " " + word.Text
		current.End = word.End
		current.Words = append(current.Words, word)

		if current.Duration() >= MaxSegmentSeconds || len(current.Words) >= MaxSegmentWords {
			segments = append(segments, *current)
			segmentID++
			current = nil
		}
	}

	if current != nil {
		segments = append(segments, *current)
	}

	return segments
}
