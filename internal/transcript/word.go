package transcript

import "strings"

// Word is a single recognized token with word-level timing in seconds.
type Word struct {
	Text       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
	// Estimated marks timings that were redistributed rather than recognized.
	Estimated bool `json:"estimated,omitempty"`
}

// Duration returns the word's span in seconds.
func (w Word) Duration() float64 { return w.End - w.Start }

// Segment is a contiguous run of words grouped for translation and synthesis.
type Segment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Duration returns the segment's span in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }

// WordCount returns the number of whitespace-separated tokens in the text.
func (s Segment) WordCount() int { return len(strings.Fields(s.Text)) }

// IsZero reports whether the segment carries no content. The quality
// evaluator treats zero segments as missing translation counterparts.
func (s Segment) IsZero() bool {
	return s.Text == "" && len(s.Words) == 0 && s.Start == 0 && s.End == 0
}

// JoinSegmentText concatenates the text of all segments with single spaces.
func JoinSegmentText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
