package transcript

import "strings"

// ContentType classifies the speech content for synthesis steering.
type ContentType string

const (
	ContentDialogue     ContentType = "dialogue"
	ContentNarration    ContentType = "narration"
	ContentNews         ContentType = "news"
	ContentInterview    ContentType = "interview"
	ContentPresentation ContentType = "presentation"
)

// ParseContentType normalizes a content type tag. Unknown tags are returned
// as-is with ok=false so callers can apply their generic fallback.
func ParseContentType(value string) (ContentType, bool) {
	normalized := ContentType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ContentDialogue, ContentNarration, ContentNews, ContentInterview, ContentPresentation:
		return normalized, true
	default:
		return normalized, false
	}
}

// Speech rate category boundaries in words per minute.
const (
	slowRateCeiling   = 120.0
	normalRateCeiling = 160.0
	fastRateCeiling   = 200.0
)

// Pause is a gap between consecutive segments long enough to matter for
// synthesis pacing.
type Pause struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

// minPauseSeconds is the gap length below which silence between segments is
// treated as ordinary articulation rather than a pause.
const minPauseSeconds = 0.5

// AudioMetadata captures derived characteristics of the source audio used to
// steer translation and synthesis. Immutable; With* operations return copies.
type AudioMetadata struct {
	SourceLanguage     string      `json:"source_language"`
	TargetLanguage     string      `json:"target_language,omitempty"`
	DurationSeconds    float64     `json:"duration_seconds"`
	SpeechRate         float64     `json:"speech_rate"`
	ContentType        ContentType `json:"content_type"`
	Speakers           []string    `json:"speakers,omitempty"`
	TechnicalTerms     []string    `json:"technical_terms,omitempty"`
	EmotionalTones     []string    `json:"emotional_tones,omitempty"`
	Pauses             []Pause     `json:"pauses,omitempty"`
	HasBackgroundMusic bool        `json:"has_background_music,omitempty"`
	NoiseLevel         float64     `json:"noise_level,omitempty"`
}

// FromRecognition derives metadata from recognized segments: average speech
// rate over the spoken span and pauses longer than half a second between
// consecutive segments.
func FromRecognition(segments []Segment, durationSeconds float64, sourceLanguage string) AudioMetadata {
	meta := AudioMetadata{
		SourceLanguage:  strings.ToLower(strings.TrimSpace(sourceLanguage)),
		DurationSeconds: durationSeconds,
		ContentType:     ContentNarration,
	}

	wordCount := 0
	for _, seg := range segments {
		wordCount += seg.WordCount()
	}
	if durationSeconds > 0 {
		meta.SpeechRate = float64(wordCount) / (durationSeconds / 60.0)
	}

	for i := 1; i < len(segments); i++ {
		gap := segments[i].Start - segments[i-1].End
		if gap > minPauseSeconds {
			meta.Pauses = append(meta.Pauses, Pause{Position: segments[i-1].End, Duration: gap})
		}
	}

	return meta
}

// SpeechRateCategory buckets the average speech rate for prompt construction.
func (m AudioMetadata) SpeechRateCategory() string {
	switch {
	case m.SpeechRate < slowRateCeiling:
		return "slow"
	case m.SpeechRate < normalRateCeiling:
		return "normal"
	case m.SpeechRate < fastRateCeiling:
		return "fast"
	default:
		return "very_fast"
	}
}

// WithSpeakers returns a copy carrying the identified speaker list.
func (m AudioMetadata) WithSpeakers(speakers []string) AudioMetadata {
	clone := m
	clone.Speakers = append([]string(nil), speakers...)
	return clone
}

// WithTechnicalTerms returns a copy carrying domain vocabulary to preserve.
func (m AudioMetadata) WithTechnicalTerms(terms []string) AudioMetadata {
	clone := m
	clone.TechnicalTerms = append([]string(nil), terms...)
	return clone
}

// WithEmotionalTones returns a copy carrying detected emotional tone tags.
func (m AudioMetadata) WithEmotionalTones(tones []string) AudioMetadata {
	clone := m
	clone.EmotionalTones = append([]string(nil), tones...)
	return clone
}

// WithContentType returns a copy carrying the classified content type.
func (m AudioMetadata) WithContentType(contentType ContentType) AudioMetadata {
	clone := m
	clone.ContentType = contentType
	return clone
}

// WithTargetLanguage returns a copy carrying the translation target.
func (m AudioMetadata) WithTargetLanguage(language string) AudioMetadata {
	clone := m
	clone.TargetLanguage = strings.ToLower(strings.TrimSpace(language))
	return clone
}
