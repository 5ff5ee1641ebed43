package dubbing

import (
	"fmt"
	"strings"

	"revoice/internal/transcript"
)

// ClauseKind identifies which rule produced an instruction clause. Clause
// selection stays testable independently of the serialized string.
type ClauseKind string

const (
	ClausePace            ClauseKind = "pace"
	ClauseEmotion         ClauseKind = "emotion"
	ClauseContent         ClauseKind = "content"
	ClauseSpeakerPatterns ClauseKind = "speaker_patterns"
	ClauseTiming          ClauseKind = "timing"
	ClauseBackgroundMusic ClauseKind = "background_music"
	ClauseCustom          ClauseKind = "custom"
	ClauseEmotionalFree   ClauseKind = "emotional_free"
	ClausePreview         ClauseKind = "preview"
)

// Clause is one behavioral directive for the synthesis model.
type Clause struct {
	Kind ClauseKind
	Text string
}

// Speech pace thresholds in words per minute.
const (
	SlowSpeechThreshold = 140.0
	FastSpeechThreshold = 180.0
)

func paceClause(wpm float64) Clause {
	switch {
	case wpm < SlowSpeechThreshold:
		return Clause{ClausePace, "Speak slowly and deliberately to match the timing"}
	case wpm > FastSpeechThreshold:
		return Clause{ClausePace, "Speak quickly but clearly to fit the duration"}
	default:
		return Clause{ClausePace, "Speak at a natural, conversational pace"}
	}
}

var emotionClauses = map[string]string{
	"concerned": "Express concern and worry in your voice",
	"excited":   "Sound enthusiastic and energetic",
	"sad":       "Convey sadness and melancholy",
	"joyful":    "Speak with happiness and joy",
	"angry":     "Express controlled anger and intensity",
	"calm":      "Maintain a calm and peaceful tone",
	"serious":   "Use a serious and focused delivery",
	"playful":   "Add playful and lighthearted energy",
}

func emotionClause(tag string) Clause {
	if text, ok := emotionClauses[tag]; ok {
		return Clause{ClauseEmotion, text}
	}
	return Clause{ClauseEmotion, "Maintain a natural and authentic emotional tone"}
}

var contentClauses = map[transcript.ContentType]string{
	transcript.ContentDialogue:     "Use natural conversational speech patterns with appropriate pauses",
	transcript.ContentNarration:    "Use a clear, authoritative narration style",
	transcript.ContentNews:         "Adopt a professional news broadcaster tone",
	transcript.ContentInterview:    "Use natural interview conversation style",
	transcript.ContentPresentation: "Deliver with presentation clarity and engagement",
}

// instructionParams collects everything clause assembly depends on.
type instructionParams struct {
	targetDuration  float64
	speechRate      float64
	emotionalTones  []string
	contentType     transcript.ContentType
	speakerCount    int
	backgroundMusic bool
	previewMode     bool
	config          Config
}

// buildClauses assembles the ordered clause list: pace, emotions, content
// type, strict timing, background music, custom prompts, free-text emotional
// directive, then the preview relaxation.
func buildClauses(p instructionParams) []Clause {
	var clauses []Clause

	clauses = append(clauses, paceClause(p.speechRate))

	if p.config.PreserveEmotions() {
		for _, tone := range p.emotionalTones {
			clauses = append(clauses, emotionClause(tone))
		}
	}

	if text, ok := contentClauses[p.contentType]; ok {
		clauses = append(clauses, Clause{ClauseContent, text})
		if p.contentType == transcript.ContentDialogue && p.speakerCount > 1 {
			clauses = append(clauses, Clause{ClauseSpeakerPatterns, "Adapt to character-specific speech patterns"})
		}
	}

	if p.config.StrictTiming() {
		clauses = append(clauses, Clause{
			ClauseTiming,
			fmt.Sprintf("Adjust your pace to complete this text in exactly %g seconds", p.targetDuration),
		})
	}

	if p.backgroundMusic {
		clauses = append(clauses, Clause{ClauseBackgroundMusic, "Project your voice clearly to cut through background music"})
	}

	for _, prompt := range p.config.CustomPrompts() {
		clauses = append(clauses, Clause{ClauseCustom, prompt})
	}

	if directive := p.config.EmotionalInstructions(); directive != "" {
		clauses = append(clauses, Clause{ClauseEmotionalFree, directive})
	}

	if p.previewMode {
		clauses = append(clauses, Clause{ClausePreview, "This is a preview - prioritize natural flow over strict timing"})
	}

	return clauses
}

// serializeClauses renders the clause list into the free-text instruction
// string sent to the synthesis model.
func serializeClauses(clauses []Clause) string {
	if len(clauses) == 0 {
		return ""
	}
	parts := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		parts = append(parts, clause.Text)
	}
	return strings.Join(parts, ". ") + "."
}
