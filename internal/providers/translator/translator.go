// Package translator wraps the segment-translation provider API. Translated
// segments echo the source timestamps so dubbing stays in sync.
package translator

import (
	"context"
	"fmt"
	"math"
	"strings"

	"revoice/internal/dubbing"
	"revoice/internal/media"
	"revoice/internal/providers"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

const (
	// MaxSegmentsPerBatch caps one translation request.
	MaxSegmentsPerBatch = 50
	// timestampDriftTolerance is how far an echoed timestamp may move before
	// the response is rejected as unusable for dubbing.
	timestampDriftTolerance = 0.001
	// costPerMillionTokens is the provider's published rate in USD.
	costPerMillionTokens = 0.075
	maxCompletionTokens  = 4000
)

// Client calls the translation endpoint.
type Client struct {
	transport *providers.Client
}

// NewClient wraps the shared transport for translation calls.
func NewClient(cfg providers.Config, opts ...providers.Option) *Client {
	return &Client{transport: providers.NewClient(cfg, opts...)}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type translatedSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"startTime"`
	End   float64 `json:"endTime"`
	Notes string  `json:"translation_notes"`
}

type translationPayload struct {
	Segments []translatedSegment `json:"segments"`
}

// Translate sends the segment batch for translation and returns segments
// with the same ids and timestamps carrying translated text. Word timings
// are redistributed across each segment since the original word data no
// longer matches the translated words.
func (c *Client) Translate(ctx context.Context, segments []transcript.Segment, targetLanguage string, cfg dubbing.Config) ([]transcript.Segment, error) {
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "translator", "translate", "no segments to translate", nil)
	}
	if len(segments) > MaxSegmentsPerBatch {
		return nil, services.Wrap(services.ErrValidation, "translator", "translate",
			fmt.Sprintf("batch of %d segments exceeds maximum of %d", len(segments), MaxSegmentsPerBatch), nil)
	}
	lang, err := media.ParseLanguage(targetLanguage)
	if err != nil {
		return nil, err
	}

	request := chatRequest{
		Model: c.transport.Model(),
		Messages: []chatMessage{
			{Role: "system", Content: buildSystemPrompt(lang, cfg)},
			{Role: "user", Content: formatSegments(segments)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.3,
		MaxTokens:      optimalTokens(segments),
	}

	body, err := c.transport.PostJSON(ctx, "/chat/completions", request)
	if err != nil {
		return nil, services.Wrap(services.ErrProvider, "translator", "translate", "translation request failed", err)
	}

	var response chatResponse
	if err := providers.DecodeModelJSON(string(body), &response); err != nil {
		return nil, services.Wrap(services.ErrProvider, "translator", "translate", "decode translation response", err)
	}
	if response.Error != nil {
		return nil, services.Wrap(services.ErrProvider, "translator", "translate",
			fmt.Sprintf("api error: %s", strings.TrimSpace(response.Error.Message)), nil)
	}
	if len(response.Choices) == 0 {
		return nil, services.Wrap(services.ErrProvider, "translator", "translate", "empty choices in translation response", nil)
	}

	return parseAndValidate(response.Choices[0].Message.Content, segments)
}

// HealthCheck verifies the endpoint is reachable and credentials are usable
// by probing the models listing.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.transport.Get(ctx, "/models"); err != nil {
		return services.Wrap(services.ErrProvider, "translator", "health_check", "translation endpoint unavailable", err)
	}
	return nil
}

func parseAndValidate(content string, originals []transcript.Segment) ([]transcript.Segment, error) {
	var payload translationPayload
	if err := providers.DecodeModelJSON(content, &payload.Segments); err != nil {
		// The model sometimes wraps the array in an object.
		if objErr := providers.DecodeModelJSON(content, &payload); objErr != nil {
			return nil, services.Wrap(services.ErrProvider, "translator", "parse_response", "invalid JSON from translation model", err)
		}
	}
	if len(payload.Segments) != len(originals) {
		return nil, services.Wrap(services.ErrProvider, "translator", "parse_response",
			fmt.Sprintf("expected %d segments, model returned %d", len(originals), len(payload.Segments)), nil)
	}

	translated := make([]transcript.Segment, 0, len(originals))
	for i, seg := range payload.Segments {
		source := originals[i]
		if math.Abs(seg.Start-source.Start) > timestampDriftTolerance {
			return nil, services.Wrap(services.ErrProvider, "translator", "parse_response",
				fmt.Sprintf("segment %d start time drifted from %.3f to %.3f", source.ID, source.Start, seg.Start), nil)
		}
		if math.Abs(seg.End-source.End) > timestampDriftTolerance {
			return nil, services.Wrap(services.ErrProvider, "translator", "parse_response",
				fmt.Sprintf("segment %d end time drifted from %.3f to %.3f", source.ID, source.End, seg.End), nil)
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			return nil, services.Wrap(services.ErrProvider, "translator", "parse_response",
				fmt.Sprintf("segment %d translated to empty text", source.ID), nil)
		}
		translated = append(translated, transcript.Segment{
			ID:    source.ID,
			Text:  text,
			Start: source.Start,
			End:   source.End,
			Words: transcript.RedistributeWordTimings(source, text),
		})
	}
	return translated, nil
}

func buildSystemPrompt(target media.Language, cfg dubbing.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert translator specializing in dubbing and voice-over work for films, TV shows, and multimedia content.

CRITICAL MISSION: Translate audio segments to %s while preserving perfect synchronization for dubbing.

CORE REQUIREMENTS:
1. PRESERVE EXACT TIMESTAMPS: Keep all startTime and endTime values unchanged
2. MAINTAIN NATURAL FLOW: Ensure translations sound natural when spoken aloud`, target.DisplayName())

	if cfg.AdaptLengthForDubbing() {
		b.WriteString("\n3. ADAPT LENGTH: Adjust translation length to fit timing constraints for dubbing")
	}
	b.WriteString("\n4. PRESERVE EMOTION: Maintain emotional tone and intensity of the original")

	b.WriteString("\n\nSPECIFIC INSTRUCTIONS:")
	if cfg.StrictTiming() {
		b.WriteString("\n- STRICT TIMING: Prioritize fitting exact duration over literal accuracy")
		b.WriteString("\n- For segments <1s: Use very short translations (1-2 words max)")
		b.WriteString("\n- For segments >5s: Can use more elaborate expressions")
	}
	if tags := cfg.EmotionalContext(); len(tags) > 0 {
		fmt.Fprintf(&b, "\n- EMOTIONAL CONTEXT: The content contains these emotions: %s", strings.Join(tags, ", "))
		fmt.Fprintf(&b, "\n- Preserve and enhance emotional expression in %s", target.DisplayName())
	}
	if names := cfg.CharacterNames(); len(names) > 0 {
		fmt.Fprintf(&b, "\n- CHARACTER NAMES: Keep these names unchanged: %s", strings.Join(names, ", "))
	}
	if terms := cfg.TechnicalTerms(); len(terms) > 0 {
		fmt.Fprintf(&b, "\n- TECHNICAL TERMS: Translate appropriately: %s", strings.Join(terms, ", "))
	}
	if style := cfg.TranslationStyle(); style != "" {
		fmt.Fprintf(&b, "\n- STYLE: Favor a %s register throughout", style)
	}

	fmt.Fprintf(&b, `

OUTPUT FORMAT (JSON):
Return a JSON object {"segments": [...]} where each entry has this EXACT structure:
{
    "id": segment_id_number,
    "text": "translated_text_in_%s",
    "startTime": original_start_time_unchanged,
    "endTime": original_end_time_unchanged,
    "translation_notes": "brief_adaptation_explanation"
}`, target.Code())

	return b.String()
}

func formatSegments(segments []transcript.Segment) string {
	var b strings.Builder
	b.WriteString("SEGMENTS TO TRANSLATE:\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "Segment %d:\n", seg.ID)
		fmt.Fprintf(&b, "Text: %q\n", seg.Text)
		fmt.Fprintf(&b, "Duration: %.2fs (%d words)\n", seg.Duration(), seg.WordCount())
		fmt.Fprintf(&b, "Timing: %gs -> %gs\n", seg.Start, seg.End)
		if len(seg.Words) > 0 {
			b.WriteString("Word-level timing available for dubbing sync\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func optimalTokens(segments []transcript.Segment) int {
	tokens := 500
	for _, seg := range segments {
		tokens += len(seg.Text) / 2
	}
	if tokens*2 > maxCompletionTokens {
		return maxCompletionTokens
	}
	return tokens * 2
}

// EstimateCost approximates the translation cost in USD from the batch's
// character count: roughly 4 characters per token, with a 2.5x factor for the
// system prompt and JSON response overhead.
func EstimateCost(segments []transcript.Segment) float64 {
	characters := 0
	for _, seg := range segments {
		characters += len(seg.Text) + 1
	}
	estimatedTokens := float64(characters) / 4.0
	totalTokens := estimatedTokens * 2.5
	return totalTokens / 1_000_000 * costPerMillionTokens
}

// Capabilities describes the translation surface for status displays.
func Capabilities() map[string]any {
	return map[string]any{
		"preserves_segment_timestamps": true,
		"supports_emotional_context":   true,
		"supports_character_names":     true,
		"supports_technical_terms":     true,
		"supports_timing_adaptation":   true,
		"max_segments_per_batch":       MaxSegmentsPerBatch,
	}
}
