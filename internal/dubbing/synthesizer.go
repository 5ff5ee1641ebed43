package dubbing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

// Synthesis limits.
const (
	// MaxTextLength is the per-request character ceiling of the synthesis API.
	MaxTextLength = 4096
	// MaxUnitDurationSeconds caps a single synthesis unit. Longer spans must
	// be segmented before synthesis.
	MaxUnitDurationSeconds = 10.0
	// naturalSpeechRate is the average words-per-minute of unhurried speech,
	// used to estimate how long a text wants to take.
	naturalSpeechRate = 150.0
)

// Speed multiplier bounds. The clamp is a hard invariant; values outside it
// produce unintelligible or robotic output.
const (
	MinSpeed = 0.7
	MaxSpeed = 1.3
)

// SpeechRequest is the provider-facing synthesis call.
type SpeechRequest struct {
	Text           string
	Voice          string
	Instructions   string
	ResponseFormat string
	Speed          float64
}

// Provider performs the remote synthesis call. SynthesizeStream delivers
// audio incrementally on the chunk channel and closes it when the stream is
// exhausted; a terminal failure is sent on the error channel, which stays
// open. The error channel must be buffered so the producer never blocks on
// reporting.
type Provider interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
	SynthesizeStream(ctx context.Context, req SpeechRequest) (<-chan []byte, <-chan error)
}

// Instructions is the assembled directive set for one synthesis call. Clauses
// carry the typed breakdown; Text is the serialized form sent over the wire.
type Instructions struct {
	Clauses []Clause
	Text    string
}

// SyncedAudio is the result of one timed synthesis unit.
type SyncedAudio struct {
	Audio          []byte
	TargetDuration float64
	Speed          float64
	Instructions   Instructions
	Kind           string
	GeneratedAt    time.Time
}

// Synthesizer builds instructions and drives the synthesis provider.
type Synthesizer struct {
	provider Provider
	logger   *slog.Logger
}

// NewSynthesizer wires a synthesis provider. A nil logger disables logging.
func NewSynthesizer(provider Provider, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, logger: logging.NewComponentLogger(logger, "dubbing")}
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// targetWPM is the pace the text must hit to land inside the target window.
func targetWPM(text string, targetDuration float64) float64 {
	if targetDuration <= 0 {
		return naturalSpeechRate
	}
	return float64(wordCount(text)) / (targetDuration / 60.0)
}

// SpeedFor computes the numeric speed multiplier: the ratio of the text's
// natural duration to the target window, clamped to [MinSpeed, MaxSpeed].
func SpeedFor(text string, targetDuration float64) float64 {
	naturalDuration := float64(wordCount(text)) / naturalSpeechRate * 60.0
	ratio := naturalDuration / targetDuration
	if ratio < MinSpeed {
		return MinSpeed
	}
	if ratio > MaxSpeed {
		return MaxSpeed
	}
	return ratio
}

// EstimateNaturalDuration predicts how long the text takes at the source
// material's own speech rate.
func EstimateNaturalDuration(text string, meta transcript.AudioMetadata) float64 {
	rate := meta.SpeechRate
	if rate <= 0 {
		rate = naturalSpeechRate
	}
	return float64(wordCount(text)) / rate * 60.0
}

// BuildInstructions assembles the behavioral directive set for one timed
// synthesis unit.
func BuildInstructions(text string, targetDuration float64, cfg Config, meta transcript.AudioMetadata) Instructions {
	clauses := buildClauses(instructionParams{
		targetDuration:  targetDuration,
		speechRate:      targetWPM(text, targetDuration),
		emotionalTones:  meta.EmotionalTones,
		contentType:     meta.ContentType,
		speakerCount:    len(meta.Speakers),
		backgroundMusic: meta.HasBackgroundMusic,
		config:          cfg,
	})
	return Instructions{Clauses: clauses, Text: serializeClauses(clauses)}
}

// BuildPreviewInstructions assembles directives for an untimed preview: pace
// follows the source material's own rate and a closing clause relaxes strict
// timing in favor of natural flow.
func BuildPreviewInstructions(text string, cfg Config, meta transcript.AudioMetadata) Instructions {
	clauses := buildClauses(instructionParams{
		targetDuration:  EstimateNaturalDuration(text, meta),
		speechRate:      meta.SpeechRate,
		emotionalTones:  meta.EmotionalTones,
		contentType:     meta.ContentType,
		speakerCount:    len(meta.Speakers),
		backgroundMusic: meta.HasBackgroundMusic,
		previewMode:     true,
		config:          cfg,
	})
	return Instructions{Clauses: clauses, Text: serializeClauses(clauses)}
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_text", "text input cannot be empty", nil)
	}
	if length := len([]rune(text)); length > MaxTextLength {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_text",
			fmt.Sprintf("text too long: %d characters, maximum %d", length, MaxTextLength), nil)
	}
	return nil
}

func validateTargetDuration(duration float64) error {
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_duration", "target duration must be positive", nil)
	}
	if duration > MaxUnitDurationSeconds {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_duration",
			fmt.Sprintf("target duration too long: %.1fs, maximum %.1fs", duration, MaxUnitDurationSeconds), nil)
	}
	return nil
}

// GenerateSyncedSpeech synthesizes one text unit timed to targetDuration.
// Validation runs before any provider call.
func (s *Synthesizer) GenerateSyncedSpeech(ctx context.Context, text string, targetDuration float64, cfg Config, meta transcript.AudioMetadata) (SyncedAudio, error) {
	if err := validateText(text); err != nil {
		return SyncedAudio{}, err
	}
	if err := validateTargetDuration(targetDuration); err != nil {
		return SyncedAudio{}, err
	}

	instructions := BuildInstructions(text, targetDuration, cfg, meta)
	speed := SpeedFor(text, targetDuration)

	s.logger.Debug("synthesizing speech", logging.Args(
		logging.Int("words", wordCount(text)),
		logging.Float64("target_duration", targetDuration),
		logging.Float64("speed", speed),
		logging.String("voice", cfg.VoicePreset()))...)

	audio, err := s.provider.Synthesize(ctx, SpeechRequest{
		Text:           text,
		Voice:          cfg.VoicePreset(),
		Instructions:   instructions.Text,
		ResponseFormat: cfg.ResponseFormat(),
		Speed:          speed,
	})
	if err != nil {
		return SyncedAudio{}, services.Wrap(services.ErrProvider, "dubbing", "synthesize", "speech synthesis failed", err)
	}

	return SyncedAudio{
		Audio:          audio,
		TargetDuration: targetDuration,
		Speed:          speed,
		Instructions:   instructions,
		Kind:           "static",
		GeneratedAt:    time.Now(),
	}, nil
}

// Capabilities describes the synthesis surface for status displays.
func (s *Synthesizer) Capabilities() map[string]any {
	return map[string]any{
		"voices":           Voices(),
		"response_formats": ResponseFormats(),
		"max_text_length":  MaxTextLength,
		"max_unit_seconds": MaxUnitDurationSeconds,
		"speed_range":      []float64{MinSpeed, MaxSpeed},
		"wpm_thresholds":   []float64{SlowSpeechThreshold, FastSpeechThreshold},
	}
}
