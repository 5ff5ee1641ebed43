package dubbing

import (
	"fmt"
	"sort"
	"strings"

	"revoice/internal/services"
	"revoice/internal/transcript"
)

var validVoices = map[string]struct{}{
	"alloy": {}, "ash": {}, "ballad": {}, "coral": {}, "echo": {},
	"fable": {}, "nova": {}, "onyx": {}, "sage": {}, "shimmer": {},
}

var validTargetLanguages = map[string]struct{}{
	"fr": {}, "en": {}, "es": {}, "de": {}, "it": {}, "pt": {}, "ru": {},
	"ja": {}, "ko": {}, "zh": {}, "ar": {}, "hi": {}, "nl": {}, "sv": {},
}

var validResponseFormats = map[string]struct{}{
	"wav": {}, "mp3": {}, "opus": {},
}

// Config is the immutable configuration for a dubbing run, covering both the
// translation pass and the synthesis pass. With* operations return modified
// copies and never touch the receiver.
type Config struct {
	targetLanguage        string
	voicePreset           string
	emotionalInstructions string
	enableStreaming       bool
	preserveEmotions      bool
	enableMultiSpeaker    bool
	customPrompts         []string
	qualityThreshold      int
	autoSync              bool
	nativeSpeedControl    bool
	strictTiming          bool
	silencePaddingMillis  float64
	responseFormat        string

	preserveTimestamps    bool
	adaptLengthForDubbing bool
	translationStyle      string
	contentType           transcript.ContentType
	emotionalContext      []string
	characterNames        []string
	technicalTerms        []string
}

// DefaultConfig returns the baseline configuration for a target language:
// coral voice, streaming on, emotions preserved, strict timing.
func DefaultConfig(targetLanguage string) (Config, error) {
	cfg := Config{
		targetLanguage:        strings.ToLower(strings.TrimSpace(targetLanguage)),
		voicePreset:           "coral",
		emotionalInstructions: "Match the emotional tone and speak at natural conversational pace",
		enableStreaming:       true,
		preserveEmotions:      true,
		qualityThreshold:      85,
		autoSync:              true,
		nativeSpeedControl:    true,
		strictTiming:          true,
		silencePaddingMillis:  50.0,
		responseFormat:        "wav",
		preserveTimestamps:    true,
		adaptLengthForDubbing: true,
		translationStyle:      "natural",
		contentType:           transcript.ContentNarration,
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HighQualityConfig raises the quality bar and enables multi-speaker
// adaptation for production dubs.
func HighQualityConfig(targetLanguage string) (Config, error) {
	cfg, err := DefaultConfig(targetLanguage)
	if err != nil {
		return Config{}, err
	}
	cfg.emotionalInstructions = "Match the emotional tone precisely with natural conversational flow and perfect timing"
	cfg.enableMultiSpeaker = true
	cfg.qualityThreshold = 95
	cfg.silencePaddingMillis = 25.0
	return cfg, nil
}

// DialogueOptimizedConfig tunes the configuration for film and TV dialogue.
func DialogueOptimizedConfig(targetLanguage string) (Config, error) {
	cfg, err := DefaultConfig(targetLanguage)
	if err != nil {
		return Config{}, err
	}
	cfg.voicePreset = "nova"
	cfg.emotionalInstructions = "Use natural conversational speech patterns with appropriate pauses and emotional expressiveness"
	cfg.enableMultiSpeaker = true
	cfg.customPrompts = []string{
		"This is film/TV dialogue with natural speech patterns",
		"Maintain natural pauses and breath patterns",
		"Match the emotional intensity of the original performance",
	}
	cfg.qualityThreshold = 90
	cfg.silencePaddingMillis = 75.0
	cfg.contentType = transcript.ContentDialogue
	return cfg, nil
}

func (c Config) validate() error {
	if _, ok := validTargetLanguages[c.targetLanguage]; !ok {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_config",
			fmt.Sprintf("unsupported target language %q (supported: %s)", c.targetLanguage, joinSorted(validTargetLanguages)), nil)
	}
	if _, ok := validVoices[c.voicePreset]; !ok {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_config",
			fmt.Sprintf("unsupported voice preset %q (supported: %s)", c.voicePreset, joinSorted(validVoices)), nil)
	}
	if c.qualityThreshold < 0 || c.qualityThreshold > 100 {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_config",
			fmt.Sprintf("quality threshold %d out of range [0, 100]", c.qualityThreshold), nil)
	}
	if c.silencePaddingMillis < 0 || c.silencePaddingMillis > 1000 {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_config",
			fmt.Sprintf("silence padding %.1fms out of range [0, 1000]", c.silencePaddingMillis), nil)
	}
	if _, ok := validResponseFormats[c.responseFormat]; !ok {
		return services.Wrap(services.ErrValidation, "dubbing", "validate_config",
			fmt.Sprintf("unsupported response format %q (supported: %s)", c.responseFormat, joinSorted(validResponseFormats)), nil)
	}
	return nil
}

func joinSorted(set map[string]struct{}) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}

// WithVoice returns a copy using the given voice preset.
func (c Config) WithVoice(voicePreset string) (Config, error) {
	clone := c
	clone.voicePreset = strings.ToLower(strings.TrimSpace(voicePreset))
	if err := clone.validate(); err != nil {
		return Config{}, err
	}
	return clone, nil
}

// WithCustomPrompts returns a copy with the prompts appended to any already
// configured.
func (c Config) WithCustomPrompts(prompts ...string) Config {
	clone := c
	clone.customPrompts = append(append([]string(nil), c.customPrompts...), prompts...)
	return clone
}

// WithStrictTiming returns a copy with strict timing toggled.
func (c Config) WithStrictTiming(strict bool) Config {
	clone := c
	clone.strictTiming = strict
	return clone
}

// WithEmotionalInstructions returns a copy carrying the free-text emotional
// directive appended after all structured clauses.
func (c Config) WithEmotionalInstructions(instructions string) Config {
	clone := c
	clone.emotionalInstructions = strings.TrimSpace(instructions)
	return clone
}

// WithResponseFormat returns a copy using the given audio container.
func (c Config) WithResponseFormat(format string) (Config, error) {
	clone := c
	clone.responseFormat = strings.ToLower(strings.TrimSpace(format))
	if err := clone.validate(); err != nil {
		return Config{}, err
	}
	return clone, nil
}

// WithContentType returns a copy classified as the given content type.
func (c Config) WithContentType(contentType transcript.ContentType) Config {
	clone := c
	clone.contentType = contentType
	return clone
}

// WithEmotionalContext returns a copy carrying the emotion tags detected in
// the source material.
func (c Config) WithEmotionalContext(tags ...string) Config {
	clone := c
	clone.emotionalContext = append([]string(nil), tags...)
	return clone
}

// WithCharacterNames returns a copy listing names the translator must keep
// unchanged.
func (c Config) WithCharacterNames(names ...string) Config {
	clone := c
	clone.characterNames = append([]string(nil), names...)
	return clone
}

// WithTechnicalTerms returns a copy listing domain vocabulary for the
// translator to handle with care.
func (c Config) WithTechnicalTerms(terms ...string) Config {
	clone := c
	clone.technicalTerms = append([]string(nil), terms...)
	return clone
}

func (c Config) TargetLanguage() string        { return c.targetLanguage }
func (c Config) VoicePreset() string           { return c.voicePreset }
func (c Config) EmotionalInstructions() string { return c.emotionalInstructions }
func (c Config) EnableStreaming() bool         { return c.enableStreaming }
func (c Config) PreserveEmotions() bool        { return c.preserveEmotions }
func (c Config) EnableMultiSpeaker() bool      { return c.enableMultiSpeaker }
func (c Config) QualityThreshold() int         { return c.qualityThreshold }
func (c Config) AutoSync() bool                { return c.autoSync }
func (c Config) NativeSpeedControl() bool      { return c.nativeSpeedControl }
func (c Config) StrictTiming() bool            { return c.strictTiming }
func (c Config) SilencePaddingMillis() float64 { return c.silencePaddingMillis }
func (c Config) ResponseFormat() string        { return c.responseFormat }
func (c Config) PreserveTimestamps() bool      { return c.preserveTimestamps }
func (c Config) AdaptLengthForDubbing() bool   { return c.adaptLengthForDubbing }
func (c Config) TranslationStyle() string      { return c.translationStyle }

func (c Config) ContentType() transcript.ContentType { return c.contentType }

// EmotionalContext returns a copy of the source emotion tags.
func (c Config) EmotionalContext() []string {
	return append([]string(nil), c.emotionalContext...)
}

// CharacterNames returns a copy of the protected name list.
func (c Config) CharacterNames() []string {
	return append([]string(nil), c.characterNames...)
}

// TechnicalTerms returns a copy of the domain vocabulary list.
func (c Config) TechnicalTerms() []string {
	return append([]string(nil), c.technicalTerms...)
}

// CustomPrompts returns a copy of the configured prompt list.
func (c Config) CustomPrompts() []string {
	return append([]string(nil), c.customPrompts...)
}

// OptimizedForDubbing reports whether the configuration meets the bar for
// timing-accurate dubbing output.
func (c Config) OptimizedForDubbing() bool {
	return c.nativeSpeedControl && c.strictTiming && c.preserveEmotions && c.qualityThreshold >= 85
}

// StreamingReady reports whether streaming synthesis can be used as-is.
func (c Config) StreamingReady() bool {
	return c.enableStreaming && c.responseFormat == "wav"
}

// Voices returns the supported voice presets in sorted order.
func Voices() []string {
	values := make([]string, 0, len(validVoices))
	for v := range validVoices {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// ResponseFormats returns the supported audio containers in sorted order.
func ResponseFormats() []string {
	values := make([]string, 0, len(validResponseFormats))
	for v := range validResponseFormats {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
