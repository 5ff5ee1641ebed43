package dubbing

import (
	"context"
	"fmt"

	"revoice/internal/logging"
	"revoice/internal/transcript"
)

// BatchSegment is one unit of a batch synthesis request. TargetDuration of
// zero means "estimate from the source speech rate". Position takes "start"
// or "end" to add framing directives; other values add nothing.
type BatchSegment struct {
	Text           string
	TargetDuration float64
	Emotion        string
	Speaker        string
	Position       string
}

// Content complexity buckets derived from average words per segment.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// GlobalContext summarizes a whole batch so per-segment synthesis stays
// coherent across the sequence.
type GlobalContext struct {
	TotalWords           int
	EmotionalProgression []string
	SpeakerChanges       int
	ContentComplexity    string
	GlobalPace           string
	VariationNeeded      bool
	PausePreservation    bool
}

// BatchError records a failed segment without aborting the batch.
type BatchError struct {
	Index   int
	Segment string
	Err     error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Index, e.Err)
}

func (e BatchError) Unwrap() error { return e.Err }

// BatchResult aggregates per-segment outcomes. Results is keyed by the
// segment's index in the request so gaps left by failed segments stay
// visible. Quality is the fraction of segments that synthesized.
type BatchResult struct {
	Results       map[int]SyncedAudio
	TotalDuration float64
	Errors        []BatchError
	Quality       float64
}

// HasErrors reports whether any segment failed.
func (r BatchResult) HasErrors() bool { return len(r.Errors) > 0 }

// AnalyzeGlobalContext derives batch-wide pacing and complexity signals
// before any segment is synthesized.
func AnalyzeGlobalContext(segments []BatchSegment, meta transcript.AudioMetadata) GlobalContext {
	gc := GlobalContext{
		GlobalPace:        meta.SpeechRateCategory(),
		VariationNeeded:   len(segments) > 10,
		PausePreservation: len(meta.Pauses) > 0,
	}

	for _, seg := range segments {
		gc.TotalWords += wordCount(seg.Text)
		if seg.Emotion != "" {
			gc.EmotionalProgression = append(gc.EmotionalProgression, seg.Emotion)
		}
		if seg.Speaker != "" {
			gc.SpeakerChanges++
		}
	}

	gc.ContentComplexity = contentComplexity(segments)
	return gc
}

func contentComplexity(segments []BatchSegment) string {
	if len(segments) == 0 {
		return ComplexitySimple
	}
	total := 0
	for _, seg := range segments {
		total += wordCount(seg.Text)
	}
	average := float64(total) / float64(len(segments))
	switch {
	case average < 10:
		return ComplexitySimple
	case average < 25:
		return ComplexityMedium
	default:
		return ComplexityComplex
	}
}

// configForSegment layers per-segment adjustments over the base config:
// framing directives for the first and last segments and an emphasis
// directive for a non-neutral segment emotion.
func configForSegment(base Config, seg BatchSegment) Config {
	cfg := base

	switch seg.Position {
	case "start":
		cfg = cfg.WithEmotionalInstructions(cfg.EmotionalInstructions() + " Start with clear introduction energy.")
	case "end":
		cfg = cfg.WithEmotionalInstructions(cfg.EmotionalInstructions() + " Conclude with appropriate closure.")
	}

	if seg.Emotion != "" && seg.Emotion != "neutral" {
		cfg = cfg.WithEmotionalInstructions(
			fmt.Sprintf("Emphasize %s emotion while %s", seg.Emotion, cfg.EmotionalInstructions()))
	}

	return cfg
}

// GenerateBatchSyncedSpeech synthesizes a segment sequence in order. Failed
// segments are recorded with their index and text and never abort the batch.
func (s *Synthesizer) GenerateBatchSyncedSpeech(ctx context.Context, segments []BatchSegment, cfg Config, meta transcript.AudioMetadata) BatchResult {
	result := BatchResult{Results: make(map[int]SyncedAudio, len(segments))}
	if len(segments) == 0 {
		return result
	}

	globalContext := AnalyzeGlobalContext(segments, meta)
	s.logger.Info("starting synthesis batch", logging.Args(
		logging.Int("segments", len(segments)),
		logging.Int("total_words", globalContext.TotalWords),
		logging.String("complexity", globalContext.ContentComplexity))...)

	for index, segment := range segments {
		targetDuration := segment.TargetDuration
		if targetDuration <= 0 {
			targetDuration = EstimateNaturalDuration(segment.Text, meta)
		}

		audio, err := s.GenerateSyncedSpeech(ctx, segment.Text, targetDuration, configForSegment(cfg, segment), meta)
		if err != nil {
			result.Errors = append(result.Errors, BatchError{Index: index, Segment: segment.Text, Err: err})
			logging.WarnWithContext(s.logger, "segment synthesis failed", "synthesis_segment_failed",
				logging.Int("index", index),
				logging.Error(err),
				logging.String(logging.FieldImpact, "segment skipped, batch continues"))
			continue
		}

		result.Results[index] = audio
		result.TotalDuration += audio.TargetDuration
	}

	result.Quality = float64(len(result.Results)) / float64(len(segments))
	return result
}
