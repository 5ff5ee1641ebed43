package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"revoice/internal/config"
	"revoice/internal/logging"
	"revoice/internal/media"
	"revoice/internal/providers"
	"revoice/internal/providers/asr"
	"revoice/internal/queue"
	"revoice/internal/services"
	"revoice/internal/stage"
	"revoice/internal/transcript"
)

type recognizer interface {
	Recognize(ctx context.Context, audioPath, language string) (asr.Recognition, error)
	HealthCheck(ctx context.Context) error
}

// Transcriber runs speech recognition for queued audio uploads.
type Transcriber struct {
	cfg    *config.Config
	store  *queue.Store
	client recognizer
	logger *slog.Logger
}

// New constructs the stage handler against the configured recognition
// provider.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	client := asr.NewClient(providers.Config{
		APIKey:         cfg.Providers.ASR.APIKey,
		BaseURL:        cfg.Providers.ASR.BaseURL,
		Model:          cfg.Providers.ASR.Model,
		TimeoutSeconds: cfg.Providers.ASR.TimeoutSeconds,
	})
	return NewWithClient(cfg, store, logger, client)
}

// NewWithClient constructs the stage handler with an explicit recognition
// client (used in tests).
func NewWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client recognizer) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logging.NewComponentLogger(logger, "transcriber"),
	}
}

// Prepare validates the upload before any provider traffic happens.
func (t *Transcriber) Prepare(ctx context.Context, item *queue.Transcription) error {
	audio, err := t.audioFor(item)
	if err != nil {
		return err
	}
	if err := audio.Validate(); err != nil {
		return err
	}
	item.SetProgress("Validating", "Audio upload validated", 5)
	return nil
}

// Execute converts the audio when needed, calls the recognition provider, and
// completes the item with the transcript and derived metadata.
func (t *Transcriber) Execute(ctx context.Context, item *queue.Transcription) error {
	logger := logging.WithContext(ctx, t.logger).With(
		logging.Int64(logging.FieldTranscriptionID, item.ID),
	)

	audio, err := t.audioFor(item)
	if err != nil {
		return err
	}

	if audio.NeedsPreprocessing() {
		t.persistProgress(ctx, logger, item, "Preprocessing", "Converting audio for recognition", 15)
		converted, err := preprocess(ctx, audio, t.cfg.Paths.StagingDir)
		if err != nil {
			return err
		}
		audio = converted
		logger.Info("audio preprocessed",
			logging.String("format", audio.Format()),
			logging.Int64("size_bytes", audio.SizeBytes()),
		)
		defer func() {
			if removeErr := os.Remove(audio.Path()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
				logger.Warn("could not remove preprocessed audio", logging.Error(removeErr))
			}
		}()
	}

	t.persistProgress(ctx, logger, item, "Recognizing", "Uploading audio to the recognition provider", 40)

	recognition, err := t.client.Recognize(ctx, audio.Path(), item.SourceLanguage)
	if err != nil {
		return err
	}

	segments := recognition.Segments
	if len(recognition.Words) > 0 {
		segments = transcript.SegmentWords(recognition.Words, recognition.DurationSeconds)
	}
	if len(segments) == 0 {
		return services.Wrap(
			services.ErrProvider,
			"transcriber",
			"recognize",
			"recognition returned no speech segments; the audio may be silent or unsupported",
			nil,
		)
	}

	encoded, err := stage.EncodeSegments(segments)
	if err != nil {
		return err
	}

	meta := transcript.FromRecognition(segments, recognition.DurationSeconds, recognition.DetectedLanguage)
	if item.TargetLanguage != "" {
		meta = meta.WithTargetLanguage(item.TargetLanguage)
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return services.Wrap(services.ErrValidation, "transcriber", "encode_metadata", "encode audio metadata", err)
	}

	item.SegmentsJSON = encoded
	item.MetadataJSON = string(metaJSON)
	item.DurationSeconds = recognition.DurationSeconds
	if err := item.Complete(recognition.Text, recognition.DetectedLanguage, recognition.Confidence); err != nil {
		return err
	}

	logger.Info("recognition complete",
		logging.String("detected_language", recognition.DetectedLanguage),
		logging.Float64("confidence", recognition.Confidence),
		logging.Float64("duration_seconds", recognition.DurationSeconds),
		logging.Int("segments", len(segments)),
	)
	return nil
}

// HealthCheck probes the recognition endpoint.
func (t *Transcriber) HealthCheck(ctx context.Context) stage.Health {
	if err := t.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("transcriber", err.Error())
	}
	return stage.Healthy("transcriber")
}

func (t *Transcriber) audioFor(item *queue.Transcription) (media.AudioFile, error) {
	var empty media.AudioFile
	info, err := os.Stat(item.SourceFile)
	if err != nil {
		return empty, services.Wrap(
			services.ErrValidation,
			"transcriber",
			"validate",
			fmt.Sprintf("audio file not accessible at %s", item.SourceFile),
			err,
		)
	}
	return media.NewAudioFile(item.SourceFile, filepath.Base(item.SourceFile), "", info.Size())
}

func (t *Transcriber) persistProgress(ctx context.Context, logger *slog.Logger, item *queue.Transcription, stageLabel, message string, percent float64) {
	item.SetProgress(stageLabel, message, percent)
	if t.store == nil {
		return
	}
	if err := t.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, progress update skipped")
		} else {
			logger.Warn("could not persist stage progress", logging.Error(err))
		}
	}
}

var _ stage.Handler = (*Transcriber)(nil)
