package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"revoice/internal/config"
	"revoice/internal/dubbing"
	"revoice/internal/events"
	"revoice/internal/logging"
	"revoice/internal/providers"
	"revoice/internal/providers/translator"
	"revoice/internal/queue"
	"revoice/internal/services"
	"revoice/internal/stage"
	"revoice/internal/transcript"
)

// defaultProviderLabel is recorded on translation records when the caller does
// not name the provider.
const defaultProviderLabel = "openai"

type translatorClient interface {
	Translate(ctx context.Context, segments []transcript.Segment, targetLanguage string, cfg dubbing.Config) ([]transcript.Segment, error)
}

// Service creates and serves translation records.
type Service struct {
	cfg        *config.Config
	store      *queue.Store
	client     translatorClient
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// NewService constructs the facade against the configured translation
// provider. The dispatcher may be nil when no event consumers exist.
func NewService(cfg *config.Config, store *queue.Store, logger *slog.Logger, dispatcher *events.Dispatcher) *Service {
	client := translator.NewClient(providers.Config{
		APIKey:         cfg.Providers.Translator.APIKey,
		BaseURL:        cfg.Providers.Translator.BaseURL,
		Model:          cfg.Providers.Translator.Model,
		TimeoutSeconds: cfg.Providers.Translator.TimeoutSeconds,
	})
	return NewServiceWithClient(cfg, store, logger, dispatcher, client)
}

// NewServiceWithClient constructs the facade with an explicit translator
// client (used in tests).
func NewServiceWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, dispatcher *events.Dispatcher, client translatorClient) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:        cfg,
		store:      store,
		client:     client,
		dispatcher: dispatcher,
		logger:     logging.NewComponentLogger(logger, "translation"),
	}
}

// CreateRequest names the transcription to translate and the target.
type CreateRequest struct {
	TranscriptionID int64
	TargetLanguage  string
	Provider        string
}

// CreateTranslation translates a completed transcription's segments, scores
// the result, and persists the record. Only completed transcriptions can be
// translated.
func (s *Service) CreateTranslation(ctx context.Context, req CreateRequest) (*queue.Translation, error) {
	item, err := s.store.GetByID(ctx, req.TranscriptionID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "translation", "create",
			fmt.Sprintf("transcription %d not found", req.TranscriptionID), nil)
	}
	if item.Status != queue.StatusCompleted {
		return nil, services.Wrap(services.ErrWorkflowState, "translation", "create",
			fmt.Sprintf("transcription %d is %s; only completed transcriptions can be translated", item.ID, item.Status), nil)
	}

	segments, err := stage.ParseSegments(item.SegmentsJSON)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "translation", "create",
			fmt.Sprintf("transcription %d has no segments; rerun transcription first", item.ID), nil)
	}

	target := strings.ToLower(strings.TrimSpace(req.TargetLanguage))
	if target == "" {
		target = item.TargetLanguage
	}
	dubCfg, err := s.dubbingConfig(target, item)
	if err != nil {
		return nil, err
	}

	logger := logging.WithContext(ctx, s.logger).With(
		logging.Int64(logging.FieldTranscriptionID, item.ID),
		logging.String("target_language", target),
	)

	start := time.Now()
	translated, err := s.client.Translate(ctx, segments, target, dubCfg)
	if err != nil {
		return nil, err
	}
	fillEstimatedTimings(segments, translated)

	report := transcript.EvaluateTranslationQuality(segments, translated)
	encoded, err := stage.EncodeSegments(translated)
	if err != nil {
		return nil, err
	}

	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = defaultProviderLabel
	}
	record := &queue.Translation{
		ID:                uuid.NewString(),
		TranscriptionID:   item.ID,
		TargetLanguage:    target,
		Provider:          provider,
		Status:            queue.TranslationCompleted,
		SegmentsJSON:      encoded,
		QualityScore:      report.Score,
		EstimatedCost:     translator.EstimateCost(translated),
		ProcessingSeconds: time.Since(start).Seconds(),
	}
	if err := s.store.InsertTranslation(ctx, record); err != nil {
		return nil, err
	}

	logger.Info("translation created",
		logging.String(logging.FieldTranslationID, record.ID),
		logging.Float64("quality_score", record.QualityScore),
		logging.Float64("estimated_cost", record.EstimatedCost),
		logging.Int("segments", len(translated)),
	)

	if s.dispatcher != nil {
		event := events.New(events.TranslationCompleted, item.ID, map[string]string{
			"title":           item.Title,
			"translation_id":  record.ID,
			"target_language": target,
			"quality":         strconv.FormatFloat(record.QualityScore, 'f', -1, 64),
		})
		if err := s.dispatcher.Dispatch(ctx, event); err != nil {
			logger.Warn("translation event dispatch failed", logging.Error(err))
		}
	}
	return record, nil
}

// GetTranslationStatus returns the stored record.
func (s *Service) GetTranslationStatus(ctx context.Context, translationID string) (*queue.Translation, error) {
	record, err := s.store.GetTranslation(ctx, translationID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, services.Wrap(services.ErrNotFound, "translation", "status",
			fmt.Sprintf("translation %s not found", translationID), nil)
	}
	return record, nil
}

// dubbingConfig builds the translation steering configuration from the daemon
// defaults plus whatever metadata recognition derived for the item.
func (s *Service) dubbingConfig(target string, item *queue.Transcription) (dubbing.Config, error) {
	dubCfg, err := dubbing.DefaultConfig(target)
	if err != nil {
		return dubbing.Config{}, err
	}
	if voice := strings.TrimSpace(s.cfg.Dubbing.Voice); voice != "" {
		dubCfg, err = dubCfg.WithVoice(voice)
		if err != nil {
			return dubbing.Config{}, err
		}
	}
	if format := strings.TrimSpace(s.cfg.Dubbing.ResponseFormat); format != "" {
		dubCfg, err = dubCfg.WithResponseFormat(format)
		if err != nil {
			return dubbing.Config{}, err
		}
	}
	dubCfg = dubCfg.WithStrictTiming(s.cfg.Dubbing.StrictTiming)

	meta, ok := decodeMetadata(item.MetadataJSON)
	if !ok {
		return dubCfg, nil
	}
	if meta.ContentType != "" {
		dubCfg = dubCfg.WithContentType(meta.ContentType)
	}
	if len(meta.EmotionalTones) > 0 {
		dubCfg = dubCfg.WithEmotionalContext(meta.EmotionalTones...)
	}
	if len(meta.Speakers) > 0 {
		dubCfg = dubCfg.WithCharacterNames(meta.Speakers...)
	}
	if len(meta.TechnicalTerms) > 0 {
		dubCfg = dubCfg.WithTechnicalTerms(meta.TechnicalTerms...)
	}
	return dubCfg, nil
}

// fillEstimatedTimings spreads translated text over the source segment window
// when the provider echoed no word timing.
func fillEstimatedTimings(original, translated []transcript.Segment) {
	if len(original) != len(translated) {
		return
	}
	for i := range translated {
		if translated[i].IsZero() || len(translated[i].Words) > 0 {
			continue
		}
		translated[i].Words = transcript.RedistributeWordTimings(original[i], translated[i].Text)
	}
}
