package translation

import (
	"context"
	"encoding/json"
	"strings"

	"revoice/internal/dubbing"
	"revoice/internal/export"
	"revoice/internal/queue"
	"revoice/internal/stage"
	"revoice/internal/transcript"
)

// DownloadTranslation renders the stored translation in the requested format
// and returns the document bytes alongside the parsed format.
func (s *Service) DownloadTranslation(ctx context.Context, translationID, format string) ([]byte, export.Format, error) {
	parsed, err := export.ParseFormat(format)
	if err != nil {
		return nil, "", err
	}
	record, err := s.GetTranslationStatus(ctx, translationID)
	if err != nil {
		return nil, "", err
	}
	segments, err := stage.ParseSegments(record.SegmentsJSON)
	if err != nil {
		return nil, "", err
	}

	doc := export.Document{
		TranscriptionID: record.TranscriptionID,
		TranslationID:   record.ID,
		TargetLanguage:  record.TargetLanguage,
		Provider:        record.Provider,
		QualityScore:    record.QualityScore,
		Segments:        segments,
	}

	// The owning transcription enriches the document when it still exists;
	// cascade deletes can leave a record briefly downloadable without it.
	var item *queue.Transcription
	if loaded, loadErr := s.store.GetByID(ctx, record.TranscriptionID); loadErr == nil && loaded != nil {
		item = loaded
		doc.Title = item.Title
		doc.SourceLanguage = item.DetectedLanguage
		if meta, ok := decodeMetadata(item.MetadataJSON); ok {
			doc.Metadata = meta
		}
	}

	var dubCfg dubbing.Config
	if parsed == export.FormatDubbingJSON {
		if item != nil {
			dubCfg, err = s.dubbingConfig(record.TargetLanguage, item)
		} else {
			dubCfg, err = dubbing.DefaultConfig(record.TargetLanguage)
		}
		if err != nil {
			return nil, "", err
		}
	}

	out, err := export.Render(parsed, doc, dubCfg)
	if err != nil {
		return nil, "", err
	}
	return out, parsed, nil
}

func decodeMetadata(raw string) (transcript.AudioMetadata, bool) {
	var meta transcript.AudioMetadata
	if strings.TrimSpace(raw) == "" {
		return meta, false
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return transcript.AudioMetadata{}, false
	}
	return meta, true
}
