package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const translationColumns = "id, transcription_id, target_language, provider, status, segments_json, quality_score, estimated_cost, processing_seconds, created_at, updated_at"

// InsertTranslation persists a new translation record.
func (s *Store) InsertTranslation(ctx context.Context, tr *Translation) error {
	if tr == nil {
		return errors.New("translation is nil")
	}
	if tr.ID == "" {
		return errors.New("translation id is required")
	}
	now := time.Now().UTC()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = now
	}
	tr.UpdatedAt = now

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO translations (
            id, transcription_id, target_language, provider, status, segments_json,
            quality_score, estimated_cost, processing_seconds, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID,
		tr.TranscriptionID,
		tr.TargetLanguage,
		tr.Provider,
		tr.Status,
		nullableString(tr.SegmentsJSON),
		tr.QualityScore,
		tr.EstimatedCost,
		tr.ProcessingSeconds,
		tr.CreatedAt.Format(time.RFC3339Nano),
		tr.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

// GetTranslation fetches a translation by identifier. A missing row returns nil.
func (s *Store) GetTranslation(ctx context.Context, id string) (*Translation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+translationColumns+` FROM translations WHERE id = ?`, id)
	tr, err := scanTranslation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get translation: %w", err)
	}
	return tr, nil
}

// TranslationsForTranscription lists translations for a transcription ordered by creation time.
func (s *Store) TranslationsForTranscription(ctx context.Context, transcriptionID int64) ([]*Translation, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+translationColumns+` FROM translations WHERE transcription_id = ? ORDER BY created_at`,
		transcriptionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	var translations []*Translation
	for rows.Next() {
		tr, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		translations = append(translations, tr)
	}
	return translations, rows.Err()
}

// UpdateTranslation persists changes to an existing translation record.
func (s *Store) UpdateTranslation(ctx context.Context, tr *Translation) error {
	if tr == nil {
		return errors.New("translation is nil")
	}
	tr.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE translations
         SET target_language = ?, provider = ?, status = ?, segments_json = ?,
             quality_score = ?, estimated_cost = ?, processing_seconds = ?, updated_at = ?
         WHERE id = ?`,
		tr.TargetLanguage,
		tr.Provider,
		tr.Status,
		nullableString(tr.SegmentsJSON),
		tr.QualityScore,
		tr.EstimatedCost,
		tr.ProcessingSeconds,
		tr.UpdatedAt.Format(time.RFC3339Nano),
		tr.ID,
	)
	if err != nil {
		return fmt.Errorf("update translation: %w", err)
	}
	return nil
}

func scanTranslation(scanner interface{ Scan(dest ...any) error }) (*Translation, error) {
	var (
		id                string
		transcriptionID   int64
		targetLanguage    string
		provider          string
		statusStr         string
		segmentsJSON      sql.NullString
		qualityScore      sql.NullFloat64
		estimatedCost     sql.NullFloat64
		processingSeconds sql.NullFloat64
		createdRaw        sql.NullString
		updatedRaw        sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&transcriptionID,
		&targetLanguage,
		&provider,
		&statusStr,
		&segmentsJSON,
		&qualityScore,
		&estimatedCost,
		&processingSeconds,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	tr := &Translation{
		ID:                id,
		TranscriptionID:   transcriptionID,
		TargetLanguage:    targetLanguage,
		Provider:          provider,
		Status:            TranslationStatus(statusStr),
		SegmentsJSON:      segmentsJSON.String,
		QualityScore:      qualityScore.Float64,
		EstimatedCost:     estimatedCost.Float64,
		ProcessingSeconds: processingSeconds.Float64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		tr.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		tr.UpdatedAt = updated
	}
	return tr, nil
}
