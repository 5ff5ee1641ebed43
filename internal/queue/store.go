package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NewTranscriptionRequest carries the caller-provided fields for a new job.
type NewTranscriptionRequest struct {
	UserID         string
	SourceFile     string
	Title          string
	SourceLanguage string
	TargetLanguage string
}

// NewTranscription inserts a pending transcription job for an audio file.
func (s *Store) NewTranscription(ctx context.Context, req NewTranscriptionRequest) (*Transcription, error) {
	if strings.TrimSpace(req.SourceFile) == "" {
		return nil, errors.New("source file is required")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = inferTitleFromPath(req.SourceFile)
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO transcriptions (
            user_id, source_file, title, source_language, target_language,
            status, created_at, updated_at, progress_stage, progress_percent, progress_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(req.UserID),
		req.SourceFile,
		nullableString(title),
		nullableString(strings.ToLower(req.SourceLanguage)),
		nullableString(strings.ToLower(req.TargetLanguage)),
		StatusPending,
		timestamp,
		timestamp,
		nil,
		0.0,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcription: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a transcription by identifier. A missing row returns nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Transcription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE id = ?`, id)
	item, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcription: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing transcription.
func (s *Store) Update(ctx context.Context, item *Transcription) error {
	if item == nil {
		return errors.New("transcription is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE transcriptions
         SET user_id = ?, source_file = ?, title = ?, source_language = ?, target_language = ?,
             status = ?, text = ?, detected_language = ?, confidence = ?, duration_seconds = ?,
             segments_json = ?, metadata_json = ?, error_message = ?, failure_code = ?,
             failure_context_json = ?, progress_stage = ?, progress_percent = ?, progress_message = ?,
             updated_at = ?, completed_at = ?, last_heartbeat = ?, needs_review = ?, review_reason = ?
         WHERE id = ?`,
		nullableString(item.UserID),
		item.SourceFile,
		nullableString(item.Title),
		nullableString(item.SourceLanguage),
		nullableString(item.TargetLanguage),
		item.Status,
		nullableString(item.Text),
		nullableString(item.DetectedLanguage),
		item.Confidence,
		item.DurationSeconds,
		nullableString(item.SegmentsJSON),
		nullableString(item.MetadataJSON),
		nullableString(item.ErrorMessage),
		nullableString(item.FailureCode),
		nullableString(item.FailureContextJSON),
		nullableString(item.ProgressStage),
		item.ProgressPercent,
		nullableString(item.ProgressMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(item.CompletedAt),
		nullableTime(item.LastHeartbeat),
		boolToInt(item.NeedsReview),
		nullableString(item.ReviewReason),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update transcription: %w", err)
	}
	return nil
}

// ItemsByStatus returns transcriptions matching a status ordered by creation time.
func (s *Store) ItemsByStatus(ctx context.Context, status Status) ([]*Transcription, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transcriptionColumns+` FROM transcriptions WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var items []*Transcription
	for rows.Next() {
		item, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns transcriptions filtered by status set (or all when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Transcription, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + transcriptionColumns + ` FROM transcriptions`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}
	defer rows.Close()

	var items []*Transcription
	for rows.Next() {
		item, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest transcription matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Transcription, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + transcriptionColumns + ` FROM transcriptions WHERE status IN (` + placeholders + `) ORDER BY created_at LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanTranscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight job.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE transcriptions SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ResetStuckProcessing resets in-flight jobs back to pending after an unclean shutdown.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE transcriptions
         SET status = ?, progress_stage = 'Reset from stuck processing',
             progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status = ?`,
		StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck transcriptions: %w", err)
	}
	return res.RowsAffected()
}

// ReclaimStaleProcessing returns jobs stuck in processing back to pending when heartbeats expire.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE transcriptions
        SET status = ?, progress_stage = 'Reclaimed from stale processing',
            progress_percent = 0, progress_message = NULL, last_heartbeat = NULL, updated_at = ?
        WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusPending,
		now.Format(time.RFC3339Nano),
		StatusProcessing,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale transcriptions: %w", err)
	}
	return res.RowsAffected()
}

// RetryFailed moves failed jobs back to pending for reprocessing.
// With no ids, all failed jobs are retried.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE transcriptions
            SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
                progress_message = NULL, error_message = NULL, failure_code = NULL,
                failure_context_json = NULL, updated_at = ?
            WHERE status = ?`,
			StatusPending,
			time.Now().UTC().Format(time.RFC3339Nano),
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed transcriptions: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+2)
	args = append(args, StatusPending, time.Now().UTC().Format(time.RFC3339Nano))
	for _, id := range ids {
		args = append(args, id)
	}
	query := `UPDATE transcriptions
        SET status = ?, progress_stage = 'Retry requested', progress_percent = 0,
            progress_message = NULL, error_message = NULL, failure_code = NULL,
            failure_context_json = NULL, updated_at = ?
        WHERE id IN (` + placeholders + `) AND status = '` + string(StatusFailed) + `'`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry selected transcriptions: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of transcriptions grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM transcriptions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Health aggregates queue state for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch status {
		case StatusPending:
			health.Pending += count
		case StatusProcessing:
			health.Processing += count
		case StatusCompleted:
			health.Completed += count
		case StatusFailed:
			health.Failed += count
		case StatusCancelled:
			health.Cancelled += count
		}
	}
	return health, nil
}

// CheckHealth returns diagnostic information about the queue database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{
		DBPath:        s.path,
		SchemaVersion: fmt.Sprintf("%d", schemaVersion),
	}

	if s.path == "" {
		return health, errors.New("queue database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.DatabaseExists = false
			return health, nil
		}
		return health, fmt.Errorf("stat queue database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("queue database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("queue database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping queue database: %w", err)
	}
	health.DatabaseReadable = true

	var tableName string
	row := s.db.QueryRowContext(connCtx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'transcriptions'")
	if err := row.Scan(&tableName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			health.TableExists = false
		} else {
			health.Error = err.Error()
			return health, fmt.Errorf("query table info: %w", err)
		}
	} else {
		health.TableExists = true
	}

	if health.TableExists {
		colsRows, err := s.db.QueryContext(connCtx, "PRAGMA table_info(transcriptions)")
		if err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("table info: %w", err)
		}
		defer colsRows.Close()

		var columns []string
		for colsRows.Next() {
			var (
				cid     int
				name    string
				typeStr string
				notNull int
				dflt    any
				pk      int
			)
			if err := colsRows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
				health.Error = err.Error()
				return health, fmt.Errorf("scan table info: %w", err)
			}
			columns = append(columns, name)
		}
		if err := colsRows.Err(); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("iterate table info: %w", err)
		}
		health.ColumnsPresent = append(health.ColumnsPresent, columns...)

		expected := strings.Split(transcriptionColumns, ", ")
		missingMap := make(map[string]struct{}, len(expected))
		for _, col := range expected {
			missingMap[col] = struct{}{}
		}
		for _, col := range columns {
			delete(missingMap, col)
		}
		for col := range missingMap {
			health.MissingColumns = append(health.MissingColumns, col)
		}

		row = s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM transcriptions")
		if err := row.Scan(&health.TotalItems); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count transcriptions: %w", err)
		}
	}

	row = s.db.QueryRowContext(connCtx, "PRAGMA integrity_check")
	var integrityResult string
	if err := row.Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// Remove deletes a transcription by identifier. Dependent translations are
// removed by the schema's cascade rule.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM transcriptions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transcription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearCompleted removes only completed transcriptions from the queue.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM transcriptions WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

// ClearFailed removes only failed transcriptions from the queue.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM transcriptions WHERE status = ?`, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear failed: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all transcriptions from the queue.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM transcriptions`)
	if err != nil {
		return 0, fmt.Errorf("clear queue: %w", err)
	}
	return res.RowsAffected()
}

const transcriptionColumns = "id, user_id, source_file, title, source_language, target_language, status, text, detected_language, confidence, duration_seconds, segments_json, metadata_json, error_message, failure_code, failure_context_json, progress_stage, progress_percent, progress_message, created_at, updated_at, completed_at, last_heartbeat, needs_review, review_reason"

func scanTranscription(scanner interface{ Scan(dest ...any) error }) (*Transcription, error) {
	var (
		id                 int64
		userID             sql.NullString
		sourceFile         string
		title              sql.NullString
		sourceLanguage     sql.NullString
		targetLanguage     sql.NullString
		statusStr          string
		text               sql.NullString
		detectedLanguage   sql.NullString
		confidence         sql.NullFloat64
		durationSeconds    sql.NullFloat64
		segmentsJSON       sql.NullString
		metadataJSON       sql.NullString
		errorMessage       sql.NullString
		failureCode        sql.NullString
		failureContextJSON sql.NullString
		progressStage      sql.NullString
		progressPercent    sql.NullFloat64
		progressMessage    sql.NullString
		createdRaw         sql.NullString
		updatedRaw         sql.NullString
		completedRaw       sql.NullString
		lastHeartbeatRaw   sql.NullString
		needsReview        sql.NullInt64
		reviewReason       sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&userID,
		&sourceFile,
		&title,
		&sourceLanguage,
		&targetLanguage,
		&statusStr,
		&text,
		&detectedLanguage,
		&confidence,
		&durationSeconds,
		&segmentsJSON,
		&metadataJSON,
		&errorMessage,
		&failureCode,
		&failureContextJSON,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item := &Transcription{
		ID:                 id,
		UserID:             userID.String,
		SourceFile:         sourceFile,
		Title:              title.String,
		SourceLanguage:     sourceLanguage.String,
		TargetLanguage:     targetLanguage.String,
		Status:             Status(statusStr),
		Text:               text.String,
		DetectedLanguage:   detectedLanguage.String,
		Confidence:         confidence.Float64,
		DurationSeconds:    durationSeconds.Float64,
		SegmentsJSON:       segmentsJSON.String,
		MetadataJSON:       metadataJSON.String,
		ErrorMessage:       errorMessage.String,
		FailureCode:        failureCode.String,
		FailureContextJSON: failureContextJSON.String,
		ProgressStage:      progressStage.String,
		ProgressPercent:    progressPercent.Float64,
		ProgressMessage:    progressMessage.String,
		ReviewReason:       reviewReason.String,
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			item.CompletedAt = &completed
		}
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func inferTitleFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.NewReplacer("_", " ", ".", " ").Replace(name)
	return strings.TrimSpace(name)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
