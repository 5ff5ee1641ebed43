package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"revoice/internal/services"
)

// Status represents the lifecycle of a transcription.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// allowedTransitions is the complete transition table. Completed is terminal;
// Failed and Cancelled may return to Pending for another attempt.
var allowedTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {},
	StatusFailed:     {StatusPending},
	StatusCancelled:  {StatusPending},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no automated processing follows this status.
// Failed and Cancelled are terminal for automation but may be explicitly
// retried.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// DaemonStopReason is the error message set when in-flight items are failed
// due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
	Cancelled  int
}

// Transcription is a persisted transcription job. Status changes go through
// the transition methods; direct field assignment of Status is a bug.
type Transcription struct {
	ID               int64
	UserID           string
	SourceFile       string
	Title            string
	SourceLanguage   string
	TargetLanguage   string
	Status           Status
	Text             string
	DetectedLanguage string
	Confidence       float64
	DurationSeconds  float64
	SegmentsJSON     string
	MetadataJSON     string

	ErrorMessage       string
	FailureCode        string
	FailureContextJSON string

	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string

	CreatedAt     time.Time
	UpdatedAt     time.Time
	CompletedAt   *time.Time
	LastHeartbeat *time.Time
	NeedsReview   bool
	ReviewReason  string
}

func (t *Transcription) transition(to Status, operation string) error {
	if !CanTransition(t.Status, to) {
		return services.Wrap(services.ErrWorkflowState, "queue", operation,
			fmt.Sprintf("cannot transition transcription %d from %s to %s", t.ID, t.Status, to), nil)
	}
	t.Status = to
	return nil
}

// StartProcessing moves a pending transcription into processing.
func (t *Transcription) StartProcessing() error {
	if err := t.transition(StatusProcessing, "start_processing"); err != nil {
		return err
	}
	t.ErrorMessage = ""
	t.FailureCode = ""
	t.FailureContextJSON = ""
	return nil
}

// Complete records the recognition result and finishes the job.
func (t *Transcription) Complete(text, detectedLanguage string, confidence float64) error {
	if err := t.transition(StatusCompleted, "complete"); err != nil {
		return err
	}
	t.Text = text
	t.DetectedLanguage = strings.ToLower(strings.TrimSpace(detectedLanguage))
	t.Confidence = confidence
	now := time.Now().UTC()
	t.CompletedAt = &now
	t.LastHeartbeat = nil
	t.ProgressPercent = 100
	return nil
}

// Fail records a failure reason with its error code and context map.
func (t *Transcription) Fail(reason, code string, context map[string]any) error {
	if err := t.transition(StatusFailed, "fail"); err != nil {
		return err
	}
	t.ErrorMessage = reason
	t.FailureCode = code
	t.FailureContextJSON = ""
	if len(context) > 0 {
		if encoded, err := json.Marshal(context); err == nil {
			t.FailureContextJSON = string(encoded)
		}
	}
	t.LastHeartbeat = nil
	t.ProgressStage = "Failed"
	t.ProgressPercent = 0
	t.ProgressMessage = reason
	return nil
}

// Cancel stops the job. Processing work already in flight is not interrupted;
// cancellation is state-only.
func (t *Transcription) Cancel() error {
	if err := t.transition(StatusCancelled, "cancel"); err != nil {
		return err
	}
	t.LastHeartbeat = nil
	return nil
}

// Retry moves a failed or cancelled transcription back to pending.
func (t *Transcription) Retry() error {
	if err := t.transition(StatusPending, "retry"); err != nil {
		return err
	}
	t.ErrorMessage = ""
	t.FailureCode = ""
	t.FailureContextJSON = ""
	t.ProgressStage = "Retry requested"
	t.ProgressPercent = 0
	t.ProgressMessage = ""
	return nil
}

// AdvanceTo moves the transcription to the given status through the
// transition table. Callers that know the target fields use the specific
// methods instead; this exists for generic stage advancement.
func (t *Transcription) AdvanceTo(to Status) error {
	return t.transition(to, "advance")
}

// FailureContext decodes the stored failure context map, if any.
func (t *Transcription) FailureContext() map[string]any {
	if strings.TrimSpace(t.FailureContextJSON) == "" {
		return nil
	}
	var context map[string]any
	if err := json.Unmarshal([]byte(t.FailureContextJSON), &context); err != nil {
		return nil
	}
	return context
}

// IsProcessing reports whether the job is currently in flight.
func (t *Transcription) IsProcessing() bool {
	return t.Status == StatusProcessing
}

// SetProgress updates all three progress fields atomically.
func (t *Transcription) SetProgress(stage, message string, percent float64) {
	t.ProgressStage = stage
	t.ProgressMessage = message
	t.ProgressPercent = percent
}

// InitProgress resets progress fields for a new stage. An existing stage
// label is preserved to support resume scenarios.
func (t *Transcription) InitProgress(stage, message string) {
	if t.ProgressStage == "" {
		t.ProgressStage = stage
	}
	t.ProgressMessage = message
	t.ProgressPercent = 0
	t.ErrorMessage = ""
}

// TranslationStatus tracks a translation derived from a completed
// transcription.
type TranslationStatus string

const (
	TranslationCompleted TranslationStatus = "completed"
	TranslationFailed    TranslationStatus = "failed"
)

// Translation is a persisted translation result keyed by a caller-visible
// identifier.
type Translation struct {
	ID                string
	TranscriptionID   int64
	TargetLanguage    string
	Provider          string
	Status            TranslationStatus
	SegmentsJSON      string
	QualityScore      float64
	EstimatedCost     float64
	ProcessingSeconds float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
