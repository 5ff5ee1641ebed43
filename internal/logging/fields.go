package logging

// Standardized structured logging keys.
const (
	// FieldComponent identifies the emitting component.
	FieldComponent = "component"
	// FieldTranscriptionID carries the transcription aggregate identifier.
	FieldTranscriptionID = "transcription_id"
	// FieldTranslationID carries the translation identifier.
	FieldTranslationID = "translation_id"
	// FieldStage carries the workflow stage name.
	FieldStage = "stage"
	// FieldLane carries the workflow lane name.
	FieldLane = "lane"
	// FieldEventType classifies log records for downstream filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step when an operation fails.
	FieldErrorHint = "error_hint"
	// FieldCorrelationID carries request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldProvider names the external provider involved in a record.
	FieldProvider = "provider"
	// FieldAlert flags warnings or anomalies that should stand out.
	FieldAlert = "alert"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
)
