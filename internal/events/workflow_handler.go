package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"revoice/internal/logging"
	"revoice/internal/queue"
	"revoice/internal/services"
)

// reviewConfidenceThreshold marks completed transcriptions below this
// confidence for manual review.
const reviewConfidenceThreshold = 0.6

// WorkflowHandler reacts synchronously to transcription lifecycle events and
// records follow-up state on the aggregate.
type WorkflowHandler struct {
	store  *queue.Store
	logger *slog.Logger
}

// NewWorkflowHandler constructs the synchronous workflow event handler.
func NewWorkflowHandler(store *queue.Store, logger *slog.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow-events"),
	}
}

func (h *WorkflowHandler) CanHandle(eventType Type) bool {
	switch eventType {
	case TranscriptionCreated, TranscriptionStarted, TranscriptionCompleted, TranscriptionFailed:
		return true
	}
	return false
}

func (h *WorkflowHandler) Priority() int { return 10 }

func (h *WorkflowHandler) Async() bool { return false }

func (h *WorkflowHandler) Handle(ctx context.Context, event Event) error {
	if !h.CanHandle(event.Type) {
		return services.Wrap(services.ErrValidation, "events", "handle",
			fmt.Sprintf("workflow handler cannot handle event type %s", event.Type), nil)
	}

	switch event.Type {
	case TranscriptionCreated:
		h.logger.Info("transcription queued",
			logging.Int64(logging.FieldTranscriptionID, event.AggregateID),
			logging.String("title", event.Meta("title")),
			logging.String(logging.FieldEventType, "transcription_created"),
		)
	case TranscriptionStarted:
		h.logger.Info("transcription processing started",
			logging.Int64(logging.FieldTranscriptionID, event.AggregateID),
			logging.String("stage", event.Meta("stage")),
			logging.String(logging.FieldEventType, "transcription_started"),
		)
	case TranscriptionCompleted:
		return h.flagLowConfidence(ctx, event)
	case TranscriptionFailed:
		h.logger.Info("transcription failed",
			logging.Int64(logging.FieldTranscriptionID, event.AggregateID),
			logging.String("reason", event.Meta("reason")),
			logging.String(logging.FieldEventType, "transcription_failed"),
		)
	}
	return nil
}

func (h *WorkflowHandler) flagLowConfidence(ctx context.Context, event Event) error {
	confidence, err := strconv.ParseFloat(event.Meta("confidence"), 64)
	if err != nil {
		return nil
	}
	if confidence >= reviewConfidenceThreshold {
		return nil
	}

	item, err := h.store.GetByID(ctx, event.AggregateID)
	if err != nil {
		return services.Wrap(services.ErrTransient, "events", "flag_low_confidence",
			"could not load transcription for review flag", err)
	}
	if item == nil {
		return nil
	}
	item.NeedsReview = true
	item.ReviewReason = fmt.Sprintf("recognition confidence %.2f below %.2f", confidence, reviewConfidenceThreshold)
	if err := h.store.Update(ctx, item); err != nil {
		return services.Wrap(services.ErrTransient, "events", "flag_low_confidence",
			"could not persist review flag", err)
	}
	h.logger.Info("transcription flagged for review",
		logging.Int64(logging.FieldTranscriptionID, item.ID),
		logging.Float64("confidence", confidence),
		logging.String(logging.FieldEventType, "review_flagged"),
	)
	return nil
}
