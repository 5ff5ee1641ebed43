package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"revoice/internal/events"
	"revoice/internal/logging"
	"revoice/internal/queue"
	"revoice/internal/services"
)

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Transcription, stageErr error) {
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	logger := m.stageLogger(ctx, base, item).With(logging.String(logging.FieldComponent, "workflow-manager"))

	message := m.classifyStageFailure(stageName, stageErr)
	details, _ := services.DetailsFromError(stageErr)

	if err := item.Fail(message, details.Code, details.Context); err != nil {
		// The item was not in a failable state; record the error without a
		// status change so the original state survives.
		logger.Error("could not mark item failed",
			logging.Error(err),
			logging.String("stage_error", message),
			logging.String(logging.FieldEventType, "stage_failure_unrecorded"),
		)
		item.ErrorMessage = message
		item.FailureCode = details.Code
	}

	attrs := []logging.Attr{
		logging.String("resolved_status", string(item.Status)),
		logging.String("error_message", strings.TrimSpace(message)),
		logging.Alert("stage_failure"),
		logging.String("error_code", details.Code),
		logging.Bool("final", services.IsFinal(stageErr)),
		logging.Error(stageErr),
		logging.String(logging.FieldEventType, "stage_failure"),
	}
	logger.Error("stage failed", logging.Args(attrs...)...)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not update stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastItem(item)
	m.emitEvent(ctx, events.New(events.TranscriptionFailed, item.ID, map[string]string{
		"title":  item.Title,
		"reason": message,
		"code":   details.Code,
	}))
	m.checkQueueCompletion(ctx)
}

func (m *Manager) classifyStageFailure(stageName string, stageErr error) string {
	if stageErr == nil {
		return m.getStageFailureMessage(stageName, "failed without error detail")
	}

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = m.getStageFailureMessage(stageName, "failed")
	}
	return message
}

func (m *Manager) getStageFailureMessage(stageName, defaultMsg string) string {
	if stageName != "" {
		return fmt.Sprintf("%s %s", stageName, defaultMsg)
	}
	return fmt.Sprintf("workflow %s", defaultMsg)
}
