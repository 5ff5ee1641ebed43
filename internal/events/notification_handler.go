package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"revoice/internal/logging"
	"revoice/internal/notifications"
	"revoice/internal/services"
)

// NotificationHandler forwards domain events to the notification service on
// the async lane. Failure events are always delivered; routine events honor
// the configured category preferences inside the service.
type NotificationHandler struct {
	notifier notifications.Service
	prefs    notifications.Preferences
	logger   *slog.Logger
}

// NewNotificationHandler constructs the asynchronous notification handler.
func NewNotificationHandler(notifier notifications.Service, prefs notifications.Preferences, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifier: notifier,
		prefs:    prefs,
		logger:   logging.NewComponentLogger(logger, "notification-events"),
	}
}

func (h *NotificationHandler) CanHandle(eventType Type) bool {
	switch eventType {
	case TranscriptionCreated, TranscriptionCompleted, TranscriptionFailed, TranslationCompleted:
		return true
	}
	return false
}

func (h *NotificationHandler) Priority() int { return 20 }

func (h *NotificationHandler) Async() bool { return true }

func (h *NotificationHandler) Handle(ctx context.Context, event Event) error {
	if !h.CanHandle(event.Type) {
		return services.Wrap(services.ErrValidation, "events", "handle",
			fmt.Sprintf("notification handler cannot handle event type %s", event.Type), nil)
	}
	if h.notifier == nil {
		return nil
	}

	title := event.Meta("title")
	switch event.Type {
	case TranscriptionCreated:
		return h.notifier.NotifyTranscriptionCreated(ctx, title)
	case TranscriptionCompleted:
		return h.notifier.NotifyTranscriptionCompleted(ctx, title, event.Meta("language"))
	case TranscriptionFailed:
		// Failures go to every channel and raise an operational alert.
		channels := h.prefs.AllChannels()
		h.logger.Warn("transcription failure notification",
			logging.Int64(logging.FieldTranscriptionID, event.AggregateID),
			logging.String("channels", fmt.Sprint(channels)),
			logging.Alert("transcription_failed"),
			logging.String(logging.FieldEventType, "failure_notification"),
		)
		reason := event.Meta("reason")
		notifyErr := h.notifier.NotifyTranscriptionFailed(ctx, title, reason)
		alertErr := h.notifier.NotifyError(ctx, errors.New(reason), fmt.Sprintf("transcription #%d", event.AggregateID))
		return errors.Join(notifyErr, alertErr)
	case TranslationCompleted:
		quality, _ := strconv.ParseFloat(event.Meta("quality"), 64)
		return h.notifier.NotifyTranslationCompleted(ctx, title, event.Meta("target_language"), quality)
	}
	return nil
}
