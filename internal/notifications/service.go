package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"revoice/internal/config"
)

const userAgent = "Revoice-Go/0.1.0"

// Preferences controls which notification categories and channels are active.
// Failure notifications ignore the category toggles.
type Preferences struct {
	Email     bool
	Push      bool
	InApp     bool
	Created   bool
	Completed bool
}

// PreferencesFromConfig maps the notifications config section to Preferences.
func PreferencesFromConfig(cfg *config.Config) Preferences {
	return Preferences{
		Email:     cfg.Notifications.Email,
		Push:      cfg.Notifications.Push,
		InApp:     cfg.Notifications.InApp,
		Created:   cfg.Notifications.Created,
		Completed: cfg.Notifications.Completed,
	}
}

// Channels returns the active channel names for a non-failure notification.
func (p Preferences) Channels() []string {
	var channels []string
	if p.Email {
		channels = append(channels, "email")
	}
	if p.Push {
		channels = append(channels, "push")
	}
	if p.InApp {
		channels = append(channels, "in_app")
	}
	return channels
}

// AllChannels returns every channel name; failures are delivered on all of
// them regardless of preferences.
func (p Preferences) AllChannels() []string {
	return []string{"email", "push", "in_app"}
}

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyTranscriptionCreated(ctx context.Context, title string) error
	NotifyTranscriptionCompleted(ctx context.Context, title, language string) error
	NotifyTranscriptionFailed(ctx context.Context, title, reason string) error
	NotifyTranslationCompleted(ctx context.Context, title, targetLanguage string, quality float64) error
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		prefs:    PreferencesFromConfig(cfg),
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	prefs    Preferences
}

// routineChannels returns the channels enabled for non-failure
// notifications. A routine notification with no enabled channel is skipped.
func (n *ntfyService) routineChannels() ([]string, bool) {
	channels := n.prefs.Channels()
	return channels, len(channels) > 0
}

func (n *ntfyService) NotifyTranscriptionCreated(ctx context.Context, title string) error {
	if !n.prefs.Created {
		return nil
	}
	channels, ok := n.routineChannels()
	if !ok {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Revoice - Queued",
		message: fmt.Sprintf("Transcription queued: %s", title),
		tags:    append([]string{"revoice", "transcription", "created"}, channels...),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranscriptionCompleted(ctx context.Context, title, language string) error {
	if !n.prefs.Completed {
		return nil
	}
	channels, ok := n.routineChannels()
	if !ok {
		return nil
	}
	title = strings.TrimSpace(title)
	language = strings.TrimSpace(language)
	if language == "" {
		language = "unknown"
	}
	data := payload{
		title:   "Revoice - Transcribed",
		message: fmt.Sprintf("Transcription complete: %s (%s)", title, language),
		tags:    append([]string{"revoice", "transcription", "completed"}, channels...),
	}
	return n.send(ctx, data)
}

// NotifyTranscriptionFailed ignores category preferences; failures are always
// delivered.
func (n *ntfyService) NotifyTranscriptionFailed(ctx context.Context, title, reason string) error {
	title = strings.TrimSpace(title)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown failure"
	}
	data := payload{
		title:    "Revoice - Failed",
		message:  fmt.Sprintf("Transcription failed: %s\n%s", title, reason),
		tags:     append([]string{"revoice", "transcription", "failed"}, n.prefs.AllChannels()...),
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTranslationCompleted(ctx context.Context, title, targetLanguage string, quality float64) error {
	if !n.prefs.Completed {
		return nil
	}
	channels, ok := n.routineChannels()
	if !ok {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Revoice - Translated",
		message: fmt.Sprintf("Translation complete: %s -> %s (quality %.2f)", title, targetLanguage, quality),
		tags:    append([]string{"revoice", "translation", "completed"}, channels...),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	channels, ok := n.routineChannels()
	if !ok {
		return nil
	}
	data := payload{
		title:   "Revoice - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d items", count),
		tags:    append([]string{"revoice", "queue", "started"}, channels...),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	channels, ok := n.routineChannels()
	if !ok {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var message string
	var title string
	if failed == 0 {
		title = "Revoice - Queue Complete"
		message = fmt.Sprintf("Queue processing complete: %d items processed in %s", processed, durationText)
	} else {
		title = "Revoice - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    append([]string{"revoice", "queue", "completed"}, channels...),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Revoice - Error",
		message:  builder.String(),
		tags:     []string{"revoice", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Revoice - Test",
		message:  "Notification system test",
		tags:     []string{"revoice", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyTranscriptionCreated(context.Context, string) error              { return nil }
func (noopService) NotifyTranscriptionCompleted(context.Context, string, string) error    { return nil }
func (noopService) NotifyTranscriptionFailed(context.Context, string, string) error       { return nil }
func (noopService) NotifyTranslationCompleted(context.Context, string, string, float64) error {
	return nil
}
func (noopService) NotifyQueueStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
