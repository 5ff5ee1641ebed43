package notifications

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"revoice/internal/config"
)

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func captureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
	}))
}

func serviceFor(cfg *config.Config) Service {
	return NewService(cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := serviceFor(&cfg)
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("service = %T, want noop", svc)
	}
	if err := svc.NotifyTranscriptionFailed(context.Background(), "t", "r"); err != nil {
		t.Fatalf("noop returned error: %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := serviceFor(&cfg)
	ctx := context.Background()

	if err := svc.NotifyTranscriptionCompleted(ctx, "Morning Interview", "french"); err != nil {
		t.Fatalf("NotifyTranscriptionCompleted: %v", err)
	}
	if err := svc.NotifyTranscriptionFailed(ctx, "Morning Interview", "provider rejected audio"); err != nil {
		t.Fatalf("NotifyTranscriptionFailed: %v", err)
	}
	if err := svc.NotifyQueueCompleted(ctx, 3, 1, 0); err != nil {
		t.Fatalf("NotifyQueueCompleted: %v", err)
	}

	if len(sink) != 3 {
		t.Fatalf("captured %d notifications", len(sink))
	}
	if !strings.Contains(sink[0].message, "Morning Interview") || !strings.Contains(sink[0].message, "french") {
		t.Fatalf("completed message = %q", sink[0].message)
	}
	if sink[1].priority != "high" {
		t.Fatalf("failure priority = %q", sink[1].priority)
	}
	if !strings.Contains(sink[2].message, "3 succeeded, 1 failed") {
		t.Fatalf("queue message = %q", sink[2].message)
	}
}

func TestCategoryPreferencesSuppressRoutineEvents(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Created = false
	cfg.Notifications.Completed = false
	svc := serviceFor(&cfg)
	ctx := context.Background()

	if err := svc.NotifyTranscriptionCreated(ctx, "t"); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyTranscriptionCompleted(ctx, "t", "en"); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyTranslationCompleted(ctx, "t", "fr", 0.9); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 0 {
		t.Fatalf("suppressed categories still sent %d notifications", len(sink))
	}

	// Failures bypass category toggles.
	if err := svc.NotifyTranscriptionFailed(ctx, "t", "boom"); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 1 {
		t.Fatalf("failure notification count = %d", len(sink))
	}
}

func TestChannelPreferencesSuppressRoutineEvents(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Email = false
	cfg.Notifications.Push = false
	cfg.Notifications.InApp = false
	svc := serviceFor(&cfg)
	ctx := context.Background()

	if err := svc.NotifyTranscriptionCreated(ctx, "t"); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyTranscriptionCompleted(ctx, "t", "en"); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyQueueCompleted(ctx, 2, 0, 0); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 0 {
		t.Fatalf("disabled channels still sent %d notifications", len(sink))
	}

	// Failures are delivered on every channel regardless of preferences.
	if err := svc.NotifyTranscriptionFailed(ctx, "t", "boom"); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 1 {
		t.Fatalf("failure notification count = %d", len(sink))
	}
	if !strings.Contains(sink[0].tags, "email") || !strings.Contains(sink[0].tags, "in_app") {
		t.Fatalf("failure tags = %q", sink[0].tags)
	}
}

func TestRoutineNotificationsTagEnabledChannels(t *testing.T) {
	var sink []captured
	server := captureServer(t, &sink)
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := serviceFor(&cfg)

	if err := svc.NotifyTranscriptionCompleted(context.Background(), "t", "en"); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 1 {
		t.Fatalf("captured %d notifications", len(sink))
	}
	if !strings.Contains(sink[0].tags, "push") || !strings.Contains(sink[0].tags, "in_app") {
		t.Fatalf("tags = %q", sink[0].tags)
	}
	if strings.Contains(sink[0].tags, "email") {
		t.Fatalf("email disabled by default but tagged: %q", sink[0].tags)
	}
}

func TestPreferencesChannels(t *testing.T) {
	prefs := Preferences{Push: true, InApp: true}
	channels := prefs.Channels()
	if len(channels) != 2 || channels[0] != "push" || channels[1] != "in_app" {
		t.Fatalf("channels = %v", channels)
	}
	if got := prefs.AllChannels(); len(got) != 3 {
		t.Fatalf("all channels = %v", got)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := serviceFor(&cfg)
	if err := svc.NotifyTranscriptionFailed(context.Background(), "t", "boom"); err == nil {
		t.Fatal("expected error for HTTP 403")
	}
}
