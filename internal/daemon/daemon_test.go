package daemon_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/config"
	"revoice/internal/daemon"
	"revoice/internal/events"
	"revoice/internal/logging"
	"revoice/internal/notifications"
	"revoice/internal/queue"
	"revoice/internal/stage"
	"revoice/internal/testsupport"
	"revoice/internal/workflow"
)

type idleStage struct{}

func (idleStage) Prepare(context.Context, *queue.Transcription) error { return nil }
func (idleStage) Execute(_ context.Context, item *queue.Transcription) error {
	return item.Complete("", "en", 1)
}
func (idleStage) HealthCheck(context.Context) stage.Health { return stage.Healthy("transcriber") }

func newDaemon(t *testing.T, cfg *config.Config) (*daemon.Daemon, *queue.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManager(cfg, store, logger)
	mgr.ConfigureStages(workflow.StageSet{Transcriber: idleStage{}})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d, store
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	status := d.Status(context.Background())
	if !status.Running {
		t.Fatal("status not running after start")
	}
	if status.LockFilePath == "" {
		t.Fatal("lock path empty")
	}

	if err := d.Start(context.Background()); err == nil {
		t.Fatal("second Start on a running daemon accepted")
	}

	d.Stop()
	d.Stop()
	if d.Status(context.Background()).Running {
		t.Fatal("status running after stop")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, _ := newDaemon(t, cfg)
	second, _ := newDaemon(t, cfg)

	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	err := second.Start(context.Background())
	if err == nil {
		second.Stop()
		t.Fatal("second instance acquired the lock")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("error = %v", err)
	}
}

func TestDaemonAddAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, store := newDaemon(t, cfg)

	audio := testsupport.AudioFixture(t, "note.mp3")
	item, err := d.AddAudio(context.Background(), queue.NewTranscriptionRequest{SourceFile: audio})
	if err != nil {
		t.Fatalf("AddAudio: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("status = %s", item.Status)
	}

	loaded, err := store.GetByID(context.Background(), item.ID)
	if err != nil || loaded == nil {
		t.Fatalf("item not persisted: %v", err)
	}
}

type createdRecorder struct {
	events []events.Event
}

func (r *createdRecorder) CanHandle(eventType events.Type) bool {
	return eventType == events.TranscriptionCreated
}

func (r *createdRecorder) Handle(_ context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *createdRecorder) Priority() int { return 5 }

func (r *createdRecorder) Async() bool { return false }

func TestDaemonAddAudioDispatchesCreatedEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	recorder := &createdRecorder{}
	dispatcher := events.NewDispatcher(logger, 1, 4)
	t.Cleanup(dispatcher.Close)
	dispatcher.Register(recorder)
	mgr := workflow.NewManagerWithDeps(cfg, store, logger, notifications.NewService(cfg), dispatcher)
	mgr.ConfigureStages(workflow.StageSet{Transcriber: idleStage{}})
	d, err := daemon.New(cfg, store, logger, mgr)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	audio := testsupport.AudioFixture(t, "note.mp3")
	item, err := d.AddAudio(context.Background(), queue.NewTranscriptionRequest{SourceFile: audio})
	if err != nil {
		t.Fatalf("AddAudio: %v", err)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("created events = %d", len(recorder.events))
	}
	event := recorder.events[0]
	if event.AggregateID != item.ID {
		t.Fatalf("aggregate id = %d, want %d", event.AggregateID, item.ID)
	}
	if event.Meta("title") != item.Title {
		t.Fatalf("title metadata = %q, want %q", event.Meta("title"), item.Title)
	}
}

func TestDaemonAddAudioValidation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)
	ctx := context.Background()

	if _, err := d.AddAudio(ctx, queue.NewTranscriptionRequest{}); err == nil {
		t.Fatal("empty path accepted")
	}
	if _, err := d.AddAudio(ctx, queue.NewTranscriptionRequest{SourceFile: filepath.Join(t.TempDir(), "gone.mp3")}); err == nil {
		t.Fatal("missing file accepted")
	}
	if _, err := d.AddAudio(ctx, queue.NewTranscriptionRequest{SourceFile: t.TempDir()}); err == nil {
		t.Fatal("directory accepted")
	}

	doc := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(doc, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.AddAudio(ctx, queue.NewTranscriptionRequest{SourceFile: doc}); err == nil {
		t.Fatal("unsupported format accepted")
	}
}

func TestDaemonTestNotificationWithoutTopic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, _ := newDaemon(t, cfg)

	sent, detail, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if sent {
		t.Fatal("notification reported sent without a topic")
	}
	if detail != "ntfy topic not configured" {
		t.Fatalf("detail = %q", detail)
	}
}
