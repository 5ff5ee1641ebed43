package queue_test

import (
	"context"
	"testing"
	"time"

	"revoice/internal/queue"
	"revoice/internal/testsupport"
)

func TestNewTranscriptionDefaults(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewTranscription(ctx, queue.NewTranscriptionRequest{
		SourceFile:     "/media/uploads/interview_take.2.mp3",
		TargetLanguage: "FR",
	})
	if err != nil {
		t.Fatalf("NewTranscription: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("id not assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("status = %s", item.Status)
	}
	if item.Title != "interview take 2" {
		t.Fatalf("inferred title = %q", item.Title)
	}
	if item.TargetLanguage != "fr" {
		t.Fatalf("target language = %q", item.TargetLanguage)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}
}

func TestNewTranscriptionRequiresSourceFile(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.NewTranscription(context.Background(), queue.NewTranscriptionRequest{}); err == nil {
		t.Fatal("expected error for missing source file")
	}
}

func TestUpdateRoundTrip(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.NewTranscription(t, store, "/media/a.mp3")

	if err := item.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	item.SetProgress("Transcribing", "uploading audio", 25)
	item.SegmentsJSON = `[{"id":0,"text":"hello"}]`
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	loaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if loaded == nil {
		t.Fatal("item not found after update")
	}
	if loaded.Status != queue.StatusProcessing {
		t.Fatalf("status = %s", loaded.Status)
	}
	if loaded.ProgressStage != "Transcribing" || loaded.ProgressPercent != 25 {
		t.Fatalf("progress = %q %v", loaded.ProgressStage, loaded.ProgressPercent)
	}
	if loaded.SegmentsJSON != `[{"id":0,"text":"hello"}]` {
		t.Fatalf("segments = %q", loaded.SegmentsJSON)
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	item, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item != nil {
		t.Fatalf("item = %+v, want nil", item)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewTranscription(t, store, "/media/first.mp3")
	time.Sleep(2 * time.Millisecond)
	testsupport.NewTranscription(t, store, "/media/second.mp3")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("next = %+v, want id %d", next, first.ID)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if none != nil {
		t.Fatalf("unexpected failed item: %+v", none)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	pending := testsupport.NewTranscription(t, store, "/media/p.mp3")
	failed := testsupport.NewTranscription(t, store, "/media/f.mp3")
	if err := failed.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := failed.Fail("boom", "PROVIDER_ERROR", nil); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, failed); err != nil {
		t.Fatal(err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("list all = %d items", len(all))
	}

	onlyFailed, err := store.List(ctx, queue.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if len(onlyFailed) != 1 || onlyFailed[0].ID != failed.ID {
		t.Fatalf("failed list = %+v", onlyFailed)
	}

	byStatus, err := store.ItemsByStatus(ctx, queue.StatusPending)
	if err != nil {
		t.Fatal(err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != pending.ID {
		t.Fatalf("pending list = %+v", byStatus)
	}
}

func TestHeartbeatAndReclaim(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.NewTranscription(t, store, "/media/a.mp3")

	if err := item.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatalf("UpdateHeartbeat: %v", err)
	}

	loaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.LastHeartbeat == nil {
		t.Fatal("heartbeat not recorded")
	}

	// A cutoff in the future treats the current heartbeat as stale.
	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing: %v", err)
	}
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d", reclaimed)
	}

	loaded, err = store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != queue.StatusPending {
		t.Fatalf("status = %s after reclaim", loaded.Status)
	}
	if loaded.LastHeartbeat != nil {
		t.Fatal("heartbeat not cleared on reclaim")
	}
}

func TestReclaimSkipsFreshHeartbeats(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.NewTranscription(t, store, "/media/a.mp3")

	if err := item.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateHeartbeat(ctx, item.ID); err != nil {
		t.Fatal(err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if reclaimed != 0 {
		t.Fatalf("reclaimed = %d, want 0", reclaimed)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	item := testsupport.NewTranscription(t, store, "/media/a.mp3")

	if err := item.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, item); err != nil {
		t.Fatal(err)
	}

	reset, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing: %v", err)
	}
	if reset != 1 {
		t.Fatalf("reset = %d", reset)
	}

	loaded, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != queue.StatusPending {
		t.Fatalf("status = %s", loaded.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	failAndStore := func(path string) *queue.Transcription {
		item := testsupport.NewTranscription(t, store, path)
		if err := item.StartProcessing(); err != nil {
			t.Fatal(err)
		}
		if err := item.Fail("boom", "PROVIDER_ERROR", nil); err != nil {
			t.Fatal(err)
		}
		if err := store.Update(ctx, item); err != nil {
			t.Fatal(err)
		}
		return item
	}

	a := failAndStore("/media/a.mp3")
	failAndStore("/media/b.mp3")

	retried, err := store.RetryFailed(ctx, a.ID)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("retried = %d", retried)
	}

	loaded, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != queue.StatusPending {
		t.Fatalf("status = %s", loaded.Status)
	}
	if loaded.ErrorMessage != "" || loaded.FailureCode != "" {
		t.Fatalf("failure fields survived retry: %q %q", loaded.ErrorMessage, loaded.FailureCode)
	}

	retried, err = store.RetryFailed(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if retried != 1 {
		t.Fatalf("retry-all retried = %d", retried)
	}
}

func TestStatsAndHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewTranscription(t, store, "/media/a.mp3")
	done := testsupport.NewTranscription(t, store, "/media/b.mp3")
	if err := done.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := done.Complete("text", "en", 0.9); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, done); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[queue.StatusPending] != 1 || stats[queue.StatusCompleted] != 1 {
		t.Fatalf("stats = %v", stats)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Total != 2 || health.Pending != 1 || health.Completed != 1 {
		t.Fatalf("health = %+v", health)
	}
}

func TestCheckHealth(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	testsupport.NewTranscription(t, store, "/media/a.mp3")

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("health = %+v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("missing columns: %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("integrity check failed")
	}
	if health.TotalItems != 1 {
		t.Fatalf("total items = %d", health.TotalItems)
	}
}

func TestRemoveAndClear(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.NewTranscription(t, store, "/media/a.mp3")
	removed, err := store.Remove(ctx, item.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed {
		t.Fatal("existing item not removed")
	}
	removed, err = store.Remove(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("second removal reported success")
	}

	done := testsupport.NewTranscription(t, store, "/media/b.mp3")
	if err := done.StartProcessing(); err != nil {
		t.Fatal(err)
	}
	if err := done.Complete("text", "en", 1); err != nil {
		t.Fatal(err)
	}
	if err := store.Update(ctx, done); err != nil {
		t.Fatal(err)
	}
	testsupport.NewTranscription(t, store, "/media/c.mp3")

	cleared, err := store.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("cleared = %d", cleared)
	}

	cleared, err = store.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cleared != 1 {
		t.Fatalf("clear all = %d", cleared)
	}
}
