package testsupport

import (
	"context"
	"testing"

	"revoice/internal/config"
	"revoice/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTranscription creates a pending transcription for tests using the provided store.
func NewTranscription(t testing.TB, store *queue.Store, sourceFile string) *queue.Transcription {
	t.Helper()

	item, err := store.NewTranscription(context.Background(), queue.NewTranscriptionRequest{
		SourceFile: sourceFile,
	})
	if err != nil {
		t.Fatalf("store.NewTranscription: %v", err)
	}
	return item
}
