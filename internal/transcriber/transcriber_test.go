package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"revoice/internal/media"
	"revoice/internal/providers/asr"
	"revoice/internal/queue"
	"revoice/internal/services"
	"revoice/internal/stage"
	"revoice/internal/testsupport"
	"revoice/internal/transcript"
)

type stubRecognizer struct {
	recognition  asr.Recognition
	recognizeErr error
	healthErr    error
	lastPath     string
	lastLanguage string
}

func (s *stubRecognizer) Recognize(_ context.Context, audioPath, language string) (asr.Recognition, error) {
	s.lastPath = audioPath
	s.lastLanguage = language
	if s.recognizeErr != nil {
		return asr.Recognition{}, s.recognizeErr
	}
	return s.recognition, nil
}

func (s *stubRecognizer) HealthCheck(context.Context) error { return s.healthErr }

func wordFixture(count int) []transcript.Word {
	words := make([]transcript.Word, 0, count)
	for i := 0; i < count; i++ {
		words = append(words, transcript.Word{
			Text:  fmt.Sprintf("word%d", i),
			Start: float64(i) * 0.4,
			End:   float64(i)*0.4 + 0.3,
		})
	}
	return words
}

func processingItem(t *testing.T, store *queue.Store, sourceFile string) *queue.Transcription {
	t.Helper()
	item := testsupport.NewTranscription(t, store, sourceFile)
	if err := item.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing: %v", err)
	}
	return item
}

func TestPrepareValidatesUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	audio := testsupport.AudioFixture(t, "clip.mp3")
	item := testsupport.NewTranscription(t, store, audio)

	handler := NewWithClient(cfg, store, nil, &stubRecognizer{})
	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if item.ProgressStage != "Validating" {
		t.Fatalf("progress stage = %q", item.ProgressStage)
	}
}

func TestPrepareRejectsMissingFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewTranscription(t, store, filepath.Join(t.TempDir(), "gone.mp3"))

	handler := NewWithClient(cfg, store, nil, &stubRecognizer{})
	err := handler.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPrepareRejectsOversizedUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(t.TempDir(), "huge.mp3")
	testsupport.WriteFile(t, path, media.MaxFileSizeBytes+1)
	item := testsupport.NewTranscription(t, store, path)

	handler := NewWithClient(cfg, store, nil, &stubRecognizer{})
	err := handler.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteCompletesItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	audio := testsupport.AudioFixture(t, "interview.mp3")
	item := processingItem(t, store, audio)

	stub := &stubRecognizer{recognition: asr.Recognition{
		Text:             "word0 word1 word2 word3",
		DetectedLanguage: "english",
		Confidence:       0.92,
		DurationSeconds:  1.9,
		Words:            wordFixture(4),
	}}
	handler := NewWithClient(cfg, store, nil, stub)
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if item.Status != queue.StatusCompleted {
		t.Fatalf("status = %s", item.Status)
	}
	if stub.lastPath != audio {
		t.Fatalf("recognized %q, want original upload", stub.lastPath)
	}
	if item.DurationSeconds != 1.9 {
		t.Fatalf("duration = %v", item.DurationSeconds)
	}

	segments, err := stage.ParseSegments(item.SegmentsJSON)
	if err != nil {
		t.Fatalf("ParseSegments: %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("no segments stored")
	}

	var meta transcript.AudioMetadata
	if err := json.Unmarshal([]byte(item.MetadataJSON), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.SourceLanguage != "english" {
		t.Fatalf("metadata source language = %q", meta.SourceLanguage)
	}
}

func TestExecuteUsesProviderSegmentsWithoutWords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	audio := testsupport.AudioFixture(t, "talk.wav")
	item := processingItem(t, store, audio)

	stub := &stubRecognizer{recognition: asr.Recognition{
		Text:             "provider text",
		DetectedLanguage: "german",
		Confidence:       0.8,
		DurationSeconds:  3,
		Segments: []transcript.Segment{
			{ID: 0, Text: "provider text", Start: 0, End: 3},
		},
	}}
	handler := NewWithClient(cfg, store, nil, stub)
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	segments, err := stage.ParseSegments(item.SegmentsJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(segments) != 1 || segments[0].Text != "provider text" {
		t.Fatalf("segments = %+v", segments)
	}
}

func TestExecuteRejectsEmptyRecognition(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	audio := testsupport.AudioFixture(t, "silence.mp3")
	item := processingItem(t, store, audio)

	handler := NewWithClient(cfg, store, nil, &stubRecognizer{})
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if item.Status != queue.StatusProcessing {
		t.Fatalf("status changed to %s", item.Status)
	}
}

func TestExecutePreprocessesLargeUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(t.TempDir(), "long-session.mp3")
	testsupport.WriteFile(t, path, media.PreprocessSizeBytes+1)
	item := processingItem(t, store, path)

	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		if len(args) > 0 {
			testsupport.WriteFile(t, args[len(args)-1], 64)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "REVOICE_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() { commandContext = original })

	stub := &stubRecognizer{recognition: asr.Recognition{
		Text:             "long recording",
		DetectedLanguage: "english",
		Confidence:       0.9,
		DurationSeconds:  600,
		Words:            wordFixture(6),
	}}
	handler := NewWithClient(cfg, store, nil, stub)
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if !strings.HasSuffix(stub.lastPath, "-16k.wav") {
		t.Fatalf("recognizer read %q, want preprocessed wav", stub.lastPath)
	}
	if !strings.HasPrefix(stub.lastPath, cfg.Paths.StagingDir) {
		t.Fatalf("preprocessed file %q outside staging dir", stub.lastPath)
	}
	if _, err := os.Stat(stub.lastPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("preprocessed file not cleaned up: %v", err)
	}
	if len(capturedArgs) == 0 {
		t.Fatal("ffmpeg was never invoked")
	}
	foundRate := false
	for i, arg := range capturedArgs {
		if arg == "-ar" && i+1 < len(capturedArgs) && capturedArgs[i+1] == "16000" {
			foundRate = true
		}
	}
	if !foundRate {
		t.Fatalf("ffmpeg args missing sample rate: %v", capturedArgs)
	}
}

func TestExecutePreprocessFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	path := filepath.Join(t.TempDir(), "meeting.webm")
	testsupport.WriteFile(t, path, 2048)
	item := processingItem(t, store, path)

	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "REVOICE_HELPER_MODE=failure")
		return cmd
	}
	t.Cleanup(func() { commandContext = original })

	handler := NewWithClient(cfg, store, nil, &stubRecognizer{})
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	healthy := NewWithClient(cfg, store, nil, &stubRecognizer{})
	if health := healthy.HealthCheck(context.Background()); !health.Ready {
		t.Fatalf("healthy client reported %+v", health)
	}

	sick := NewWithClient(cfg, store, nil, &stubRecognizer{healthErr: errors.New("endpoint down")})
	health := sick.HealthCheck(context.Background())
	if health.Ready {
		t.Fatal("unhealthy client reported ready")
	}
	if !strings.Contains(health.Detail, "endpoint down") {
		t.Fatalf("detail = %q", health.Detail)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("REVOICE_HELPER_MODE") {
	case "failure":
		fmt.Fprintln(os.Stderr, "conversion failed")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
