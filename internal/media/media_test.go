package media_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"revoice/internal/media"
	"revoice/internal/services"
)

func TestNewAudioFileRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		path string
		size int64
	}{
		{"empty path", "", 100},
		{"zero size", "clip.mp3", 0},
		{"negative size", "clip.mp3", -1},
		{"over size limit", "clip.mp3", media.MaxFileSizeBytes + 1},
		{"unsupported format", "clip.txt", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := media.NewAudioFile(tc.path, tc.path, "audio/mpeg", tc.size)
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAudioFilePreprocessingDecision(t *testing.T) {
	cases := []struct {
		name  string
		file  string
		size  int64
		needs bool
	}{
		{"small mp3 passes through", "clip.mp3", 1024, false},
		{"mp4 container converts", "clip.mp4", 1024, true},
		{"webm container converts", "clip.webm", 1024, true},
		{"m4a container converts", "clip.m4a", 1024, true},
		{"large wav converts", "clip.wav", media.PreprocessSizeBytes + 1, true},
		{"boundary size passes through", "clip.wav", media.PreprocessSizeBytes, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			file, err := media.NewAudioFile(tc.file, tc.file, "", tc.size)
			if err != nil {
				t.Fatalf("NewAudioFile: %v", err)
			}
			if got := file.NeedsPreprocessing(); got != tc.needs {
				t.Fatalf("NeedsPreprocessing = %v, want %v", got, tc.needs)
			}
		})
	}
}

func TestAudioFileImmutableCopies(t *testing.T) {
	file, err := media.NewAudioFile("clip.mp3", "clip.mp3", "audio/mpeg", 1024)
	if err != nil {
		t.Fatalf("NewAudioFile: %v", err)
	}

	converted := file.WithPreprocessedPath("/tmp/clip.wav")
	if file.IsPreprocessed() {
		t.Fatal("original must stay unmodified")
	}
	if converted.Path() != "/tmp/clip.wav" {
		t.Fatalf("Path = %q", converted.Path())
	}
	if converted.OriginalPath() != "clip.mp3" {
		t.Fatalf("OriginalPath = %q", converted.OriginalPath())
	}

	timed := file.WithDuration(9.5)
	if file.DurationSeconds() != 0 {
		t.Fatal("original duration must stay zero")
	}
	if timed.DurationSeconds() != 9.5 {
		t.Fatalf("DurationSeconds = %v", timed.DurationSeconds())
	}
}

func TestAudioFileValidateRequiresExistingResource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp3")

	file, err := media.NewAudioFile(path, "clip.mp3", "audio/mpeg", 1024)
	if err != nil {
		t.Fatalf("NewAudioFile: %v", err)
	}
	if err := file.Validate(); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for missing file, got %v", err)
	}

	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := file.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseLanguage(t *testing.T) {
	cases := []struct {
		input string
		code  string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"english", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"Spanish", "es"},
	}
	for _, tc := range cases {
		lang, err := media.ParseLanguage(tc.input)
		if err != nil {
			t.Fatalf("ParseLanguage(%q): %v", tc.input, err)
		}
		if lang.Code() != tc.code {
			t.Errorf("ParseLanguage(%q) = %q, want %q", tc.input, lang.Code(), tc.code)
		}
	}

	if _, err := media.ParseLanguage("klingon"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := media.ParseLanguage(""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty input, got %v", err)
	}
}

func TestLanguageDisplayName(t *testing.T) {
	if got := media.MustLanguage("de").DisplayName(); got != "German" {
		t.Fatalf("DisplayName = %q", got)
	}
}
