package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"revoice/internal/services"
)

// MaxFileSizeBytes is the hard ceiling accepted for uploaded audio.
const MaxFileSizeBytes = 25 * 1024 * 1024

// PreprocessSizeBytes is the size above which audio is preprocessed before
// recognition even when the container format needs no conversion.
const PreprocessSizeBytes = 10 * 1024 * 1024

var supportedFormats = map[string]struct{}{
	"mp3": {}, "mp4": {}, "m4a": {}, "wav": {},
	"flac": {}, "ogg": {}, "webm": {}, "aac": {},
}

// Formats needing container conversion before the recognizer sees them.
var preprocessFormats = map[string]struct{}{
	"mp4": {}, "webm": {}, "m4a": {},
}

// AudioFile is an immutable reference to a validated audio resource.
type AudioFile struct {
	path             string
	originalName     string
	mimeType         string
	sizeBytes        int64
	durationSeconds  float64
	preprocessedPath string
}

// NewAudioFile validates the basic invariants and constructs an AudioFile.
// The path is not required to exist until Validate is called.
func NewAudioFile(path, originalName, mimeType string, sizeBytes int64) (AudioFile, error) {
	var empty AudioFile
	path = strings.TrimSpace(path)
	if path == "" {
		return empty, services.Wrap(services.ErrValidation, "media", "new audio file", "path required", nil)
	}
	if sizeBytes <= 0 {
		return empty, services.Wrap(services.ErrValidation, "media", "new audio file", "file size must be positive", nil)
	}
	if sizeBytes > MaxFileSizeBytes {
		return empty, services.Wrap(
			services.ErrValidation,
			"media",
			"new audio file",
			fmt.Sprintf("file size %d exceeds %d byte limit", sizeBytes, MaxFileSizeBytes),
			nil,
		)
	}
	format := formatFromName(firstNonEmpty(originalName, path))
	if _, ok := supportedFormats[format]; !ok {
		return empty, services.Wrap(
			services.ErrValidation,
			"media",
			"new audio file",
			fmt.Sprintf("unsupported audio format %q", format),
			nil,
		)
	}
	return AudioFile{
		path:         path,
		originalName: strings.TrimSpace(originalName),
		mimeType:     strings.TrimSpace(mimeType),
		sizeBytes:    sizeBytes,
	}, nil
}

// Path returns the location the recognizer should read from: the preprocessed
// path when set, the original otherwise.
func (f AudioFile) Path() string {
	if f.preprocessedPath != "" {
		return f.preprocessedPath
	}
	return f.path
}

// OriginalPath returns the path of the unmodified upload.
func (f AudioFile) OriginalPath() string { return f.path }

// OriginalName returns the upload's original filename.
func (f AudioFile) OriginalName() string { return f.originalName }

// MimeType returns the declared mime type.
func (f AudioFile) MimeType() string { return f.mimeType }

// SizeBytes returns the byte size of the original upload.
func (f AudioFile) SizeBytes() int64 { return f.sizeBytes }

// DurationSeconds returns the known duration, zero when not yet probed.
func (f AudioFile) DurationSeconds() float64 { return f.durationSeconds }

// Format returns the lowercase extension of the original file.
func (f AudioFile) Format() string {
	return formatFromName(firstNonEmpty(f.originalName, f.path))
}

// IsPreprocessed reports whether a preprocessed copy has been attached.
func (f AudioFile) IsPreprocessed() bool { return f.preprocessedPath != "" }

// NeedsPreprocessing reports whether the file must be converted before the
// recognizer can use it: container formats the provider rejects, or files
// large enough that conversion pays for itself.
func (f AudioFile) NeedsPreprocessing() bool {
	if _, ok := preprocessFormats[f.Format()]; ok {
		return true
	}
	return f.sizeBytes > PreprocessSizeBytes
}

// WithPreprocessedPath returns a copy pointing at the converted audio.
func (f AudioFile) WithPreprocessedPath(path string) AudioFile {
	clone := f
	clone.preprocessedPath = strings.TrimSpace(path)
	return clone
}

// WithDuration returns a copy carrying the probed duration.
func (f AudioFile) WithDuration(seconds float64) AudioFile {
	clone := f
	if seconds > 0 {
		clone.durationSeconds = seconds
	}
	return clone
}

// Validate checks that the referenced resource exists on disk.
func (f AudioFile) Validate() error {
	info, err := os.Stat(f.Path())
	if err != nil {
		return services.Wrap(services.ErrValidation, "media", "validate audio file", fmt.Sprintf("audio file not accessible at %s", f.Path()), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "media", "validate audio file", fmt.Sprintf("%s is a directory", f.Path()), nil)
	}
	return nil
}

// SupportedFormats returns the accepted extensions in sorted order.
func SupportedFormats() []string {
	out := make([]string, 0, len(supportedFormats))
	for format := range supportedFormats {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

// IsSupportedFormat reports whether an extension is accepted.
func IsSupportedFormat(format string) bool {
	_, ok := supportedFormats[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

func formatFromName(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
