package export

import (
	"fmt"
	"sort"
	"strings"

	"revoice/internal/services"
)

// Format identifies a download rendering.
type Format string

const (
	FormatJSON        Format = "json"
	FormatSRT         Format = "srt"
	FormatVTT         Format = "vtt"
	FormatText        Format = "txt"
	FormatDubbingJSON Format = "dubbing_json"
)

var formatExtensions = map[Format]string{
	FormatJSON:        "json",
	FormatSRT:         "srt",
	FormatVTT:         "vtt",
	FormatText:        "txt",
	FormatDubbingJSON: "json",
}

var formatContentTypes = map[Format]string{
	FormatJSON:        "application/json",
	FormatSRT:         "application/x-subrip",
	FormatVTT:         "text/vtt",
	FormatText:        "text/plain",
	FormatDubbingJSON: "application/json",
}

// Formats returns the accepted format names in sorted order.
func Formats() []string {
	out := make([]string, 0, len(formatExtensions))
	for format := range formatExtensions {
		out = append(out, string(format))
	}
	sort.Strings(out)
	return out
}

// ParseFormat normalizes a requested format name.
func ParseFormat(value string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := formatExtensions[format]; !ok {
		return "", services.Wrap(
			services.ErrValidation,
			"export",
			"parse_format",
			fmt.Sprintf("unsupported export format %q (valid: %s)", value, strings.Join(Formats(), ", ")),
			nil,
		)
	}
	return format, nil
}

// Extension returns the file extension for the rendered document.
func (f Format) Extension() string { return formatExtensions[f] }

// ContentType returns the MIME type for the rendered document.
func (f Format) ContentType() string { return formatContentTypes[f] }
