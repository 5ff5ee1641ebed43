package stage

import (
	"encoding/json"
	"strings"

	"revoice/internal/services"
	"revoice/internal/transcript"
)

// ParseSegments decodes the stored segments for a transcription.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseSegments(raw string) ([]transcript.Segment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var segments []transcript.Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse segments",
			"Stored segments missing or invalid; rerun transcription", err)
	}
	return segments, nil
}

// EncodeSegments serializes segments for persistence.
func EncodeSegments(segments []transcript.Segment) (string, error) {
	if len(segments) == 0 {
		return "", nil
	}
	encoded, err := json.Marshal(segments)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "encode segments",
			"Could not serialize transcript segments", err)
	}
	return string(encoded), nil
}
