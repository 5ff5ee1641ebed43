package export

import (
	"fmt"
	"math"
	"strings"

	"revoice/internal/transcript"
)

// formatTimestamp renders seconds as HH:MM:SS with millisecond precision.
// SRT separates milliseconds with a comma, WebVTT with a period.
func formatTimestamp(seconds float64, millisSep byte) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis % 3_600_000) / 60_000
	secs := (totalMillis % 60_000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", hours, minutes, secs, millisSep, millis)
}

// RenderSRT renders segments as a SubRip subtitle document.
func RenderSRT(segments []transcript.Segment) []byte {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, ','), formatTimestamp(seg.End, ','))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

// RenderVTT renders segments as a WebVTT subtitle document.
func RenderVTT(segments []transcript.Segment) []byte {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(seg.Start, '.'), formatTimestamp(seg.End, '.'))
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

// RenderText renders the segment texts as plain paragraphs.
func RenderText(segments []transcript.Segment) []byte {
	joined := transcript.JoinSegmentText(segments)
	if joined == "" {
		return nil
	}
	return []byte(joined + "\n")
}
