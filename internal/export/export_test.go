package export

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"revoice/internal/dubbing"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

func sampleSegments() []transcript.Segment {
	return []transcript.Segment{
		{ID: 0, Text: "Bonjour tout le monde", Start: 0, End: 2.5},
		{ID: 1, Text: "Bienvenue dans l'émission", Start: 3.1, End: 5.75},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ok    bool
	}{
		{"srt", FormatSRT, true},
		{" VTT ", FormatVTT, true},
		{"dubbing_json", FormatDubbingJSON, true},
		{"txt", FormatText, true},
		{"json", FormatJSON, true},
		{"pdf", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.input)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseFormat(%q): %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseFormat(%q) = %q, want %q", tc.input, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ParseFormat(%q) error = %v, want validation error", tc.input, err)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		sep     byte
		want    string
	}{
		{0, ',', "00:00:00,000"},
		{2.5, ',', "00:00:02,500"},
		{3661.042, '.', "01:01:01.042"},
		{-1, ',', "00:00:00,000"},
	}
	for _, tc := range tests {
		if got := formatTimestamp(tc.seconds, tc.sep); got != tc.want {
			t.Fatalf("formatTimestamp(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestRenderSRT(t *testing.T) {
	out := string(RenderSRT(sampleSegments()))
	if !strings.HasPrefix(out, "1\n00:00:00,000 --> 00:00:02,500\nBonjour tout le monde\n\n") {
		t.Fatalf("srt output:\n%s", out)
	}
	if !strings.Contains(out, "2\n00:00:03,100 --> 00:00:05,750\n") {
		t.Fatalf("second cue missing:\n%s", out)
	}
}

func TestRenderVTT(t *testing.T) {
	out := string(RenderVTT(sampleSegments()))
	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "00:00:03.100 --> 00:00:05.750\n") {
		t.Fatalf("vtt timestamps wrong:\n%s", out)
	}
	if strings.Contains(out, ",") && strings.Contains(out, "-->") && strings.Contains(out, "00:00:02,") {
		t.Fatal("vtt output uses srt comma separator")
	}
}

func TestRenderText(t *testing.T) {
	out := string(RenderText(sampleSegments()))
	want := "Bonjour tout le monde Bienvenue dans l'émission\n"
	if out != want {
		t.Fatalf("text output = %q", out)
	}
	if RenderText(nil) != nil {
		t.Fatal("empty input should render nothing")
	}
}

func TestRenderJSON(t *testing.T) {
	doc := Document{
		TranscriptionID: 42,
		TranslationID:   "abc",
		Title:           "interview",
		SourceLanguage:  "english",
		TargetLanguage:  "fr",
		Provider:        "openai",
		QualityScore:    0.9,
		Segments:        sampleSegments(),
	}
	raw, err := RenderJSON(doc)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["transcription_id"] != float64(42) {
		t.Fatalf("transcription_id = %v", decoded["transcription_id"])
	}
	if decoded["text"] != "Bonjour tout le monde Bienvenue dans l'émission" {
		t.Fatalf("text = %v", decoded["text"])
	}
	segments, ok := decoded["segments"].([]any)
	if !ok || len(segments) != 2 {
		t.Fatalf("segments = %v", decoded["segments"])
	}
}

func TestRenderDubbingScript(t *testing.T) {
	cfg, err := dubbing.DefaultConfig("fr")
	if err != nil {
		t.Fatal(err)
	}
	doc := Document{
		TranscriptionID: 7,
		TargetLanguage:  "fr",
		Segments:        sampleSegments(),
		Metadata:        transcript.AudioMetadata{SpeechRate: 150, ContentType: transcript.ContentDialogue},
	}
	raw, err := RenderDubbingScript(doc, cfg)
	if err != nil {
		t.Fatalf("RenderDubbingScript: %v", err)
	}
	var script struct {
		Voice string `json:"voice"`
		Cues  []struct {
			Text           string  `json:"text"`
			TargetDuration float64 `json:"target_duration"`
			Speed          float64 `json:"speed"`
			Instructions   string  `json:"instructions"`
		} `json:"cues"`
	}
	if err := json.Unmarshal(raw, &script); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if script.Voice == "" {
		t.Fatal("voice not populated from config")
	}
	if len(script.Cues) != 2 {
		t.Fatalf("cues = %d", len(script.Cues))
	}
	first := script.Cues[0]
	if first.TargetDuration != 2.5 {
		t.Fatalf("target duration = %v", first.TargetDuration)
	}
	if first.Speed < dubbing.MinSpeed || first.Speed > dubbing.MaxSpeed {
		t.Fatalf("speed %v outside clamp", first.Speed)
	}
	if first.Instructions == "" {
		t.Fatal("instructions not rendered")
	}
}

func TestRenderDispatch(t *testing.T) {
	cfg, err := dubbing.DefaultConfig("fr")
	if err != nil {
		t.Fatal(err)
	}
	doc := Document{TargetLanguage: "fr", Segments: sampleSegments()}
	for _, format := range []Format{FormatSRT, FormatVTT, FormatText, FormatJSON, FormatDubbingJSON} {
		out, err := Render(format, doc, cfg)
		if err != nil {
			t.Fatalf("Render(%s): %v", format, err)
		}
		if len(out) == 0 {
			t.Fatalf("Render(%s) produced no output", format)
		}
	}
	if _, err := Render(Format("docx"), doc, cfg); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unknown format error = %v", err)
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatSRT.Extension() != "srt" || FormatDubbingJSON.Extension() != "json" {
		t.Fatal("extensions wrong")
	}
	if FormatVTT.ContentType() != "text/vtt" {
		t.Fatalf("vtt content type = %q", FormatVTT.ContentType())
	}
	formats := Formats()
	if len(formats) != 5 {
		t.Fatalf("formats = %v", formats)
	}
}
