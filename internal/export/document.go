package export

import (
	"encoding/json"
	"time"

	"revoice/internal/dubbing"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

// Document carries everything a renderer may need about one translation.
type Document struct {
	TranscriptionID int64
	TranslationID   string
	Title           string
	SourceLanguage  string
	TargetLanguage  string
	Provider        string
	QualityScore    float64
	Segments        []transcript.Segment
	Metadata        transcript.AudioMetadata
}

type jsonSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type jsonDocument struct {
	TranscriptionID int64         `json:"transcription_id"`
	TranslationID   string        `json:"translation_id,omitempty"`
	Title           string        `json:"title,omitempty"`
	SourceLanguage  string        `json:"source_language,omitempty"`
	TargetLanguage  string        `json:"target_language"`
	Provider        string        `json:"provider,omitempty"`
	QualityScore    float64       `json:"quality_score"`
	Text            string        `json:"text"`
	Segments        []jsonSegment `json:"segments"`
	ExportedAt      time.Time     `json:"exported_at"`
}

// RenderJSON renders the translation as a standalone JSON document.
func RenderJSON(doc Document) ([]byte, error) {
	out := jsonDocument{
		TranscriptionID: doc.TranscriptionID,
		TranslationID:   doc.TranslationID,
		Title:           doc.Title,
		SourceLanguage:  doc.SourceLanguage,
		TargetLanguage:  doc.TargetLanguage,
		Provider:        doc.Provider,
		QualityScore:    doc.QualityScore,
		Text:            transcript.JoinSegmentText(doc.Segments),
		Segments:        make([]jsonSegment, 0, len(doc.Segments)),
		ExportedAt:      time.Now().UTC(),
	}
	for _, seg := range doc.Segments {
		out.Segments = append(out.Segments, jsonSegment{ID: seg.ID, Text: seg.Text, Start: seg.Start, End: seg.End})
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "export", "render_json", "encode translation document", err)
	}
	return encoded, nil
}

type dubbingCue struct {
	ID             int     `json:"id"`
	Text           string  `json:"text"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	TargetDuration float64 `json:"target_duration"`
	Speed          float64 `json:"speed"`
	Instructions   string  `json:"instructions,omitempty"`
}

type dubbingScript struct {
	TranscriptionID int64        `json:"transcription_id"`
	TranslationID   string       `json:"translation_id,omitempty"`
	TargetLanguage  string       `json:"target_language"`
	Voice           string       `json:"voice"`
	ResponseFormat  string       `json:"response_format"`
	Cues            []dubbingCue `json:"cues"`
}

// RenderDubbingScript renders per-segment synthesis cues: the translated text,
// the timing window it must fit, the playback speed adjustment, and the
// serialized instruction set for the synthesis provider.
func RenderDubbingScript(doc Document, cfg dubbing.Config) ([]byte, error) {
	script := dubbingScript{
		TranscriptionID: doc.TranscriptionID,
		TranslationID:   doc.TranslationID,
		TargetLanguage:  cfg.TargetLanguage(),
		Voice:           cfg.VoicePreset(),
		ResponseFormat:  cfg.ResponseFormat(),
		Cues:            make([]dubbingCue, 0, len(doc.Segments)),
	}
	for _, seg := range doc.Segments {
		duration := seg.Duration()
		instructions := dubbing.BuildInstructions(seg.Text, duration, cfg, doc.Metadata)
		script.Cues = append(script.Cues, dubbingCue{
			ID:             seg.ID,
			Text:           seg.Text,
			Start:          seg.Start,
			End:            seg.End,
			TargetDuration: duration,
			Speed:          dubbing.SpeedFor(seg.Text, duration),
			Instructions:   instructions.Text,
		})
	}
	encoded, err := json.MarshalIndent(script, "", "  ")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "export", "render_dubbing_script", "encode dubbing script", err)
	}
	return encoded, nil
}

// Render produces the document in the requested format.
func Render(format Format, doc Document, cfg dubbing.Config) ([]byte, error) {
	switch format {
	case FormatSRT:
		return RenderSRT(doc.Segments), nil
	case FormatVTT:
		return RenderVTT(doc.Segments), nil
	case FormatText:
		return RenderText(doc.Segments), nil
	case FormatJSON:
		return RenderJSON(doc)
	case FormatDubbingJSON:
		return RenderDubbingScript(doc, cfg)
	default:
		_, err := ParseFormat(string(format))
		return nil, err
	}
}
