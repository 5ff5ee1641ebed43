// Package asr wraps the speech-recognition provider API.
package asr

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"revoice/internal/providers"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

// Recognition is the provider's transcription of one audio file.
type Recognition struct {
	Text             string
	DetectedLanguage string
	Confidence       float64
	DurationSeconds  float64
	Segments         []transcript.Segment
	Words            []transcript.Word
}

// Client calls the recognition endpoint.
type Client struct {
	transport *providers.Client
}

// NewClient wraps the shared transport for recognition calls.
func NewClient(cfg providers.Config, opts ...providers.Option) *Client {
	return &Client{transport: providers.NewClient(cfg, opts...)}
}

type verboseRecognition struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		ID           int     `json:"id"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
		Text         string  `json:"text"`
		AvgLogprob   float64 `json:"avg_logprob"`
		NoSpeechProb float64 `json:"no_speech_prob"`
	} `json:"segments"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Recognize uploads the audio file and returns the verbose transcription with
// word-level timestamps. language may be empty to let the provider detect it.
func (c *Client) Recognize(ctx context.Context, audioPath, language string) (Recognition, error) {
	contents, err := os.ReadFile(audioPath)
	if err != nil {
		return Recognition{}, services.Wrap(services.ErrValidation, "asr", "read_audio",
			fmt.Sprintf("read audio file %s", audioPath), err)
	}

	fields := url.Values{}
	fields.Set("model", c.transport.Model())
	fields.Set("response_format", "verbose_json")
	fields.Add("timestamp_granularities[]", "word")
	fields.Add("timestamp_granularities[]", "segment")
	if lang := strings.TrimSpace(language); lang != "" {
		fields.Set("language", lang)
	}

	body, err := c.transport.PostMultipart(ctx, "/audio/transcriptions", fields, providers.FormFile{
		Field:    "file",
		Filename: filepath.Base(audioPath),
		Contents: contents,
	})
	if err != nil {
		return Recognition{}, services.Wrap(services.ErrProvider, "asr", "recognize", "speech recognition request failed", err)
	}

	var parsed verboseRecognition
	if err := providers.DecodeModelJSON(string(body), &parsed); err != nil {
		return Recognition{}, services.Wrap(services.ErrProvider, "asr", "recognize", "decode recognition response", err)
	}

	result := Recognition{
		Text:             strings.TrimSpace(parsed.Text),
		DetectedLanguage: strings.ToLower(strings.TrimSpace(parsed.Language)),
		DurationSeconds:  parsed.Duration,
	}

	confidenceSum := 0.0
	for _, seg := range parsed.Segments {
		result.Segments = append(result.Segments, transcript.Segment{
			ID:    seg.ID,
			Text:  strings.TrimSpace(seg.Text),
			Start: seg.Start,
			End:   seg.End,
		})
		confidenceSum += math.Exp(seg.AvgLogprob) * (1 - seg.NoSpeechProb)
	}
	if len(parsed.Segments) > 0 {
		result.Confidence = confidenceSum / float64(len(parsed.Segments))
	}

	for _, word := range parsed.Words {
		result.Words = append(result.Words, transcript.Word{
			Text:  strings.TrimSpace(word.Word),
			Start: word.Start,
			End:   word.End,
		})
	}

	return result, nil
}

// HealthCheck verifies the endpoint is reachable and credentials are usable
// by probing the models listing.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.transport.Get(ctx, "/models"); err != nil {
		return services.Wrap(services.ErrProvider, "asr", "health_check", "recognition endpoint unavailable", err)
	}
	return nil
}
