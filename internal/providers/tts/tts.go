// Package tts wraps the speech-synthesis provider API and implements the
// dubbing provider contract.
package tts

import (
	"context"
	"io"

	"revoice/internal/dubbing"
	"revoice/internal/providers"
)

// streamChunkSize is the read granularity for streamed audio.
const streamChunkSize = 32 * 1024

// Client calls the synthesis endpoint.
type Client struct {
	transport *providers.Client
}

var _ dubbing.Provider = (*Client)(nil)

// NewClient wraps the shared transport for synthesis calls.
func NewClient(cfg providers.Config, opts ...providers.Option) *Client {
	return &Client{transport: providers.NewClient(cfg, opts...)}
}

type speechRequest struct {
	Model          string  `json:"model"`
	Voice          string  `json:"voice"`
	Input          string  `json:"input"`
	Instructions   string  `json:"instructions,omitempty"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
	Stream         bool    `json:"stream,omitempty"`
}

// Synthesize performs a blocking synthesis call and returns the full audio
// payload.
func (c *Client) Synthesize(ctx context.Context, req dubbing.SpeechRequest) ([]byte, error) {
	return c.transport.PostJSON(ctx, "/audio/speech", speechRequest{
		Model:          c.transport.Model(),
		Voice:          req.Voice,
		Input:          req.Text,
		Instructions:   req.Instructions,
		ResponseFormat: req.ResponseFormat,
		Speed:          req.Speed,
	})
}

// SynthesizeStream performs a streaming synthesis call. Audio arrives on the
// chunk channel, which closes when the stream ends; a terminal failure is
// sent on the buffered error channel, which stays open.
func (c *Client) SynthesizeStream(ctx context.Context, req dubbing.SpeechRequest) (<-chan []byte, <-chan error) {
	chunks := make(chan []byte)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)

		body, err := c.transport.PostJSONStream(ctx, "/audio/speech", speechRequest{
			Model:          c.transport.Model(),
			Voice:          req.Voice,
			Input:          req.Text,
			Instructions:   req.Instructions,
			ResponseFormat: req.ResponseFormat,
			Speed:          req.Speed,
			Stream:         true,
		})
		if err != nil {
			errs <- err
			return
		}
		defer body.Close()

		for {
			buf := make([]byte, streamChunkSize)
			n, readErr := body.Read(buf)
			if n > 0 {
				select {
				case chunks <- buf[:n]:
				case <-ctx.Done():
					errs <- ctx.Err()
					return
				}
			}
			if readErr == io.EOF {
				return
			}
			if readErr != nil {
				errs <- readErr
				return
			}
		}
	}()

	return chunks, errs
}

// HealthCheck verifies the endpoint is reachable and credentials are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.transport.Get(ctx, "/models")
	return err
}
