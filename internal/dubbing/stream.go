package dubbing

import (
	"context"

	"revoice/internal/logging"
	"revoice/internal/services"
	"revoice/internal/transcript"
)

// DefaultStreamBufferChunks bounds how far the provider may run ahead of a
// slow consumer before backpressure stalls the network read.
const DefaultStreamBufferChunks = 16

// StreamSink receives audio chunks in order. Returning an error stops the
// stream.
type StreamSink func(chunk []byte) error

// StreamingAudio summarizes a completed streaming synthesis.
type StreamingAudio struct {
	BytesStreamed     int64
	Chunks            int
	EstimatedDuration float64
	Instructions      Instructions
}

// GenerateStreamingPreview synthesizes an untimed preview and delivers audio
// chunks to sink as they arrive. Chunks flow through a bounded buffer of
// bufferChunks entries; when the sink falls behind, the provider read stalls
// instead of accumulating audio in memory.
func (s *Synthesizer) GenerateStreamingPreview(ctx context.Context, text string, cfg Config, meta transcript.AudioMetadata, bufferChunks int, sink StreamSink) (StreamingAudio, error) {
	if err := validateText(text); err != nil {
		return StreamingAudio{}, err
	}
	if !cfg.EnableStreaming() {
		return StreamingAudio{}, services.Wrap(services.ErrValidation, "dubbing", "stream_preview",
			"streaming not enabled in configuration", nil)
	}
	if sink == nil {
		return StreamingAudio{}, services.Wrap(services.ErrValidation, "dubbing", "stream_preview",
			"stream sink is required", nil)
	}
	if bufferChunks <= 0 {
		bufferChunks = DefaultStreamBufferChunks
	}

	instructions := BuildPreviewInstructions(text, cfg, meta)
	result := StreamingAudio{
		EstimatedDuration: EstimateNaturalDuration(text, meta),
		Instructions:      instructions,
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chunks, errs := s.provider.SynthesizeStream(streamCtx, SpeechRequest{
		Text:           text,
		Voice:          cfg.VoicePreset(),
		Instructions:   instructions.Text,
		ResponseFormat: "wav",
		Speed:          1.0,
	})

	buffered := make(chan []byte, bufferChunks)
	pumpErr := make(chan error, 1)
	go func() {
		defer close(buffered)
		for {
			select {
			case chunk, ok := <-chunks:
				if !ok {
					// The producer may have reported a terminal error just
					// before closing the chunk channel.
					select {
					case err := <-errs:
						pumpErr <- err
					default:
						pumpErr <- nil
					}
					return
				}
				select {
				case buffered <- chunk:
				case <-streamCtx.Done():
					pumpErr <- streamCtx.Err()
					return
				}
			case err := <-errs:
				pumpErr <- err
				return
			case <-streamCtx.Done():
				pumpErr <- streamCtx.Err()
				return
			}
		}
	}()

	for chunk := range buffered {
		if err := sink(chunk); err != nil {
			cancel()
			for range buffered {
			}
			<-pumpErr
			return result, services.Wrap(services.ErrProvider, "dubbing", "stream_preview", "stream consumer failed", err)
		}
		result.BytesStreamed += int64(len(chunk))
		result.Chunks++
	}

	if err := <-pumpErr; err != nil {
		return result, services.Wrap(services.ErrProvider, "dubbing", "stream_preview", "streaming synthesis failed", err)
	}

	s.logger.Debug("streaming preview complete", logging.Args(
		logging.Int64("bytes", result.BytesStreamed),
		logging.Int("chunks", result.Chunks))...)

	return result, nil
}
