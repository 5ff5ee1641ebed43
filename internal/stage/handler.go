package stage

import (
	"context"

	"revoice/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Transcription) error
	Execute(context.Context, *queue.Transcription) error
	HealthCheck(context.Context) Health
}
