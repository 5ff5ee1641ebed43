package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrProvider      = errors.New("provider error")
	ErrWorkflowState = errors.New("workflow state error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Error codes surfaced to callers alongside failed transcriptions.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeProvider      = "PROVIDER_ERROR"
	CodeWorkflowState = "WORKFLOW_STATE_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeUnexpected    = "UNEXPECTED_ERROR"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details carries the structured failure payload persisted with a failed
// transcription: a stable code plus arbitrary provider context.
type Details struct {
	Code    string
	Context map[string]any
}

type detailedError struct {
	err     error
	details Details
}

func (e *detailedError) Error() string { return e.err.Error() }

func (e *detailedError) Unwrap() error { return e.err }

// WithDetails attaches a failure code and context map to an error.
func WithDetails(err error, code string, context map[string]any) error {
	if err == nil {
		return nil
	}
	return &detailedError{err: err, details: Details{Code: code, Context: context}}
}

// DetailsFromError extracts attached failure details. When none were attached
// the code is derived from the error's sentinel marker and ok is false.
func DetailsFromError(err error) (Details, bool) {
	var detailed *detailedError
	if errors.As(err, &detailed) {
		details := detailed.details
		if details.Code == "" {
			details.Code = ErrorCode(err)
		}
		return details, true
	}
	return Details{Code: ErrorCode(err)}, false
}

// ErrorCode maps an error to the stable code reported to callers. Errors that
// carry no recognized marker are classified as unexpected and the message keeps
// the original cause.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrProvider), errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient):
		return CodeProvider
	case errors.Is(err, ErrWorkflowState):
		return CodeWorkflowState
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeUnexpected
	}
}

// IsFinal reports whether an error should never be retried automatically.
// Validation and illegal-transition failures are deterministic; retrying them
// cannot succeed.
func IsFinal(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrWorkflowState) || errors.Is(err, ErrConfiguration)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
