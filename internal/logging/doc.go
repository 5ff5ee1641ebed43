// Package logging wraps log/slog with the attribute helpers, standardized
// field keys, and handler construction used throughout revoice. Console and
// JSON handlers are selected by configuration; loggers flow through contexts
// so stage, lane, and transcription identifiers appear on every record.
package logging
