// Package services defines the shared error taxonomy and context plumbing used
// across the transcription pipeline. Errors are tagged with sentinel markers
// (validation, provider, workflow state) so stages and the workflow manager can
// classify failures without string matching, and context helpers carry
// transcription/stage/lane identifiers into structured logs.
package services
