// Package queue persists transcription jobs and their translations in
// SQLite and owns the transcription status machine. All status changes go
// through the transition methods on Transcription; illegal transitions are
// rejected with a workflow-state error before any side effect.
package queue
