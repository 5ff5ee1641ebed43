// Package transcriber implements the speech recognition stage. It validates
// the uploaded audio, converts containers the provider rejects, and stores the
// recognized text with word-derived segments on the queue item.
package transcriber
