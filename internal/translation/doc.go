// Package translation is the caller-facing facade over the translation
// provider and the translation records in the queue store: create a
// translation from a completed transcription, look one up, and render it for
// download.
package translation
