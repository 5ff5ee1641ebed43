// Package media holds the audio-side value objects of the pipeline: validated
// audio file references and normalized language codes. Both are immutable;
// mutating operations return copies.
package media
