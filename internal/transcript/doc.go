// Package transcript holds the word/segment data model produced by speech
// recognition plus the pure algorithms that operate on it: grouping word
// timestamps into translation-sized segments, scoring translated segments
// against their source, deriving audio metadata, and redistributing word
// timings across translated text.
package transcript
