package transcript

import "strings"

// RedistributeWordTimings spreads translated text across the original segment
// window as evenly spaced words. Providers echo segment timestamps but rarely
// word-level timing for translated text, so these words are marked estimated.
func RedistributeWordTimings(source Segment, translatedText string) []Word {
	tokens := strings.Fields(translatedText)
	if len(tokens) == 0 {
		return nil
	}

	span := source.Duration()
	if span < 0 {
		span = 0
	}
	step := span / float64(len(tokens))

	words := make([]Word, 0, len(tokens))
	for i, token := range tokens {
		start := source.Start + float64(i)*step
		words = append(words, Word{
			Text:      token,
			Start:     start,
			End:       start + step,
			Estimated: true,
		})
	}
	// Pin the final word to the segment boundary so rounding never leaks
	// past the original window.
	words[len(words)-1].End = source.End
	return words
}
