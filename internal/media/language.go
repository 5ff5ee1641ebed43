package media

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"revoice/internal/services"
)

// supportedCodes lists the ISO 639-1 codes the pipeline accepts, in display
// order.
var supportedCodes = []string{
	"en", "es", "fr", "de", "it", "pt", "ja", "ko", "zh",
	"ru", "ar", "hi", "nl", "pl", "sv", "da", "no", "fi",
}

// bibliographicAliases covers the ISO 639-2/B codes that the BCP 47 registry
// omits but recognition providers still emit.
var bibliographicAliases = map[string]string{
	"fre": "fr",
	"ger": "de",
	"dut": "nl",
	"chi": "zh",
}

var supportedTags = func() map[string]language.Tag {
	tags := make(map[string]language.Tag, len(supportedCodes))
	for _, code := range supportedCodes {
		tags[code] = language.MustParse(code)
	}
	return tags
}()

// Language is a normalized lowercase ISO 639-1 code from the supported set.
type Language struct {
	code string
}

// ParseLanguage normalizes a language code or English word form ("english",
// "Spanish") to a supported Language. Anything outside the supported set is
// rejected.
func ParseLanguage(value string) (Language, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Language{}, services.Wrap(services.ErrValidation, "media", "parse language", "language code required", nil)
	}

	if alias, ok := bibliographicAliases[value]; ok {
		value = alias
	}

	if tag, err := language.Parse(value); err == nil {
		base, _ := tag.Base()
		code := base.String()
		if _, ok := supportedTags[code]; ok {
			return Language{code: code}, nil
		}
	}

	// Word forms are not BCP 47 tags; match against English display names.
	namer := display.English.Languages()
	for code, tag := range supportedTags {
		if strings.EqualFold(namer.Name(tag), value) {
			return Language{code: code}, nil
		}
	}

	return Language{}, services.Wrap(services.ErrValidation, "media", "parse language", fmt.Sprintf("unsupported language %q", value), nil)
}

// MustLanguage parses a language code and panics on failure. Intended for
// fixed codes in tests and defaults.
func MustLanguage(value string) Language {
	lang, err := ParseLanguage(value)
	if err != nil {
		panic(err)
	}
	return lang
}

// Code returns the ISO 639-1 code.
func (l Language) Code() string { return l.code }

// IsZero reports whether the language is unset.
func (l Language) IsZero() bool { return l.code == "" }

// DisplayName returns the English name for the language.
func (l Language) DisplayName() string {
	tag, ok := supportedTags[l.code]
	if !ok {
		return l.code
	}
	return display.English.Languages().Name(tag)
}

func (l Language) String() string { return l.code }

// SupportedLanguages returns the ordered ISO 639-1 codes the pipeline accepts.
func SupportedLanguages() []string {
	out := make([]string, len(supportedCodes))
	copy(out, supportedCodes)
	return out
}
