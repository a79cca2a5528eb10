// Package transcript provides transcript text normalization for list records.
//
// List files carry one sample per line, so transcript text taken from the
// metadata table must be flattened onto a single line before it is rendered.
package transcript

import (
	"regexp"
	"strings"
)

// Regex patterns for transcript normalization.
const (
	controlRegexPattern    = `[[:cntrl:]]`
	whitespaceRegexPattern = `\s+`
)

// Normalizer prepares transcript text for single-line list records.
type Normalizer struct {
	// Precompiled regex patterns for performance.
	controlPattern    *regexp.Regexp
	whitespacePattern *regexp.Regexp
}

// NewNormalizer creates a new transcript normalizer with compiled patterns.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		controlPattern:    regexp.MustCompile(controlRegexPattern),
		whitespacePattern: regexp.MustCompile(whitespaceRegexPattern),
	}
}

// Normalize flattens transcript text onto a single line. Control characters
// (including line breaks and tabs) become spaces, whitespace runs collapse to
// a single space, and the result is trimmed.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return text
	}

	cleaned := n.controlPattern.ReplaceAllString(text, " ")
	cleaned = n.whitespacePattern.ReplaceAllString(cleaned, " ")

	return strings.TrimSpace(cleaned)
}
