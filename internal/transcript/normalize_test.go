package transcript_test

import (
	"testing"

	"github.com/book-expert/dataset-service/internal/transcript"
)

// normalizerTestCase defines a standard test case for the normalizer.
type normalizerTestCase struct {
	name     string
	input    string
	expected string
}

// runNormalizerTests is a helper function to run table-driven tests against a
// shared normalizer.
func runNormalizerTests(t *testing.T, tests []normalizerTestCase) {
	t.Helper()

	normalizer := transcript.NewNormalizer()

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := normalizer.Normalize(testCase.input)
			if result != testCase.expected {
				t.Errorf("Expected %q, got %q", testCase.expected, result)
			}
		})
	}
}

func TestNewNormalizer(t *testing.T) {
	t.Parallel()

	normalizer := transcript.NewNormalizer()
	if normalizer == nil {
		t.Fatal("NewNormalizer returned nil")
	}
}

func TestNormalizer_Normalize_EmptyInput(t *testing.T) {
	t.Parallel()

	normalizer := transcript.NewNormalizer()

	result := normalizer.Normalize("")
	if result != "" {
		t.Errorf("Expected empty string for empty input, got %q", result)
	}
}

// TestNormalizer_Normalize_SingleLine checks that line breaks, tabs, and
// repeated spaces collapse onto a single line.
func TestNormalizer_Normalize_SingleLine(t *testing.T) {
	t.Parallel()

	tests := []normalizerTestCase{
		{
			name:     "plain text untouched",
			input:    "the quick brown fox",
			expected: "the quick brown fox",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  a short sentence  ",
			expected: "a short sentence",
		},
		{
			name:     "newline becomes space",
			input:    "first line\nsecond line",
			expected: "first line second line",
		},
		{
			name:     "windows line break becomes space",
			input:    "first line\r\nsecond line",
			expected: "first line second line",
		},
		{
			name:     "tabs and runs collapse",
			input:    "one\ttwo   three",
			expected: "one two three",
		},
		{
			name:     "control characters dropped",
			input:    "bell\x07and\x00null",
			expected: "bell and null",
		},
		{
			name:     "whitespace only",
			input:    " \n\t ",
			expected: "",
		},
	}

	runNormalizerTests(t, tests)
}
