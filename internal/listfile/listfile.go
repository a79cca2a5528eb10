// Package listfile renders and writes training list files.
//
// A list file holds one sample per line as <audio-path>|<transcript>. The
// delimiter cannot be escaped, so rendering rejects any entry containing it
// instead of producing a corrupt line.
package listfile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
)

// Delimiter separates the audio path from the transcript on each line.
const Delimiter = "|"

var (
	// ErrDelimiterInPath indicates an audio path containing the delimiter.
	ErrDelimiterInPath = errors.New("audio path contains the list delimiter")
	// ErrDelimiterInText indicates a transcript containing the delimiter.
	ErrDelimiterInText = errors.New("transcript contains the list delimiter")
)

// Entry is one list line. Row carries the 1-based metadata table row the
// entry came from for error reporting; it is not rendered.
type Entry struct {
	Path string
	Text string
	Row  int
}

// Render produces the complete file contents for entries, in order. An empty
// slice renders to empty contents. Any delimiter collision fails the whole
// render before a single line is emitted to the caller.
func Render(entries []Entry) ([]byte, error) {
	var buffer bytes.Buffer

	for _, entry := range entries {
		if strings.Contains(entry.Path, Delimiter) {
			return nil, fmt.Errorf(
				"%w: row %d path '%s'", ErrDelimiterInPath, entry.Row, entry.Path,
			)
		}

		if strings.Contains(entry.Text, Delimiter) {
			return nil, fmt.Errorf(
				"%w: row %d path '%s'", ErrDelimiterInText, entry.Row, entry.Path,
			)
		}

		buffer.WriteString(entry.Path)
		buffer.WriteString(Delimiter)
		buffer.WriteString(entry.Text)
		buffer.WriteByte('\n')
	}

	return buffer.Bytes(), nil
}

// Write replaces the file at path with data via a temp file and rename, so a
// failed write never leaves partial contents behind.
func Write(path string, data []byte) error {
	err := atomic.WriteFile(path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("write list file '%s': %w", path, err)
	}

	return nil
}
