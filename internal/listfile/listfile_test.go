// Package listfile_test tests list rendering and atomic writing.
package listfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/dataset-service/internal/listfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Format(t *testing.T) {
	t.Parallel()

	entries := []listfile.Entry{
		{Path: "wav/a.wav", Text: "hello there", Row: 2},
		{Path: "wav/b.wav", Text: "general kenobi", Row: 3},
	}

	data, err := listfile.Render(entries)
	require.NoError(t, err)

	expected := "wav/a.wav|hello there\nwav/b.wav|general kenobi\n"
	assert.Equal(t, expected, string(data))
}

func TestRender_EmptyEntries(t *testing.T) {
	t.Parallel()

	data, err := listfile.Render(nil)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestRender_EmptyTranscriptKeptAsLine(t *testing.T) {
	t.Parallel()

	data, err := listfile.Render([]listfile.Entry{
		{Path: "a.wav", Text: "", Row: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "a.wav|\n", string(data))
}

func TestRender_DelimiterInPath(t *testing.T) {
	t.Parallel()

	entries := []listfile.Entry{
		{Path: "fine.wav", Text: "ok", Row: 2},
		{Path: "bad|name.wav", Text: "ok", Row: 3},
	}

	data, err := listfile.Render(entries)
	require.ErrorIs(t, err, listfile.ErrDelimiterInPath)
	assert.Contains(t, err.Error(), "row 3")
	assert.Nil(t, data)
}

func TestRender_DelimiterInText(t *testing.T) {
	t.Parallel()

	entries := []listfile.Entry{
		{Path: "a.wav", Text: "left | right", Row: 2},
	}

	_, err := listfile.Render(entries)
	require.ErrorIs(t, err, listfile.ErrDelimiterInText)
	assert.Contains(t, err.Error(), "row 2")
}

func TestWrite_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "train.list")

	err := listfile.Write(path, []byte("a.wav|hi\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a.wav|hi\n", string(content))
}

func TestWrite_ReplacesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "train.list")

	err := os.WriteFile(path, []byte("stale contents\n"), 0o600)
	require.NoError(t, err)

	err = listfile.Write(path, []byte("fresh.wav|hi\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh.wav|hi\n", string(content))
}

func TestWrite_EmptyData(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.list")

	err := listfile.Write(path, nil)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, content)
}

func TestWrite_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "no", "such", "dir", "train.list")

	err := listfile.Write(path, []byte("a.wav|hi\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
