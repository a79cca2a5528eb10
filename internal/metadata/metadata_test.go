// Package metadata_test tests the metadata table loader.
package metadata_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/book-expert/dataset-service/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// defaultColumns returns a column configuration that relies on every default
// name and sets only the transcript text column.
func defaultColumns() metadata.Columns {
	return metadata.Columns{
		File:     "",
		Split:    "",
		Category: "",
		Duration: "",
		Text:     "text",
	}
}

func TestRead_ParsesSamples(t *testing.T) {
	t.Parallel()

	input := "file_name,split,gender,duration,text\n" +
		"a.wav,train,F,10.5,Hello there\n" +
		"b.wav,test, m ,3,  General Kenobi  \n"

	table, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.NoError(t, err)

	require.Len(t, table.Samples, 2)
	assert.Equal(t, 0, table.Skipped)
	assert.True(t, table.HasCategory)

	first := table.Samples[0]
	assert.Equal(t, "a.wav", first.File)
	assert.Equal(t, "train", first.Split)
	assert.Equal(t, "F", first.Category)
	assert.InDelta(t, 10.5, first.Seconds, 0.0001)
	assert.Equal(t, "Hello there", first.Text)
	assert.Equal(t, 2, first.Row)

	second := table.Samples[1]
	assert.Equal(t, "b.wav", second.File)
	assert.Equal(t, "m", second.Category)
	assert.Equal(t, "General Kenobi", second.Text)
	assert.Equal(t, 3, second.Row)
}

func TestRead_CustomColumnNames(t *testing.T) {
	t.Parallel()

	input := "clip,subset,speaker,secs,sentence\n" +
		"a.wav,train,s01,4.2,short line\n"

	cols := metadata.Columns{
		File:     "clip",
		Split:    "subset",
		Category: "speaker",
		Duration: "secs",
		Text:     "sentence",
	}

	table, err := metadata.Read(strings.NewReader(input), cols)
	require.NoError(t, err)

	require.Len(t, table.Samples, 1)
	assert.Equal(t, "s01", table.Samples[0].Category)
	assert.InDelta(t, 4.2, table.Samples[0].Seconds, 0.0001)
}

func TestRead_HeaderMatchingIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	input := "File_Name, SPLIT,Gender,DURATION,Text\n" +
		"a.wav,train,f,1,hi\n"

	table, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.NoError(t, err)

	require.Len(t, table.Samples, 1)
	assert.Equal(t, "train", table.Samples[0].Split)
}

func TestRead_SkipsRowsWithoutFile(t *testing.T) {
	t.Parallel()

	input := "file_name,split,gender,duration,text\n" +
		",train,f,1,dropped\n" +
		"   ,train,f,1,also dropped\n" +
		"kept.wav,train,f,1,kept\n"

	table, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.NoError(t, err)

	require.Len(t, table.Samples, 1)
	assert.Equal(t, 2, table.Skipped)
	assert.Equal(t, "kept.wav", table.Samples[0].File)
	assert.Equal(t, 4, table.Samples[0].Row)
}

func TestRead_HeaderOnly(t *testing.T) {
	t.Parallel()

	input := "file_name,split,gender,duration,text\n"

	table, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.NoError(t, err)

	assert.Empty(t, table.Samples)
	assert.Equal(t, 0, table.Skipped)
}

func TestRead_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := metadata.Read(strings.NewReader(""), defaultColumns())
	require.ErrorIs(t, err, metadata.ErrMissingHeader)
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "missing file column",
			header: "split,gender,duration,text",
			want:   "file_name",
		},
		{
			name:   "missing split column",
			header: "file_name,gender,duration,text",
			want:   "split",
		},
		{
			name:   "missing duration column",
			header: "file_name,split,gender,text",
			want:   "duration",
		},
		{
			name:   "missing text column",
			header: "file_name,split,gender,duration",
			want:   "text",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			input := testCase.header + "\na.wav,train,f,1,hi\n"

			_, err := metadata.Read(strings.NewReader(input), defaultColumns())
			require.ErrorIs(t, err, metadata.ErrMissingColumn)
			assert.Contains(t, err.Error(), testCase.want)
		})
	}
}

func TestRead_MissingTextColumnName(t *testing.T) {
	t.Parallel()

	cols := metadata.Columns{
		File:     "",
		Split:    "",
		Category: "",
		Duration: "",
		Text:     "",
	}

	_, err := metadata.Read(strings.NewReader("file_name,split,duration\n"), cols)
	require.ErrorIs(t, err, metadata.ErrNoTextColumn)
}

func TestRead_WithoutCategoryColumn(t *testing.T) {
	t.Parallel()

	input := "file_name,split,duration,text\n" +
		"a.wav,train,2,hi\n"

	table, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.NoError(t, err)

	assert.False(t, table.HasCategory)
	require.Len(t, table.Samples, 1)
	assert.Equal(t, "", table.Samples[0].Category)
}

func TestRead_RejectsBadDurations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration string
		wantErr  error
	}{
		{
			name:     "not a number",
			duration: "abc",
			wantErr:  metadata.ErrBadDuration,
		},
		{
			name:     "empty value",
			duration: "",
			wantErr:  metadata.ErrBadDuration,
		},
		{
			name:     "not a number literal",
			duration: "NaN",
			wantErr:  metadata.ErrBadDuration,
		},
		{
			name:     "infinite value",
			duration: "+Inf",
			wantErr:  metadata.ErrBadDuration,
		},
		{
			name:     "negative value",
			duration: "-1.5",
			wantErr:  metadata.ErrNegativeDuration,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			input := "file_name,split,gender,duration,text\n" +
				"a.wav,train,f," + testCase.duration + ",hi\n"

			_, err := metadata.Read(strings.NewReader(input), defaultColumns())
			require.ErrorIs(t, err, testCase.wantErr)
			assert.Contains(t, err.Error(), "row 2")
		})
	}
}

func TestRead_ShortRecordMissingDuration(t *testing.T) {
	t.Parallel()

	input := "file_name,split,gender,duration,text\n" +
		"a.wav,train\n"

	_, err := metadata.Read(strings.NewReader(input), defaultColumns())
	require.ErrorIs(t, err, metadata.ErrBadDuration)
}

func TestLoad_ReadsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metadata.csv")
	content := "file_name,split,gender,duration,text\n" +
		"a.wav,train,f,1.25,hello\n"

	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	table, err := metadata.Load(path, defaultColumns())
	require.NoError(t, err)

	require.Len(t, table.Samples, 1)
	assert.Equal(t, "a.wav", table.Samples[0].File)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent.csv")

	_, err := metadata.Load(path, defaultColumns())
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestLoad_WrapsParseErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "metadata.csv")
	content := "file_name,split,gender,duration,text\n" +
		"a.wav,train,f,bogus,hello\n"

	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	_, err = metadata.Load(path, defaultColumns())
	require.ErrorIs(t, err, metadata.ErrBadDuration)
	assert.Contains(t, err.Error(), path)
}
