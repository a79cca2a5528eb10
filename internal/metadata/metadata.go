// Package metadata loads audio sample tables from metadata CSV files.
//
// A metadata table carries one row per audio sample. Column names are
// configurable; matching against the header is case-insensitive on trimmed
// names. Rows with an empty file field carry no usable sample and are
// skipped, every other malformed row is an error.
package metadata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/book-expert/dataset-service/internal/core"
)

// Default column names, used when the caller leaves a Columns field empty.
// The transcript text column has no default and must always be configured.
const (
	DefaultFileColumn     = "file_name"
	DefaultSplitColumn    = "split"
	DefaultCategoryColumn = "gender"
	DefaultDurationColumn = "duration"
)

var (
	// ErrMissingHeader indicates the table has no header row at all.
	ErrMissingHeader = errors.New("metadata table has no header row")
	// ErrMissingColumn indicates a required column is absent from the header.
	ErrMissingColumn = errors.New("metadata table is missing required column")
	// ErrNoTextColumn indicates no transcript text column name was configured.
	ErrNoTextColumn = errors.New("transcript text column name is required")
	// ErrBadDuration indicates a duration field that does not parse to a
	// finite number.
	ErrBadDuration = errors.New("invalid duration value")
	// ErrNegativeDuration indicates a duration field below zero.
	ErrNegativeDuration = errors.New("negative duration value")
)

// Columns names the table columns to read.
type Columns struct {
	File     string
	Split    string
	Category string
	Duration string
	Text     string
}

// withDefaults trims every configured name and fills empty fields with the
// package defaults. Text is only trimmed; it stays empty when unset.
func (c Columns) withDefaults() Columns {
	normalized := Columns{
		File:     strings.TrimSpace(c.File),
		Split:    strings.TrimSpace(c.Split),
		Category: strings.TrimSpace(c.Category),
		Duration: strings.TrimSpace(c.Duration),
		Text:     strings.TrimSpace(c.Text),
	}

	if normalized.File == "" {
		normalized.File = DefaultFileColumn
	}

	if normalized.Split == "" {
		normalized.Split = DefaultSplitColumn
	}

	if normalized.Category == "" {
		normalized.Category = DefaultCategoryColumn
	}

	if normalized.Duration == "" {
		normalized.Duration = DefaultDurationColumn
	}

	return normalized
}

// Table is the parsed form of a metadata CSV.
type Table struct {
	// Samples holds one entry per usable row, in file order.
	Samples []core.Sample
	// Skipped counts rows dropped for having an empty file field.
	Skipped int
	// HasCategory records whether the category column was present in the
	// header. Loading succeeds without it; budgeted selection requires it.
	HasCategory bool
}

// Load reads and parses the metadata file at path.
func Load(path string, cols Columns) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata file '%s': %w", path, err)
	}

	table, err := Read(bytes.NewReader(data), cols)
	if err != nil {
		return nil, fmt.Errorf("metadata file '%s': %w", path, err)
	}

	return table, nil
}

// Read parses a metadata CSV stream into a Table.
func Read(reader io.Reader, cols Columns) (*Table, error) {
	cols = cols.withDefaults()
	if cols.Text == "" {
		return nil, ErrNoTextColumn
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}

	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	index := headerIndex(header)

	for _, name := range []string{cols.File, cols.Split, cols.Duration, cols.Text} {
		if _, ok := index[columnKey(name)]; !ok {
			return nil, fmt.Errorf("%w: '%s'", ErrMissingColumn, name)
		}
	}

	_, hasCategory := index[columnKey(cols.Category)]

	table := &Table{
		Samples:     nil,
		Skipped:     0,
		HasCategory: hasCategory,
	}

	err = readRows(csvReader, index, cols, table)
	if err != nil {
		return nil, err
	}

	return table, nil
}

// readRows consumes every record after the header and fills the table.
func readRows(
	csvReader *csv.Reader,
	index map[string]int,
	cols Columns,
	table *Table,
) error {
	// The header is row 1; sample rows are numbered from 2.
	row := 1

	for {
		row++

		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return fmt.Errorf("read row %d: %w", row, err)
		}

		fileName := strings.TrimSpace(safeField(record, index, columnKey(cols.File)))
		if fileName == "" {
			table.Skipped++

			continue
		}

		seconds, err := parseDuration(
			safeField(record, index, columnKey(cols.Duration)), row,
		)
		if err != nil {
			return err
		}

		sample := core.Sample{
			File:     fileName,
			Split:    strings.TrimSpace(safeField(record, index, columnKey(cols.Split))),
			Category: strings.TrimSpace(safeField(record, index, columnKey(cols.Category))),
			Seconds:  seconds,
			Text:     strings.TrimSpace(safeField(record, index, columnKey(cols.Text))),
			Row:      row,
		}

		table.Samples = append(table.Samples, sample)
	}
}

// parseDuration converts a duration field to seconds. Values must be finite
// and non-negative.
func parseDuration(raw string, row int) (float64, error) {
	value := strings.TrimSpace(raw)

	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: row %d value '%s'", ErrBadDuration, row, value)
	}

	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: row %d value '%s'", ErrBadDuration, row, value)
	}

	if seconds < 0 {
		return 0, fmt.Errorf("%w: row %d value '%s'", ErrNegativeDuration, row, value)
	}

	return seconds, nil
}

// headerIndex maps normalized header names to their field positions.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for position, field := range header {
		index[columnKey(field)] = position
	}

	return index
}

// columnKey normalizes a column name for header matching.
func columnKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// safeField returns the record field for key, or "" when the record is short
// or the column is absent.
func safeField(record []string, index map[string]int, key string) string {
	if position, ok := index[key]; ok && position < len(record) {
		return record[position]
	}

	return ""
}
