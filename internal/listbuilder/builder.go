// Package listbuilder assembles train and validation list files from a
// metadata table.
//
// The builder partitions table rows by split label, applies the optional
// per-category duration budget to the training rows, and renders both lists.
// The validation list is never budget-filtered. Every configuration and data
// problem is detected before any output file is touched, and failures are
// classified under ErrConfiguration, ErrData, or ErrIO.
package listbuilder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/dataset-service/internal/datasetutils"
	"github.com/book-expert/dataset-service/internal/listfile"
	"github.com/book-expert/dataset-service/internal/metadata"
	"github.com/book-expert/dataset-service/internal/selection"
	"github.com/book-expert/dataset-service/internal/transcript"
	"github.com/book-expert/logger"
)

// Failure kinds. Every error returned by the builder wraps exactly one of
// these, so callers can classify with errors.Is.
var (
	// ErrConfiguration marks invalid option or job configuration values.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrData marks a metadata table that is absent, unreadable, or invalid.
	ErrData = errors.New("invalid metadata")
	// ErrIO marks file system failures while writing the output lists.
	ErrIO = errors.New("file system error")
)

var (
	ErrNilLogger          = errors.New("logger is required")
	ErrNoMetadataPath     = errors.New("metadata file path is required")
	ErrNoTrainSplit       = errors.New("training split label is required")
	ErrNoValidationSplit  = errors.New("validation split label is required")
	ErrSameSplits         = errors.New("train and validation split labels are equal")
	ErrNoTrainOutput      = errors.New("training list output path is required")
	ErrNoValidationOutput = errors.New("validation list output path is required")
	ErrSameOutputs        = errors.New("train and validation output paths are equal")
	ErrNegativeTarget     = errors.New("target seconds cannot be negative")
)

// Options is the full invocation surface for a file-based build.
type Options struct {
	MetadataPath     string
	TrainSplit       string
	ValidationSplit  string
	TrainOutput      string
	ValidationOutput string
	FileColumn       string
	SplitColumn      string
	CategoryColumn   string
	DurationColumn   string
	TextColumn       string
	AudioDir         string
	TargetSeconds    float64
	Order            string
	Seed             int64
}

// Validate checks every option that must be correct before any work starts.
func (o Options) Validate() error {
	if strings.TrimSpace(o.MetadataPath) == "" {
		return ErrNoMetadataPath
	}

	err := validateSplits(o.TrainSplit, o.ValidationSplit)
	if err != nil {
		return err
	}

	if strings.TrimSpace(o.TextColumn) == "" {
		return metadata.ErrNoTextColumn
	}

	err = validateOutputs(o.TrainOutput, o.ValidationOutput)
	if err != nil {
		return err
	}

	if o.TargetSeconds < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeTarget, o.TargetSeconds)
	}

	_, err = selection.ParsePolicy(o.Order)
	if err != nil {
		return err
	}

	return nil
}

// jobConfig maps the options onto the shared job configuration.
func (o Options) jobConfig() core.ListJobConfig {
	return core.ListJobConfig{
		TrainSplit:      o.TrainSplit,
		ValidationSplit: o.ValidationSplit,
		FileColumn:      o.FileColumn,
		SplitColumn:     o.SplitColumn,
		CategoryColumn:  o.CategoryColumn,
		DurationColumn:  o.DurationColumn,
		TextColumn:      o.TextColumn,
		AudioDir:        o.AudioDir,
		TargetSeconds:   o.TargetSeconds,
		Order:           o.Order,
		Seed:            o.Seed,
	}
}

// Builder implements core.ListBuilder over the metadata, selection, and
// listfile packages.
type Builder struct {
	defaults   core.ListJobConfig
	normalizer *transcript.Normalizer
	log        *logger.Logger
}

// New creates a Builder. The defaults are handed out through GetConfig so
// job sources can fill unset fields.
func New(defaults core.ListJobConfig, log *logger.Logger) (*Builder, error) {
	if log == nil {
		return nil, ErrNilLogger
	}

	return &Builder{
		defaults:   defaults,
		normalizer: transcript.NewNormalizer(),
		log:        log,
	}, nil
}

// GetConfig returns the builder's default job configuration.
func (b *Builder) GetConfig() core.ListJobConfig {
	return b.defaults
}

// Build turns a raw metadata table into rendered train and validation lists.
func (b *Builder) Build(
	ctx context.Context,
	table []byte,
	cfg core.ListJobConfig,
) (*core.BuildResult, error) {
	err := ctx.Err()
	if err != nil {
		return nil, fmt.Errorf("build cancelled: %w", err)
	}

	err = validateJobConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	parsed, err := metadata.Read(bytes.NewReader(table), columnsOf(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrData, err)
	}

	return b.buildFromTable(parsed, cfg)
}

// BuildFiles runs a complete file-based build: load the table, build both
// lists, then write them atomically. Nothing is written unless the whole
// build succeeded.
func (b *Builder) BuildFiles(opts Options) (*core.Report, error) {
	err := opts.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	cfg := opts.jobConfig()

	parsed, err := metadata.Load(opts.MetadataPath, columnsOf(cfg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrData, err)
	}

	result, err := b.buildFromTable(parsed, cfg)
	if err != nil {
		return nil, err
	}

	err = b.writeList(opts.TrainOutput, result.TrainList)
	if err != nil {
		return nil, err
	}

	err = b.writeList(opts.ValidationOutput, result.ValidationList)
	if err != nil {
		return nil, err
	}

	return &result.Report, nil
}

// buildFromTable partitions, selects, and renders. Shared by Build and
// BuildFiles so both surfaces agree on semantics.
func (b *Builder) buildFromTable(
	parsed *metadata.Table,
	cfg core.ListJobConfig,
) (*core.BuildResult, error) {
	trainRows, validationRows := partition(parsed.Samples, cfg)

	if cfg.TargetSeconds > 0 && !parsed.HasCategory {
		return nil, fmt.Errorf(
			"%w: %w: '%s'", ErrData, metadata.ErrMissingColumn, effectiveCategoryColumn(cfg),
		)
	}

	policy, err := selection.ParsePolicy(cfg.Order)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	selected, categories, err := selection.Select(trainRows, selection.Options{
		TargetSeconds: cfg.TargetSeconds,
		Policy:        policy,
		Seed:          cfg.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	trainData, err := listfile.Render(b.entries(selected, cfg.AudioDir))
	if err != nil {
		return nil, fmt.Errorf("%w: training list: %w", ErrData, err)
	}

	validationData, err := listfile.Render(b.entries(validationRows, cfg.AudioDir))
	if err != nil {
		return nil, fmt.Errorf("%w: validation list: %w", ErrData, err)
	}

	result := &core.BuildResult{
		TrainList:      trainData,
		ValidationList: validationData,
		Report: core.Report{
			Train: core.SplitReport{
				Rows:    len(selected),
				Seconds: sumSeconds(selected),
			},
			Validation: core.SplitReport{
				Rows:    len(validationRows),
				Seconds: sumSeconds(validationRows),
			},
			Skipped:    parsed.Skipped,
			Categories: categories,
		},
	}

	b.logReport(&result.Report)

	return result, nil
}

// entries converts samples to list entries, joining the audio dir prefix and
// flattening transcripts onto one line.
func (b *Builder) entries(samples []core.Sample, audioDir string) []listfile.Entry {
	entries := make([]listfile.Entry, 0, len(samples))
	for _, sample := range samples {
		entries = append(entries, listfile.Entry{
			Path: joinAudioPath(audioDir, sample.File),
			Text: b.normalizer.Normalize(sample.Text),
			Row:  sample.Row,
		})
	}

	return entries
}

// writeList creates the parent directory if needed and writes atomically.
func (b *Builder) writeList(path string, data []byte) error {
	err := datasetutils.EnsureDir(filepath.Dir(path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	err = listfile.Write(path, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

// logReport records the outcome in human-readable form.
func (b *Builder) logReport(report *core.Report) {
	b.log.Info(
		"Training list: %d rows, %s",
		report.Train.Rows, datasetutils.FormatDuration(report.Train.Seconds),
	)
	b.log.Info(
		"Validation list: %d rows, %s",
		report.Validation.Rows, datasetutils.FormatDuration(report.Validation.Seconds),
	)

	if report.Skipped > 0 {
		b.log.Warn("Skipped %d rows without a file name", report.Skipped)
	}

	for _, category := range report.Categories {
		b.log.Info(
			"Category '%s': selected %d of %d rows, %s",
			category.Label, category.Selected, category.Candidates,
			datasetutils.FormatDuration(category.Seconds),
		)
	}
}

// partition splits samples into train and validation rows by exact label
// match on trimmed values. Rows matching neither label are excluded.
func partition(
	samples []core.Sample,
	cfg core.ListJobConfig,
) ([]core.Sample, []core.Sample) {
	trainSplit := strings.TrimSpace(cfg.TrainSplit)
	validationSplit := strings.TrimSpace(cfg.ValidationSplit)

	var trainRows, validationRows []core.Sample

	for _, sample := range samples {
		switch sample.Split {
		case trainSplit:
			trainRows = append(trainRows, sample)
		case validationSplit:
			validationRows = append(validationRows, sample)
		}
	}

	return trainRows, validationRows
}

// validateJobConfig checks the fields Build depends on. Path handling is the
// caller's concern.
func validateJobConfig(cfg core.ListJobConfig) error {
	err := validateSplits(cfg.TrainSplit, cfg.ValidationSplit)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cfg.TextColumn) == "" {
		return metadata.ErrNoTextColumn
	}

	if cfg.TargetSeconds < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeTarget, cfg.TargetSeconds)
	}

	_, err = selection.ParsePolicy(cfg.Order)
	if err != nil {
		return err
	}

	return nil
}

func validateSplits(trainSplit, validationSplit string) error {
	trainSplit = strings.TrimSpace(trainSplit)
	validationSplit = strings.TrimSpace(validationSplit)

	if trainSplit == "" {
		return ErrNoTrainSplit
	}

	if validationSplit == "" {
		return ErrNoValidationSplit
	}

	if trainSplit == validationSplit {
		return fmt.Errorf("%w: '%s'", ErrSameSplits, trainSplit)
	}

	return nil
}

func validateOutputs(trainOutput, validationOutput string) error {
	trainOutput = strings.TrimSpace(trainOutput)
	validationOutput = strings.TrimSpace(validationOutput)

	if trainOutput == "" {
		return ErrNoTrainOutput
	}

	if validationOutput == "" {
		return ErrNoValidationOutput
	}

	if filepath.Clean(trainOutput) == filepath.Clean(validationOutput) {
		return fmt.Errorf("%w: '%s'", ErrSameOutputs, trainOutput)
	}

	return nil
}

// columnsOf maps the job configuration onto metadata column names.
func columnsOf(cfg core.ListJobConfig) metadata.Columns {
	return metadata.Columns{
		File:     cfg.FileColumn,
		Split:    cfg.SplitColumn,
		Category: cfg.CategoryColumn,
		Duration: cfg.DurationColumn,
		Text:     cfg.TextColumn,
	}
}

// effectiveCategoryColumn resolves the configured category column name for
// error messages.
func effectiveCategoryColumn(cfg core.ListJobConfig) string {
	name := strings.TrimSpace(cfg.CategoryColumn)
	if name == "" {
		return metadata.DefaultCategoryColumn
	}

	return name
}

func joinAudioPath(audioDir, file string) string {
	if audioDir == "" {
		return file
	}

	return filepath.Join(audioDir, file)
}

func sumSeconds(samples []core.Sample) float64 {
	total := 0.0
	for _, sample := range samples {
		total += sample.Seconds
	}

	return total
}
