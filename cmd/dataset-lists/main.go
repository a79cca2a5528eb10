// Command dataset-lists builds train and validation list files from a
// metadata table on disk.
package main

import (
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"strings"

	"github.com/book-expert/logger"

	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/dataset-service/internal/datasetutils"
	"github.com/book-expert/dataset-service/internal/listbuilder"
	"github.com/book-expert/dataset-service/internal/metadata"
)

// Flag names.
const (
	flagMetadata         = "metadata"
	flagTrainSplit       = "train-split"
	flagValidationSplit  = "val-split"
	flagTrainOutput      = "train-output"
	flagValidationOutput = "val-output"
	flagFileColumn       = "file-column"
	flagSplitColumn      = "split-column"
	flagCategoryColumn   = "category-column"
	flagDurationColumn   = "duration-column"
	flagTextColumn       = "text-column"
	flagAudioDir         = "audio-dir"
	flagTargetSeconds    = "target-seconds"
	flagOrder            = "order"
	flagSeed             = "seed"
	flagLogDir           = "log-dir"
	flagVerbose          = "verbose"
)

// Flag descriptions.
const (
	flagMetadataDesc         = "Path to the metadata CSV file"
	flagTrainSplitDesc       = "Split label selecting training rows"
	flagValidationSplitDesc  = "Split label selecting validation rows"
	flagTrainOutputDesc      = "Output path for the training list"
	flagValidationOutputDesc = "Output path for the validation list"
	flagFileColumnDesc       = "Metadata column holding the audio file name"
	flagSplitColumnDesc      = "Metadata column holding the split label"
	flagCategoryColumnDesc   = "Metadata column holding the category label"
	flagDurationColumnDesc   = "Metadata column holding the duration in seconds"
	flagTextColumnDesc       = "Metadata column holding the transcript"
	flagAudioDirDesc         = "Directory prefix joined onto audio file names"
	flagTargetSecondsDesc    = "Per-category training duration budget in seconds (0 disables)"
	flagOrderDesc            = "Selection order under a budget: random, min, or max"
	flagSeedDesc             = "Seed for random selection (negative for time-based)"
	flagLogDirDesc           = "Directory for log files (defaults to the system temp dir)"
	flagVerboseDesc          = "Enable verbose logging"
)

// Error messages.
const (
	errFailedToInitLogger       = "Failed to initialize logger: %v"
	errBuildFailed              = "Failed to build list files: %v"
	errMetadataRequired         = "The -metadata flag is required"
	errTrainSplitRequired       = "The -train-split flag cannot be empty"
	errValidationSplitRequired  = "The -val-split flag cannot be empty"
	errTrainOutputRequired      = "The -train-output flag is required"
	errValidationOutputRequired = "The -val-output flag is required"
	errTextColumnRequired       = "The -text-column flag is required"
)

// Printed messages.
const (
	logTrainList      = "Train list: %d rows (%s) -> %s\n"
	logValidationList = "Validation list: %d rows (%s) -> %s\n"
	logSkippedRows    = "Skipped %d rows without a file name\n"
	logCategory       = "Category '%s': selected %d of %d rows (%s)\n"
)

// Defaults and file names.
const (
	defaultTrainSplit      = "train"
	defaultValidationSplit = "test"
	defaultOrder           = "random"
	defaultSeed            = int64(-1)
	logFileNameDefault     = "dataset-lists.log"
	logFileNameVerbose     = "dataset-lists-verbose.log"
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	metadata         string
	trainSplit       string
	validationSplit  string
	trainOutput      string
	validationOutput string
	fileColumn       string
	splitColumn      string
	categoryColumn   string
	durationColumn   string
	textColumn       string
	audioDir         string
	targetSeconds    float64
	order            string
	seed             int64
	logDir           string
	verbose          bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		stdlog.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	err := validateArguments(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	log, err := setupLogger(flags)
	if err != nil {
		return fmt.Errorf(errFailedToInitLogger, err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	builder, err := listbuilder.New(jobDefaults(flags), log)
	if err != nil {
		return fmt.Errorf(errBuildFailed, err)
	}

	report, err := builder.BuildFiles(buildOptions(flags))
	if err != nil {
		log.Error(errBuildFailed, err)

		return fmt.Errorf(errBuildFailed, err)
	}

	printReport(report, flags)

	return nil
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.metadata, flagMetadata, "", flagMetadataDesc)
	flag.StringVar(&flags.trainSplit, flagTrainSplit, defaultTrainSplit, flagTrainSplitDesc)
	flag.StringVar(
		&flags.validationSplit, flagValidationSplit, defaultValidationSplit, flagValidationSplitDesc,
	)
	flag.StringVar(&flags.trainOutput, flagTrainOutput, "", flagTrainOutputDesc)
	flag.StringVar(&flags.validationOutput, flagValidationOutput, "", flagValidationOutputDesc)
	flag.StringVar(&flags.fileColumn, flagFileColumn, metadata.DefaultFileColumn, flagFileColumnDesc)
	flag.StringVar(&flags.splitColumn, flagSplitColumn, metadata.DefaultSplitColumn, flagSplitColumnDesc)
	flag.StringVar(
		&flags.categoryColumn, flagCategoryColumn, metadata.DefaultCategoryColumn, flagCategoryColumnDesc,
	)
	flag.StringVar(
		&flags.durationColumn, flagDurationColumn, metadata.DefaultDurationColumn, flagDurationColumnDesc,
	)
	flag.StringVar(&flags.textColumn, flagTextColumn, "", flagTextColumnDesc)
	flag.StringVar(&flags.audioDir, flagAudioDir, "", flagAudioDirDesc)
	flag.Float64Var(&flags.targetSeconds, flagTargetSeconds, 0, flagTargetSecondsDesc)
	flag.StringVar(&flags.order, flagOrder, defaultOrder, flagOrderDesc)
	flag.Int64Var(&flags.seed, flagSeed, defaultSeed, flagSeedDesc)
	flag.StringVar(&flags.logDir, flagLogDir, "", flagLogDirDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.Parse()

	return flags
}

// validateArguments checks the flags that must be present before any work
// starts. Value-level problems are reported by the builder.
func validateArguments(flags appFlags) error {
	if strings.TrimSpace(flags.metadata) == "" {
		return errors.New(errMetadataRequired)
	}

	if strings.TrimSpace(flags.trainSplit) == "" {
		return errors.New(errTrainSplitRequired)
	}

	if strings.TrimSpace(flags.validationSplit) == "" {
		return errors.New(errValidationSplitRequired)
	}

	if strings.TrimSpace(flags.trainOutput) == "" {
		return errors.New(errTrainOutputRequired)
	}

	if strings.TrimSpace(flags.validationOutput) == "" {
		return errors.New(errValidationOutputRequired)
	}

	if strings.TrimSpace(flags.textColumn) == "" {
		return errors.New(errTextColumnRequired)
	}

	return nil
}

// setupLogger initializes the file logger in the requested directory.
func setupLogger(flags appFlags) (*logger.Logger, error) {
	logDir := flags.logDir
	if logDir == "" {
		logDir = os.TempDir()
	}

	logFileName := logFileNameDefault
	if flags.verbose {
		logFileName = logFileNameVerbose
	}

	log, err := logger.New(logDir, logFileName)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return log, nil
}

// jobDefaults maps the flags onto the builder's default job configuration.
func jobDefaults(flags appFlags) core.ListJobConfig {
	return core.ListJobConfig{
		TrainSplit:      flags.trainSplit,
		ValidationSplit: flags.validationSplit,
		FileColumn:      flags.fileColumn,
		SplitColumn:     flags.splitColumn,
		CategoryColumn:  flags.categoryColumn,
		DurationColumn:  flags.durationColumn,
		TextColumn:      flags.textColumn,
		AudioDir:        flags.audioDir,
		TargetSeconds:   flags.targetSeconds,
		Order:           flags.order,
		Seed:            flags.seed,
	}
}

// buildOptions maps the flags onto a file-based build invocation.
func buildOptions(flags appFlags) listbuilder.Options {
	return listbuilder.Options{
		MetadataPath:     flags.metadata,
		TrainSplit:       flags.trainSplit,
		ValidationSplit:  flags.validationSplit,
		TrainOutput:      flags.trainOutput,
		ValidationOutput: flags.validationOutput,
		FileColumn:       flags.fileColumn,
		SplitColumn:      flags.splitColumn,
		CategoryColumn:   flags.categoryColumn,
		DurationColumn:   flags.durationColumn,
		TextColumn:       flags.textColumn,
		AudioDir:         flags.audioDir,
		TargetSeconds:    flags.targetSeconds,
		Order:            flags.order,
		Seed:             flags.seed,
	}
}

// printReport writes the build counts to standard output.
func printReport(report *core.Report, flags appFlags) {
	fmt.Printf(
		logTrainList,
		report.Train.Rows,
		datasetutils.FormatDuration(report.Train.Seconds),
		flags.trainOutput,
	)
	fmt.Printf(
		logValidationList,
		report.Validation.Rows,
		datasetutils.FormatDuration(report.Validation.Seconds),
		flags.validationOutput,
	)

	if report.Skipped > 0 {
		fmt.Printf(logSkippedRows, report.Skipped)
	}

	for _, category := range report.Categories {
		fmt.Printf(
			logCategory,
			category.Label,
			category.Selected,
			category.Candidates,
			datasetutils.FormatDuration(category.Seconds),
		)
	}
}
