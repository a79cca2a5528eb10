// Command hub-client materializes hub datasets into local training trees and
// uploads training checkpoints through the shared object store buckets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/book-expert/dataset-service/internal/config"
	"github.com/book-expert/dataset-service/internal/hub"
	"github.com/book-expert/dataset-service/internal/objectstore"
	"github.com/book-expert/logger"
)

// Flag names.
const (
	flagFetch   = "fetch"
	flagUpload  = "upload"
	flagOut     = "out"
	flagKey     = "key"
	flagWorkers = "workers"
	flagLogDir  = "log-dir"
	flagVerbose = "verbose"
)

// Flag descriptions.
const (
	flagFetchDesc   = "Manifest object key of the dataset to materialize"
	flagUploadDesc  = "Path of a checkpoint file to upload"
	flagOutDesc     = "Output directory for the materialized dataset"
	flagKeyDesc     = "Object key for the uploaded checkpoint (defaults to the file name)"
	flagWorkersDesc = "Number of parallel sample downloads (0 uses the configured value)"
	flagLogDirDesc  = "Directory for log files (defaults to the configured logs dir)"
	flagVerboseDesc = "Enable verbose logging"
)

// Error messages.
const (
	errFailedToLoadConfig   = "Failed to load configuration: %v"
	errFailedToInitLogger   = "Failed to initialize logger: %v"
	errEitherFetchOrUpload  = "Either -fetch or -upload must be provided"
	errCannotFetchAndUpload = "Cannot specify both -fetch and -upload"
	errFetchFailed          = "Failed to materialize dataset: %v"
	errUploadFailed         = "Failed to upload checkpoint: %v"
	errConnectFailed        = "Failed to connect to NATS: %v"
)

// Printed messages.
const (
	logMaterialized = "Materialized dataset '%s': %d samples in %s\n"
	logUploaded     = "Uploaded checkpoint as: %s\n"
)

// Defaults and file names.
const (
	defaultOutputDir     = "dataset"
	logFileNameBootstrap = "hub-client-bootstrap.log"
	logFileNameDefault   = "hub-client.log"
	logFileNameVerbose   = "hub-client-verbose.log"
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	fetch   string
	upload  string
	out     string
	key     string
	workers int
	logDir  string
	verbose bool
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

	bootstrapLog, err := logger.New(os.TempDir(), logFileNameBootstrap)
	if err != nil {
		return fmt.Errorf(errFailedToInitLogger, err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error(errFailedToLoadConfig, err)

		return fmt.Errorf(errFailedToLoadConfig, err)
	}

	log, err := setupLogger(cfg, flags)
	if err != nil {
		return fmt.Errorf(errFailedToInitLogger, err)
	}

	defer func() {
		closeErr := log.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	return handleExecution(cfg, log, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.fetch, flagFetch, "", flagFetchDesc)
	flag.StringVar(&flags.upload, flagUpload, "", flagUploadDesc)
	flag.StringVar(&flags.out, flagOut, defaultOutputDir, flagOutDesc)
	flag.StringVar(&flags.key, flagKey, "", flagKeyDesc)
	flag.IntVar(&flags.workers, flagWorkers, 0, flagWorkersDesc)
	flag.StringVar(&flags.logDir, flagLogDir, "", flagLogDirDesc)
	flag.BoolVar(&flags.verbose, flagVerbose, false, flagVerboseDesc)
	flag.Parse()

	return flags
}

// validateArguments enforces the either-or contract between the fetch and
// upload modes.
func validateArguments(flags appFlags) error {
	fetch := strings.TrimSpace(flags.fetch)
	upload := strings.TrimSpace(flags.upload)

	if fetch == "" && upload == "" {
		return errors.New(errEitherFetchOrUpload)
	}

	if fetch != "" && upload != "" {
		return errors.New(errCannotFetchAndUpload)
	}

	return nil
}

// setupLogger initializes the file logger, preferring the flag directory over
// the configured one.
func setupLogger(cfg *config.Config, flags appFlags) (*logger.Logger, error) {
	logDir := flags.logDir
	if logDir == "" {
		logDir = cfg.Paths.BaseLogsDir
	}

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

// handleExecution connects to NATS and dispatches to the requested mode.
func handleExecution(cfg *config.Config, log *logger.Logger, flags appFlags) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		log.Error(errConnectFailed, err)

		return fmt.Errorf(errConnectFailed, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf(errConnectFailed, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(flags.fetch) != "" {
		return runFetch(ctx, jetstreamContext, cfg, log, flags)
	}

	return runUpload(ctx, jetstreamContext, cfg, log, flags)
}

// runFetch materializes a hub dataset into the output directory.
func runFetch(
	ctx context.Context,
	jetstreamContext nats.JetStreamContext,
	cfg *config.Config,
	log *logger.Logger,
	flags appFlags,
) error {
	store, err := objectstore.New(jetstreamContext, cfg.NATS.DatasetObjectStoreBucket)
	if err != nil {
		return fmt.Errorf(errFetchFailed, err)
	}

	workers := flags.workers
	if workers <= 0 {
		workers = cfg.Ingest.Workers
	}

	fetcher, err := hub.NewFetcher(store, workers, log)
	if err != nil {
		return fmt.Errorf(errFetchFailed, err)
	}

	manifest, err := fetcher.Materialize(ctx, flags.fetch, flags.out)
	if err != nil {
		log.Error(errFetchFailed, err)

		return fmt.Errorf(errFetchFailed, err)
	}

	fmt.Printf(logMaterialized, manifest.Name, len(manifest.Samples), flags.out)

	return nil
}

// runUpload pushes a checkpoint file into the checkpoint bucket.
func runUpload(
	ctx context.Context,
	jetstreamContext nats.JetStreamContext,
	cfg *config.Config,
	log *logger.Logger,
	flags appFlags,
) error {
	store, err := objectstore.New(jetstreamContext, cfg.NATS.CheckpointObjectStoreBucket)
	if err != nil {
		return fmt.Errorf(errUploadFailed, err)
	}

	uploader, err := hub.NewUploader(store, log)
	if err != nil {
		return fmt.Errorf(errUploadFailed, err)
	}

	key, err := uploader.UploadCheckpoint(ctx, flags.upload, flags.key)
	if err != nil {
		log.Error(errUploadFailed, err)

		return fmt.Errorf(errUploadFailed, err)
	}

	fmt.Printf(logUploaded, key)

	return nil
}
