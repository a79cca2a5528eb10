// main package for the dataset-service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/book-expert/dataset-service/internal/config"
	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/dataset-service/internal/listbuilder"
	"github.com/book-expert/dataset-service/internal/objectstore"
	"github.com/book-expert/dataset-service/internal/worker"
	"github.com/book-expert/logger"
)

const (
	bootstrapLogFileName = "dataset-service-bootstrap.log"
	serviceLogFileName   = "dataset-service.log"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// 1. Create a temporary logger for the bootstrap process.
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFileName)
	if err != nil {
		// If the bootstrap logger fails, we can only print to stderr.
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	// 2. Load configuration using the central configurator.
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("load configuration: %w", err)
	}

	// 3. Initialize the final logger based on the loaded configuration.
	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, serviceLogFileName)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return runWorker(cfg, finalLog)
}

func runWorker(cfg *config.Config, log *logger.Logger) error {
	// 4. Connect to NATS and bind the object store buckets.
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect to NATS at '%s': %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	datasetStore, err := objectstore.New(jetstreamContext, cfg.NATS.DatasetObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("bind dataset bucket: %w", err)
	}

	listStore, err := objectstore.New(jetstreamContext, cfg.NATS.ListObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("bind list bucket: %w", err)
	}

	// 5. Assemble the list builder and the worker.
	builder, err := listbuilder.New(listDefaults(cfg), log)
	if err != nil {
		return fmt.Errorf("create list builder: %w", err)
	}

	natsWorker, err := worker.NewNatsWorker(
		natsConnection,
		cfg.NATS.MetadataReadySubject,
		cfg.NATS.ListsCreatedSubject,
		datasetStore,
		listStore,
		builder,
		log,
	)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	// 6. Run until interrupted.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System(
		"Dataset service initialized. Listening for jobs on subject: %s",
		cfg.NATS.MetadataReadySubject,
	)

	err = natsWorker.Run(ctx)
	if err != nil {
		return fmt.Errorf("run worker: %w", err)
	}

	return nil
}

// listDefaults maps the configured list job defaults onto the shared job
// configuration.
func listDefaults(cfg *config.Config) core.ListJobConfig {
	return core.ListJobConfig{
		TrainSplit:      cfg.Lists.TrainSplit,
		ValidationSplit: cfg.Lists.ValidationSplit,
		FileColumn:      cfg.Lists.FileColumn,
		SplitColumn:     cfg.Lists.SplitColumn,
		CategoryColumn:  cfg.Lists.CategoryColumn,
		DurationColumn:  cfg.Lists.DurationColumn,
		TextColumn:      cfg.Lists.TextColumn,
		AudioDir:        cfg.Lists.AudioDir,
		TargetSeconds:   cfg.Lists.TargetSeconds,
		Order:           cfg.Lists.Order,
		Seed:            cfg.Lists.Seed,
	}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
