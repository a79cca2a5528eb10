// Package config provides the configuration structure for the dataset-service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                         string `toml:"url"`
	MetadataReadySubject        string `toml:"metadata_ready_subject"`
	ListsCreatedSubject         string `toml:"lists_created_subject"`
	DatasetObjectStoreBucket    string `toml:"dataset_object_store_bucket"`
	ListObjectStoreBucket       string `toml:"list_object_store_bucket"`
	CheckpointObjectStoreBucket string `toml:"checkpoint_object_store_bucket"`
}

// ListsConfig holds the default list building job parameters. Events and
// command line flags override these per job.
type ListsConfig struct {
	TrainSplit      string  `toml:"train_split"`
	ValidationSplit string  `toml:"validation_split"`
	FileColumn      string  `toml:"file_column"`
	SplitColumn     string  `toml:"split_column"`
	CategoryColumn  string  `toml:"category_column"`
	DurationColumn  string  `toml:"duration_column"`
	TextColumn      string  `toml:"text_column"`
	AudioDir        string  `toml:"audio_dir"`
	TargetSeconds   float64 `toml:"target_seconds"`
	Order           string  `toml:"order"`
	Seed            int64   `toml:"seed"`
}

// IngestConfig holds the configuration for materializing hub datasets.
type IngestConfig struct {
	Workers int `toml:"workers"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS   NATSConfig   `toml:"nats"`
	Lists  ListsConfig  `toml:"lists"`
	Ingest IngestConfig `toml:"ingest"`
	Paths  PathsConfig  `toml:"paths"`
}

// Load loads the configuration for the dataset-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	return &cfg, nil
}
