// Package config_test tests the configuration loading for the dataset-service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/dataset-service/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
metadata_ready_subject = "dataset.metadata.ready"
lists_created_subject = "dataset.lists.created"
dataset_object_store_bucket = "DATASETS"
list_object_store_bucket = "LISTS"
checkpoint_object_store_bucket = "CHECKPOINTS"

[lists]
train_split = "train"
validation_split = "test"
file_column = "file_name"
split_column = "split"
category_column = "gender"
duration_column = "duration"
text_column = "text"
audio_dir = "/data/wav"
target_seconds = 5400.0
order = "random"
seed = 42

[ingest]
workers = 8

[paths]
base_logs_dir = "/var/log/dataset-service"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "dataset.metadata.ready", cfg.NATS.MetadataReadySubject)
	assert.Equal(t, "dataset.lists.created", cfg.NATS.ListsCreatedSubject)
	assert.Equal(t, "DATASETS", cfg.NATS.DatasetObjectStoreBucket)
	assert.Equal(t, "LISTS", cfg.NATS.ListObjectStoreBucket)
	assert.Equal(t, "CHECKPOINTS", cfg.NATS.CheckpointObjectStoreBucket)
	assert.Equal(t, "train", cfg.Lists.TrainSplit)
	assert.Equal(t, "test", cfg.Lists.ValidationSplit)
	assert.Equal(t, "file_name", cfg.Lists.FileColumn)
	assert.Equal(t, "split", cfg.Lists.SplitColumn)
	assert.Equal(t, "gender", cfg.Lists.CategoryColumn)
	assert.Equal(t, "duration", cfg.Lists.DurationColumn)
	assert.Equal(t, "text", cfg.Lists.TextColumn)
	assert.Equal(t, "/data/wav", cfg.Lists.AudioDir)
	assert.InEpsilon(t, 5400.0, cfg.Lists.TargetSeconds, 0.001)
	assert.Equal(t, "random", cfg.Lists.Order)
	assert.Equal(t, int64(42), cfg.Lists.Seed)
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, "/var/log/dataset-service", cfg.Paths.BaseLogsDir)
}

func TestLoadConfig_PartialDocument(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Empty(t, cfg.Lists.TrainSplit, "missing sections should stay at zero values")
	assert.Zero(t, cfg.Lists.TargetSeconds)
	assert.Zero(t, cfg.Ingest.Workers)
}
