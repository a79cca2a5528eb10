// Package hub moves datasets and checkpoints between disk and the hub's
// object store buckets.
//
// A dataset lives in the dataset bucket as one JSON manifest plus one raw
// PCM object per sample. Materializing a dataset turns those objects into
// WAV files and a metadata CSV the list builder can consume. Trained
// checkpoints travel the other way, into the checkpoint bucket.
package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadSampleRate indicates a manifest without a positive sample rate.
	ErrBadSampleRate = errors.New("manifest sample rate must be positive")
	// ErrNoObjectKey indicates a manifest sample with no PCM object key.
	ErrNoObjectKey = errors.New("manifest sample has no object key")
	// ErrNoFileName indicates a manifest sample with no target file name.
	ErrNoFileName = errors.New("manifest sample has no file name")
)

// Manifest describes one dataset stored in the hub.
type Manifest struct {
	Name       string           `json:"name"`
	SampleRate int              `json:"sample_rate"`
	Samples    []ManifestSample `json:"samples"`
}

// ManifestSample ties one PCM object to its metadata row. PCM objects hold
// raw 16-bit little-endian mono audio at the manifest's sample rate.
type ManifestSample struct {
	Object          string  `json:"object"`
	FileName        string  `json:"file_name"`
	Split           string  `json:"split"`
	Gender          string  `json:"gender"`
	DurationSeconds float64 `json:"duration_seconds"`
	Text            string  `json:"text"`
}

// ParseManifest decodes and validates a manifest document. An empty sample
// list is valid and materializes to a header-only metadata CSV.
func ParseManifest(data []byte) (*Manifest, error) {
	var manifest Manifest

	err := json.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	err = manifest.validate()
	if err != nil {
		return nil, err
	}

	return &manifest, nil
}

func (m *Manifest) validate() error {
	if m.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrBadSampleRate, m.SampleRate)
	}

	for index, sample := range m.Samples {
		if strings.TrimSpace(sample.Object) == "" {
			return fmt.Errorf("%w: sample %d", ErrNoObjectKey, index+1)
		}

		if strings.TrimSpace(sample.FileName) == "" {
			return fmt.Errorf("%w: sample %d", ErrNoFileName, index+1)
		}
	}

	return nil
}
