package hub

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/dataset-service/internal/datasetutils"
	"github.com/book-expert/logger"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/natefinch/atomic"
)

// Names of the artifacts Materialize leaves under the output directory.
const (
	WavDirName       = "wav"
	MetadataFileName = "metadata.csv"
)

const (
	defaultWorkers = 4
	pcmBitDepth    = 16
	monoChannels   = 1
	wavAudioFormat = 1
	bytesPerSample = 2
)

var (
	// ErrNilStore indicates a fetcher built without an object store.
	ErrNilStore = errors.New("object store is required")
	// ErrNilLogger indicates a fetcher built without a logger.
	ErrNilLogger = errors.New("logger is required")
	// ErrOddPCMLength indicates PCM data that cannot be 16-bit samples.
	ErrOddPCMLength = errors.New("raw PCM data has an odd byte length")
)

// Fetcher downloads datasets from the hub and materializes them on disk.
type Fetcher struct {
	store   core.ObjectStore
	log     *logger.Logger
	workers int
}

// NewFetcher creates a Fetcher downloading at most workers samples at a
// time. A non-positive worker count falls back to the default.
func NewFetcher(store core.ObjectStore, workers int, log *logger.Logger) (*Fetcher, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if log == nil {
		return nil, ErrNilLogger
	}

	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Fetcher{
		store:   store,
		log:     log,
		workers: workers,
	}, nil
}

// Materialize downloads the manifest under manifestKey and turns the dataset
// into WAV files under <outputDir>/wav plus a metadata CSV at
// <outputDir>/metadata.csv. The CSV is only written after every sample
// materialized, so a partial fetch never looks like a complete dataset.
func (f *Fetcher) Materialize(
	ctx context.Context,
	manifestKey, outputDir string,
) (*Manifest, error) {
	manifestData, err := f.store.Download(ctx, manifestKey)
	if err != nil {
		return nil, fmt.Errorf("download manifest '%s': %w", manifestKey, err)
	}

	manifest, err := ParseManifest(manifestData)
	if err != nil {
		return nil, err
	}

	f.log.Info(
		"Materializing dataset '%s': %d samples at %d Hz",
		manifest.Name, len(manifest.Samples), manifest.SampleRate,
	)

	wavDir := filepath.Join(outputDir, WavDirName)

	err = datasetutils.EnsureDir(wavDir)
	if err != nil {
		return nil, err
	}

	fileNames, err := f.materializeSamples(ctx, manifest, wavDir)
	if err != nil {
		return nil, err
	}

	metadataPath := filepath.Join(outputDir, MetadataFileName)

	err = writeMetadataCSV(metadataPath, manifest, fileNames)
	if err != nil {
		return nil, err
	}

	f.log.Info("Wrote metadata table: %s", metadataPath)

	return manifest, nil
}

// materializeSamples downloads and encodes every sample with a bounded
// worker pool. Failures are collected per sample so the rest keep going;
// the first failure in manifest order is returned. The returned file names
// keep manifest order.
func (f *Fetcher) materializeSamples(
	ctx context.Context,
	manifest *Manifest,
	wavDir string,
) ([]string, error) {
	var waitGroup sync.WaitGroup

	workerPool := make(chan struct{}, f.workers)
	fileNames := make([]string, len(manifest.Samples))
	failures := make([]error, len(manifest.Samples))

	for sampleIndex, manifestSample := range manifest.Samples {
		waitGroup.Add(1)

		go func(index int, sample ManifestSample) {
			defer waitGroup.Done()

			workerPool <- struct{}{}

			defer func() { <-workerPool }()

			fileName, err := f.materializeSample(ctx, sample, manifest.SampleRate, wavDir)
			if err != nil {
				failures[index] = fmt.Errorf(
					"sample %d ('%s'): %w", index+1, sample.Object, err,
				)
				f.log.Error(
					"Failed to materialize sample %d ('%s'): %v",
					index+1, sample.Object, err,
				)

				return
			}

			fileNames[index] = fileName
			f.log.Info("Materialized sample %d/%d", index+1, len(manifest.Samples))
		}(sampleIndex, manifestSample)
	}

	waitGroup.Wait()
	close(workerPool)

	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}

	return fileNames, nil
}

// materializeSample turns one PCM object into a WAV file and returns the
// file name it was written under.
func (f *Fetcher) materializeSample(
	ctx context.Context,
	sample ManifestSample,
	sampleRate int,
	wavDir string,
) (string, error) {
	pcmData, err := f.store.Download(ctx, sample.Object)
	if err != nil {
		return "", fmt.Errorf("download object: %w", err)
	}

	samples, err := decodePCM16(pcmData)
	if err != nil {
		return "", err
	}

	fileName := wavFileName(sample.FileName)

	err = writeWav(filepath.Join(wavDir, fileName), samples, sampleRate)
	if err != nil {
		return "", err
	}

	return fileName, nil
}

// wavFileName sanitizes the manifest file name and appends a .wav extension
// when the name does not already carry an audio extension.
func wavFileName(name string) string {
	fileName := datasetutils.SanitizeFilename(name)
	if !datasetutils.IsValidAudioFile(fileName) {
		fileName += ".wav"
	}

	return fileName
}

// decodePCM16 converts raw 16-bit little-endian mono PCM bytes to samples.
func decodePCM16(data []byte) ([]int, error) {
	if len(data)%bytesPerSample != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddPCMLength, len(data))
	}

	samples := make([]int, len(data)/bytesPerSample)
	for index := range samples {
		samples[index] = int(int16(binary.LittleEndian.Uint16(data[index*bytesPerSample:])))
	}

	return samples, nil
}

// writeWav encodes samples as a 16-bit mono WAV file at path.
func writeWav(path string, samples []int, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav file '%s': %w", path, err)
	}

	defer func() { _ = file.Close() }()

	encoder := wav.NewEncoder(file, sampleRate, pcmBitDepth, monoChannels, wavAudioFormat)

	buffer := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: monoChannels,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: pcmBitDepth,
	}

	err = encoder.Write(buffer)
	if err != nil {
		return fmt.Errorf("encode wav file '%s': %w", path, err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("finalize wav file '%s': %w", path, err)
	}

	return nil
}

// writeMetadataCSV renders the metadata table for the materialized samples
// and writes it atomically. Row order follows the manifest.
func writeMetadataCSV(path string, manifest *Manifest, fileNames []string) error {
	var buffer bytes.Buffer

	writer := csv.NewWriter(&buffer)

	err := writer.Write([]string{"file_name", "split", "gender", "duration", "text"})
	if err != nil {
		return fmt.Errorf("encode metadata header: %w", err)
	}

	for index, sample := range manifest.Samples {
		record := []string{
			fileNames[index],
			sample.Split,
			sample.Gender,
			strconv.FormatFloat(sample.DurationSeconds, 'f', -1, 64),
			sample.Text,
		}

		err = writer.Write(record)
		if err != nil {
			return fmt.Errorf("encode metadata row %d: %w", index+2, err)
		}
	}

	writer.Flush()

	err = writer.Error()
	if err != nil {
		return fmt.Errorf("encode metadata table: %w", err)
	}

	err = atomic.WriteFile(path, bytes.NewReader(buffer.Bytes()))
	if err != nil {
		return fmt.Errorf("write metadata table '%s': %w", path, err)
	}

	return nil
}
