package hub

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/dataset-service/internal/datasetutils"
	"github.com/book-expert/logger"
)

// Uploader pushes trained checkpoint files into the hub's checkpoint bucket.
type Uploader struct {
	store core.ObjectStore
	log   *logger.Logger
}

// NewUploader creates an Uploader over the checkpoint bucket.
func NewUploader(store core.ObjectStore, log *logger.Logger) (*Uploader, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	if log == nil {
		return nil, ErrNilLogger
	}

	return &Uploader{
		store: store,
		log:   log,
	}, nil
}

// UploadCheckpoint stores the file at path under key and returns the key it
// was stored under. An empty key defaults to the file's base name.
func (u *Uploader) UploadCheckpoint(
	ctx context.Context,
	path, key string,
) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read checkpoint '%s': %w", path, err)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		key = filepath.Base(path)
	}

	err = u.store.Upload(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("upload checkpoint '%s': %w", key, err)
	}

	u.log.Info(
		"Uploaded checkpoint '%s' (%s)",
		key, datasetutils.FormatFileSize(int64(len(data))),
	)

	return key, nil
}
