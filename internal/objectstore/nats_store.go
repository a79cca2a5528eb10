// Package objectstore binds hub buckets backed by NATS JetStream.
//
// The hub keeps datasets, rendered lists, and trained checkpoints in
// separate buckets. A bucket is created on first use; when it already
// exists the store binds to it unchanged.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Store is a single hub bucket. It implements core.ObjectStore.
type Store struct {
	name   string
	bucket nats.ObjectStore
}

// New creates the named bucket, or binds to it when it already exists.
func New(jetstreamContext nats.JetStreamContext, name string) (*Store, error) {
	bucket, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Hub storage for the '%s' bucket.", name),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("create bucket '%s': %w", name, err)
		}

		bucket, err = jetstreamContext.ObjectStore(name)
		if err != nil {
			return nil, fmt.Errorf("bind to existing bucket '%s': %w", name, err)
		}
	}

	return &Store{
		name:   name,
		bucket: bucket,
	}, nil
}

// Download retrieves the object stored under key.
func (s *Store) Download(_ context.Context, key string) ([]byte, error) {
	object, err := s.bucket.Get(key)
	if err != nil {
		return nil, fmt.Errorf("get object '%s' from bucket '%s': %w", key, s.name, err)
	}

	data, readErr := io.ReadAll(object)
	closeErr := object.Close()

	if readErr != nil {
		return nil, fmt.Errorf("read object '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return nil, fmt.Errorf("close object '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload stores data under key, replacing any previous object.
func (s *Store) Upload(_ context.Context, key string, data []byte) error {
	_, err := s.bucket.Put(&nats.ObjectMeta{
		Name:        key,
		Description: "",
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("put object '%s' to bucket '%s': %w", key, s.name, err)
	}

	return nil
}
