package gcpapi

import (
	"context"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/simple-dev-tools/gfluent/gftypes"
)

// StorageClient wraps *storage.Client as an object storage executor.
type StorageClient struct {
	client *storage.Client
	logger *slog.Logger
}

// NewStorageClient creates a Cloud Storage executor.
func NewStorageClient(ctx context.Context, cfg *gftypes.ClientConfig) (*StorageClient, error) {
	client, err := storage.NewClient(ctx, cfg.GoogleOptions()...)
	if err != nil {
		return nil, err
	}
	return &StorageClient{
		client: client,
		logger: cfg.Logger,
	}, nil
}

// Upload writes the contents of r to bucket/key with the given content type.
func (s *StorageClient) Upload(ctx context.Context, bucket, key, contentType string, r io.Reader) error {
	w := s.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	s.logger.Info("uploaded object", "bucket", bucket, "key", key)
	return nil
}

// List returns the object names under prefix.
func (s *StorageClient) List(ctx context.Context, bucket, prefix, delimiter string) ([]string, error) {
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: delimiter,
	})
	return collectObjectNames(it)
}

// objectIterator is satisfied by *storage.ObjectIterator.
type objectIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

// collectObjectNames drains the iterator, dropping synthetic prefix entries,
// which carry no object name.
func collectObjectNames(it objectIterator) ([]string, error) {
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Name != "" {
			names = append(names, attrs.Name)
		}
	}
	return names, nil
}

// NewReader opens the object for reading. The caller closes it.
func (s *StorageClient) NewReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a single object.
func (s *StorageClient) Delete(ctx context.Context, bucket, key string) error {
	s.logger.Warn("deleting object", "bucket", bucket, "key", key)
	return s.client.Bucket(bucket).Object(key).Delete(ctx)
}

// Close releases the underlying client.
func (s *StorageClient) Close() error {
	return s.client.Close()
}
