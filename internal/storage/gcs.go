package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStore keeps blobs in a Google Cloud Storage bucket. Handles are
// object names within that bucket.
type GCSStore struct {
	bucket *gcs.BucketHandle
}

func NewGCSStore(ctx context.Context, bucketName string) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name must be provided for the gcs storage driver")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{bucket: client.Bucket(bucketName)}, nil
}

func (s *GCSStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	writer := s.bucket.Object(name).NewWriter(ctx)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", name, err)
	}
	return name, nil
}

func (s *GCSStore) Read(ctx context.Context, handle string) ([]byte, error) {
	reader, err := s.bucket.Object(handle).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", handle, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", handle, err)
	}
	return data, nil
}
