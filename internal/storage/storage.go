// Package storage abstracts the blob storage collaborator. Handles
// returned by Upload are opaque; the pipeline only stores and compares
// them, never parses them.
package storage

import "context"

type BlobStore interface {
	// Upload stores data under a storage-chosen location derived from
	// name and returns a stable handle for it.
	Upload(ctx context.Context, name string, data []byte) (string, error)
	// Read returns the bytes previously stored for handle.
	Read(ctx context.Context, handle string) ([]byte, error)
}
