package storage

import (
	"context"
	"mime/multipart"
)

// BlobStore abstracts where uploaded photos live. Implementations return a URL
// that is stored on the owning record; everything else about the blob is opaque.
type BlobStore interface {
	// Save persists an uploaded file and returns its public URL.
	Save(ctx context.Context, file *multipart.FileHeader) (string, error)

	// Remove deletes the blob behind a previously returned URL. Best-effort:
	// callers must not fail a request because eviction failed.
	Remove(ctx context.Context, url string) error
}
