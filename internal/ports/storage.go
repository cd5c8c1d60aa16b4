package ports

import (
	"context"
	"io"
)

type PutObjectInput struct {
	ObjectKey   string
	ContentType string
	Reader      io.Reader
	Size        int64
}

type PutObjectOutput struct {
	ObjectKey string
	Size      int64
}

// ObjectStore is the persistence contract for rendered page images.
// Implementations (s3, localfs, gdrive) must be safe for concurrent use:
// the upload fan-out issues one PutObject per image from separate
// goroutines against a single shared handle.
type ObjectStore interface {
	Provider() string

	// PutObject writes an object under ObjectKey, overwriting any
	// existing object with the same key.
	PutObject(ctx context.Context, in PutObjectInput) (PutObjectOutput, error)

	// RemoveObject deletes a previously written object. Used by the
	// cleanup-on-failure policy; removing a missing object is not an error.
	RemoveObject(ctx context.Context, objectKey string) error
}
