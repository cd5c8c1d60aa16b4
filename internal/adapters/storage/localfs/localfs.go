// Package localfs implements ports.ObjectStore on the local filesystem,
// mainly for development and tests.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"docraster/internal/ports"
)

type LocalFS struct {
	root string
}

func New(root string) *LocalFS {
	return &LocalFS{root: root}
}

func (l *LocalFS) Provider() string { return "localfs" }

func (l *LocalFS) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	dst := filepath.Join(l.root, filepath.FromSlash(in.ObjectKey))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ports.PutObjectOutput{}, err
	}

	// os.Create truncates, giving the same overwrite-on-resubmit
	// semantics as a bucket put.
	f, err := os.Create(dst)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	defer f.Close()

	n, err := io.Copy(f, in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: n}, nil
}

func (l *LocalFS) RemoveObject(ctx context.Context, objectKey string) error {
	err := os.Remove(filepath.Join(l.root, filepath.FromSlash(objectKey)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
