// Package gdrive implements ports.ObjectStore backed by Google Drive.
// Kept as an alternate backend for deployments without an S3 endpoint.
package gdrive

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"docraster/internal/ports"
)

// Client stores page images as Drive files named by object key inside
// an optional folder. Deterministic keys are preserved by replacing any
// existing file with the same name, matching bucket put semantics.
type Client struct {
	srv      *drive.Service
	folderID string
}

func NewClient(srv *drive.Service, folderID string) *Client {
	return &Client{srv: srv, folderID: folderID}
}

func (c *Client) Provider() string { return "gdrive" }

func (c *Client) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	if in.ObjectKey == "" {
		return ports.PutObjectOutput{}, fmt.Errorf("object_key is required")
	}

	// Overwrite-on-resubmit: drop any previous file under this key
	// before creating the new one.
	if existing, err := c.findByKey(ctx, in.ObjectKey); err == nil && existing != "" {
		_ = c.srv.Files.Delete(existing).SupportsAllDrives(true).Context(ctx).Do()
	}

	file := &drive.File{Name: in.ObjectKey}
	if c.folderID != "" {
		file.Parents = []string{c.folderID}
	}

	call := c.srv.Files.Create(file)
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	if _, err := call.Context(ctx).Do(); err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("gdrive upload failed: %w", err)
	}

	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: in.Size}, nil
}

func (c *Client) RemoveObject(ctx context.Context, objectKey string) error {
	id, err := c.findByKey(ctx, objectKey)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}
	return c.srv.Files.Delete(id).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// findByKey resolves an object key to a Drive file ID, empty when the
// key does not exist.
func (c *Client) findByKey(ctx context.Context, objectKey string) (string, error) {
	q := fmt.Sprintf("name = '%s' and trashed = false", objectKey)
	if c.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", c.folderID)
	}

	list, err := c.srv.Files.List().
		Q(q).
		Fields("files(id)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}
