// Package upload persists rendered page images to the object store with
// a concurrent fan-out.
package upload

import (
	"bytes"
	"context"

	"docraster/internal/pkg/errors"
	"docraster/internal/pkg/logger"
	"docraster/internal/ports"
	"docraster/internal/render"
)

// Config tunes the coordinator.
type Config struct {
	// CleanupOnFailure deletes the objects that did persist when any
	// sibling upload in the same request fails. Off by default; the
	// historical behavior leaves partial results in place under their
	// deterministic keys.
	CleanupOnFailure bool
	Log              *logger.Logger
}

// Coordinator fans uploads out, one goroutine per image, and always
// waits for every attempt to finish before reporting. It never cancels
// in-flight siblings when one fails.
type Coordinator struct {
	store            ports.ObjectStore
	cleanupOnFailure bool
	log              *logger.Logger
}

func NewCoordinator(store ports.ObjectStore, cfg Config) *Coordinator {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Coordinator{
		store:            store,
		cleanupOnFailure: cfg.CleanupOnFailure,
		log:              log.WithComponent("upload"),
	}
}

// PutAll persists every image under its key, overwriting existing
// objects. On success it returns the keys in input order. On any
// failure it returns one representative storage error after all
// attempts have completed; objects that did persist stay persisted
// unless cleanup-on-failure is enabled.
func (c *Coordinator) PutAll(ctx context.Context, images []render.PageImage) ([]string, error) {
	if len(images) == 0 {
		return []string{}, nil
	}

	// One result slot per task; no shared mutation, aggregation happens
	// only after the join barrier.
	results := make([]error, len(images))
	done := make(chan int, len(images))

	for i := range images {
		go func(i int) {
			img := images[i]
			_, err := c.store.PutObject(ctx, ports.PutObjectInput{
				ObjectKey:   img.Key,
				ContentType: img.ContentType,
				Reader:      bytes.NewReader(img.Data),
				Size:        int64(len(img.Data)),
			})
			results[i] = err
			done <- i
		}(i)
	}

	// Join barrier: wait for every upload, success or not.
	for range images {
		<-done
	}

	var firstErr error
	failed := 0
	for i, err := range results {
		if err == nil {
			continue
		}
		failed++
		if firstErr == nil {
			firstErr = err
		}
		c.log.FromContext(ctx).Warn("upload failed", "key", images[i].Key, "error", err.Error())
	}

	if firstErr != nil {
		if c.cleanupOnFailure {
			c.removeUploaded(ctx, images, results)
		}
		return nil, errors.Storage(firstErr).WithField("failed", failed).WithField("total", len(images))
	}

	keys := make([]string, len(images))
	for i, img := range images {
		keys[i] = img.Key
	}
	return keys, nil
}

// removeUploaded best-effort deletes the siblings that made it to the
// store before the request failed.
func (c *Coordinator) removeUploaded(ctx context.Context, images []render.PageImage, results []error) {
	log := c.log.FromContext(ctx)
	for i, err := range results {
		if err != nil {
			continue
		}
		if rmErr := c.store.RemoveObject(ctx, images[i].Key); rmErr != nil {
			log.Warn("cleanup failed, object left in store", "key", images[i].Key, "error", rmErr.Error())
		} else {
			log.Debug("cleaned up partial upload", "key", images[i].Key)
		}
	}
}
