package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"docraster/internal/pkg/errors"
	"docraster/internal/pkg/logger"
	"docraster/internal/ports"
	"docraster/internal/render"
)

// fakeStore is an in-memory ObjectStore with injectable failures and
// per-key put delays.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    map[string]error
	delay   map[string]time.Duration
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		fail:    make(map[string]error),
		delay:   make(map[string]time.Duration),
	}
}

func (s *fakeStore) Provider() string { return "fake" }

func (s *fakeStore) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	s.mu.Lock()
	d := s.delay[in.ObjectKey]
	failErr := s.fail[in.ObjectKey]
	s.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++

	if failErr != nil {
		return ports.PutObjectOutput{}, failErr
	}

	data, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	s.objects[in.ObjectKey] = data
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, Size: int64(len(data))}, nil
}

func (s *fakeStore) RemoveObject(ctx context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	return nil
}

func (s *fakeStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok
}

func (s *fakeStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func testLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
}

func testImages(n int) []render.PageImage {
	images := make([]render.PageImage, n)
	for i := range images {
		images[i] = render.PageImage{
			Key:         fmt.Sprintf("abc123-%d.png", i),
			Data:        []byte{byte(i), 1, 2, 3},
			ContentType: "image/png",
		}
	}
	return images
}

func TestPutAllSuccess(t *testing.T) {
	store := newFakeStore()
	c := NewCoordinator(store, Config{Log: testLogger()})

	images := testImages(3)
	keys, err := c.PutAll(context.Background(), images)
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	for i, key := range keys {
		if key != images[i].Key {
			t.Errorf("key %d = %q, want %q (input order)", i, key, images[i].Key)
		}
		if !store.has(key) {
			t.Errorf("object %q not in store", key)
		}
	}
}

func TestPutAllEmpty(t *testing.T) {
	c := NewCoordinator(newFakeStore(), Config{Log: testLogger()})

	keys, err := c.PutAll(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("expected empty key list, got %v", keys)
	}
}

func TestPutAllPartialFailure(t *testing.T) {
	store := newFakeStore()
	images := testImages(2)
	store.fail[images[1].Key] = fmt.Errorf("bucket unavailable")

	c := NewCoordinator(store, Config{Log: testLogger()})

	_, err := c.PutAll(context.Background(), images)
	if !errors.IsCode(err, errors.CodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if errors.GetHTTPStatus(err) != 500 {
		t.Errorf("expected 500 status, got %d", errors.GetHTTPStatus(err))
	}

	// The successful sibling stays persisted (no compensating deletion).
	if !store.has(images[0].Key) {
		t.Error("expected successfully uploaded object to remain in store")
	}
}

func TestPutAllWaitsForAllAttempts(t *testing.T) {
	store := newFakeStore()
	images := testImages(3)
	// First upload fails instantly; last one is slow.
	store.fail[images[0].Key] = fmt.Errorf("boom")
	store.delay[images[2].Key] = 100 * time.Millisecond

	c := NewCoordinator(store, Config{Log: testLogger()})

	_, err := c.PutAll(context.Background(), images)
	if err == nil {
		t.Fatal("expected error")
	}

	// Fail-after-all-complete: every attempt must have run before
	// PutAll returned.
	if got := store.putCount(); got != 3 {
		t.Errorf("expected all 3 uploads attempted before return, got %d", got)
	}
	if !store.has(images[2].Key) {
		t.Error("expected slow upload to complete, not be canceled")
	}
}

func TestPutAllCleanupOnFailure(t *testing.T) {
	store := newFakeStore()
	images := testImages(2)
	store.fail[images[1].Key] = fmt.Errorf("boom")

	c := NewCoordinator(store, Config{CleanupOnFailure: true, Log: testLogger()})

	_, err := c.PutAll(context.Background(), images)
	if err == nil {
		t.Fatal("expected error")
	}

	if store.has(images[0].Key) {
		t.Error("expected cleanup to remove the successfully uploaded sibling")
	}
}
