package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"docraster/internal/auth"
	"docraster/internal/pkg/logger"
	"docraster/internal/pkg/middleware"
	"docraster/internal/ports"
	"docraster/internal/render"
	"docraster/internal/upload"
)

// fakeRenderer returns canned images and records the parameters it was
// called with.
type fakeRenderer struct {
	images []render.PageImage
	err    error

	gotData   []byte
	gotParams render.Params
	calls     int
}

func (f *fakeRenderer) Render(ctx context.Context, data []byte, p render.Params) ([]render.PageImage, error) {
	f.calls++
	f.gotData = data
	f.gotParams = p
	if f.err != nil {
		return nil, f.err
	}
	return f.images, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte), fail: make(map[string]error)}
}

func (s *fakeStore) Provider() string { return "fake" }

func (s *fakeStore) PutObject(ctx context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[in.ObjectKey]; err != nil {
		return ports.PutObjectOutput{}, err
	}
	data, _ := io.ReadAll(in.Reader)
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

func testLogger() *logger.Logger {
	var buf bytes.Buffer
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
}

func newTestHandler(t *testing.T, secret string, r render.Renderer, store *fakeStore) http.Handler {
	t.Helper()
	log := testLogger()
	h := New(Deps{
		Gate:     auth.NewGate(secret),
		Renderer: r,
		Uploader: upload.NewCoordinator(store, upload.Config{Log: log}),
		Store:    store,
		Log:      log,
	})
	return middleware.WrapHandler(log, h.Convert)
}

// multipartBody builds a single-field multipart body.
func multipartBody(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "document.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func doConvert(t *testing.T, h http.Handler, target string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, content)
	req := httptest.NewRequest("POST", target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body["message"]
}

func TestConvertSuccess(t *testing.T) {
	renderer := &fakeRenderer{
		images: []render.PageImage{
			{Key: "fp-0.jpg", Data: []byte{1}, ContentType: "image/jpeg"},
			{Key: "fp-2.jpg", Data: []byte{2}, ContentType: "image/jpeg"},
		},
	}
	store := newFakeStore()
	h := newTestHandler(t, "", renderer, store)

	doc := []byte("%PDF-1.4 fake")
	rec := doConvert(t, h, "/?format=jpeg&pages=1,3&scale=2.0", doc)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ConvertResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	want := []string{"fp-0.jpg", "fp-2.jpg"}
	if len(resp.Images) != 2 || resp.Images[0] != want[0] || resp.Images[1] != want[1] {
		t.Errorf("expected images %v, got %v", want, resp.Images)
	}

	// Renderer saw the uploaded bytes and the resolved parameters.
	if !bytes.Equal(renderer.gotData, doc) {
		t.Error("renderer did not receive uploaded bytes")
	}
	if renderer.gotParams.Format != render.FormatJPEG {
		t.Errorf("expected jpeg, got %s", renderer.gotParams.Format)
	}
	if renderer.gotParams.Scale != 2.0 {
		t.Errorf("expected scale 2.0, got %v", renderer.gotParams.Scale)
	}
	pages := renderer.gotParams.Pages.Indexes()
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 2 {
		t.Errorf("expected pages [0 2], got %v", pages)
	}

	// Both images persisted.
	for _, key := range want {
		if !store.has(key) {
			t.Errorf("object %q not persisted", key)
		}
	}
}

func TestConvertEmptyRenderResult(t *testing.T) {
	h := newTestHandler(t, "", &fakeRenderer{images: nil}, newFakeStore())

	rec := doConvert(t, h, "/", []byte("doc"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"images":[]`) {
		t.Errorf("expected empty images array, got %s", rec.Body.String())
	}
}

func TestConvertNoField(t *testing.T) {
	h := newTestHandler(t, "", &fakeRenderer{}, newFakeStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close() // no fields at all

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); !strings.Contains(msg, "form does not contain any fields") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestConvertNotMultipart(t *testing.T) {
	h := newTestHandler(t, "", &fakeRenderer{}, newFakeStore())

	req := httptest.NewRequest("POST", "/", strings.NewReader("raw body"))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestConvertAccessGate(t *testing.T) {
	renderer := &fakeRenderer{}

	t.Run("missing token", func(t *testing.T) {
		h := newTestHandler(t, "s3cret", renderer, newFakeStore())
		rec := doConvert(t, h, "/", []byte("doc"))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if renderer.calls != 0 {
			t.Error("expected no rendering for unauthorized request")
		}
	})

	t.Run("wrong token", func(t *testing.T) {
		h := newTestHandler(t, "s3cret", renderer, newFakeStore())
		rec := doConvert(t, h, "/?token=nope", []byte("doc"))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("matching token", func(t *testing.T) {
		h := newTestHandler(t, "s3cret", &fakeRenderer{}, newFakeStore())
		rec := doConvert(t, h, "/?token=s3cret", []byte("doc"))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestConvertParameterErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"scale too small", "/?scale=0.05"},
		{"scale too large", "/?scale=15"},
		{"zero page", "/?pages=0"},
		{"zero range", "/?pages=0-2"},
		{"inverted range", "/?pages=5-3"},
		{"unknown format", "/?format=svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &fakeRenderer{}
			h := newTestHandler(t, "", renderer, newFakeStore())

			rec := doConvert(t, h, tt.target, []byte("doc"))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if renderer.calls != 0 {
				t.Error("expected no rendering after parameter failure")
			}
		})
	}
}

func TestConvertBoundaryScales(t *testing.T) {
	for _, scale := range []string{"0.1", "10.0"} {
		t.Run(scale, func(t *testing.T) {
			h := newTestHandler(t, "", &fakeRenderer{}, newFakeStore())
			rec := doConvert(t, h, "/?scale="+scale, []byte("doc"))
			if rec.Code != http.StatusOK {
				t.Errorf("expected boundary scale %s accepted, got %d", scale, rec.Code)
			}
		})
	}
}

func TestConvertRenderFailure(t *testing.T) {
	h := newTestHandler(t, "", &fakeRenderer{err: fmt.Errorf("mupdf: cannot parse")}, newFakeStore())

	rec := doConvert(t, h, "/", []byte("not a pdf"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestConvertStorageFailure(t *testing.T) {
	renderer := &fakeRenderer{
		images: []render.PageImage{
			{Key: "fp-0.png", Data: []byte{1}, ContentType: "image/png"},
			{Key: "fp-1.png", Data: []byte{2}, ContentType: "image/png"},
		},
	}
	store := newFakeStore()
	store.fail["fp-1.png"] = fmt.Errorf("bucket unavailable")

	h := newTestHandler(t, "", renderer, store)
	rec := doConvert(t, h, "/", []byte("doc"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg == "" {
		t.Error("expected error message in body")
	}

	// The upload that succeeded stays retrievable.
	if !store.has("fp-0.png") {
		t.Error("expected successful sibling upload to remain persisted")
	}
}
