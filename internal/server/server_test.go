package server_test

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
	"testing"

	"vidforge/internal/blobstore"
	"vidforge/internal/catalog"
	"vidforge/internal/library"
	"vidforge/internal/logging"
	"vidforge/internal/pipeline"
	"vidforge/internal/probe"
	"vidforge/internal/server"
	"vidforge/internal/testsupport"
)

// fakeRunner commits a full artifact set for every staged input.
type fakeRunner struct {
	blobs blobstore.Store
	err   error
}

func (f *fakeRunner) Run(ctx context.Context, inputKey string) (*pipeline.Result, error) {
	if f.err != nil {
		_ = f.blobs.Delete(ctx, inputKey)
		return nil, f.err
	}
	artifacts := make(map[pipeline.Kind]string)
	for _, kind := range pipeline.AllKinds() {
		key := blobstore.DerivedKey("job-http", kind.ArtifactName())
		if err := f.blobs.Put(ctx, key, strings.NewReader(string(kind))); err != nil {
			return nil, err
		}
		artifacts[kind] = key
	}
	return &pipeline.Result{JobID: "job-http", State: pipeline.StateCommitted, Artifacts: artifacts}, nil
}

type httpFixture struct {
	handler http.Handler
	runner  *fakeRunner
	store   *catalog.Store
	pool    *pipeline.Pool
}

func newHandler(t *testing.T, opts ...testsupport.ConfigOption) *httpFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	blobs, err := blobstore.NewFS(cfg.Paths.BlobDir)
	if err != nil {
		t.Fatalf("NewFS failed: %v", err)
	}
	runner := &fakeRunner{blobs: blobs}
	pool := pipeline.NewPool(cfg.Pipeline.MaxConcurrent)
	manager := library.NewManager(cfg, store, blobs, runner, pool, logging.NewNop())

	srv := server.New(cfg, manager, logging.NewNop())
	if srv == nil {
		t.Fatal("server.New returned nil")
	}
	return &httpFixture{handler: srv.Handler(), runner: runner, store: store, pool: pool}
}

func multipartUpload(t *testing.T, title string, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("title", title); err != nil {
		t.Fatalf("write title field: %v", err)
	}
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func postUpload(t *testing.T, fx *httpFixture, title, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t, title, filename, payload)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadEndpointCreatesRecord(t *testing.T) {
	fx := newHandler(t)

	rec := postUpload(t, fx, "HTTP Clip", "clip.mp4", testsupport.MP4Bytes(4096))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp server.VideoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == 0 || resp.Title != "HTTP Clip" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.CanonicalKey == "" || resp.ThumbnailKey == "" || resp.ResizedKey == "" {
		t.Fatalf("missing artifact keys: %+v", resp)
	}
}

func TestUploadEndpointStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		title    string
		payload  []byte
		runErr   error
		saturate bool
		want     int
	}{
		{name: "empty title", title: "  ", payload: testsupport.MP4Bytes(512), want: http.StatusBadRequest},
		{name: "bad container", title: "txt", payload: []byte("not a video at all, just prose"), want: http.StatusUnsupportedMediaType},
		{name: "probe failure", title: "bad", payload: testsupport.MP4Bytes(512), runErr: probe.ErrProbeFailed, want: http.StatusUnprocessableEntity},
		{name: "saturated", title: "busy", payload: testsupport.MP4Bytes(512), saturate: true, want: http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newHandler(t)
			fx.runner.err = tc.runErr
			if tc.saturate {
				for fx.pool.TryAcquire() {
				}
			}
			rec := postUpload(t, fx, tc.title, "u.mp4", tc.payload)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUploadEndpointTooLarge(t *testing.T) {
	fx := newHandler(t, testsupport.WithMaxUploadBytes(1024))

	rec := postUpload(t, fx, "big", "big.mp4", testsupport.MP4Bytes(64*1024))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUploadEndpointMissingFile(t *testing.T) {
	fx := newHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	_ = writer.WriteField("title", "no file")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/videos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListGetDeleteFlow(t *testing.T) {
	fx := newHandler(t)

	created := postUpload(t, fx, "flow", "f.mp4", testsupport.MP4Bytes(2048))
	if created.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d %s", created.Code, created.Body.String())
	}
	var uploaded server.VideoResponse
	if err := json.Unmarshal(created.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d", rec.Code)
	}
	var list server.VideoListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Videos) != 1 || list.Videos[0].ID != uploaded.ID {
		t.Fatalf("unexpected list payload: %+v", list)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/videos/%d", uploaded.ID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/videos/%d", uploaded.ID), nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/videos/%d", uploaded.ID), nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestVideoEndpointBadIDs(t *testing.T) {
	fx := newHandler(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/123", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	fx := newHandler(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status failed: %d", rec.Code)
	}
	var status library.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.PipelineSlots < 1 {
		t.Fatalf("unexpected slot count: %+v", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	fx := newHandler(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics failed: %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !bytes.Contains(body, []byte("vidforge")) {
		t.Fatal("expected vidforge metrics in exposition")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	fx := newHandler(t)

	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/videos", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
