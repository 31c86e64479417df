package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scrapbird/hview/internal/apperrors"
	"github.com/scrapbird/hview/internal/cache"
	"github.com/scrapbird/hview/internal/objectstore"
)

// fakeStore implements objectstore.Store with no real network calls, for
// exercising the routing and validation layer in isolation.
type fakeStore struct {
	listResult objectstore.ListResult
	listErr    error
}

func (f *fakeStore) List(ctx context.Context, prefix string, includeFolders bool, maxItems int) (objectstore.ListResult, error) {
	return f.listResult, f.listErr
}

func (f *fakeStore) Head(ctx context.Context, key string) (objectstore.HeadResult, error) {
	return objectstore.HeadResult{}, apperrors.NotFound("key %q not found", key)
}

func (f *fakeStore) ReadRange(ctx context.Context, key string, start, endInclusive int64) ([]byte, error) {
	return nil, apperrors.NotFound("key %q not found", key)
}

func newTestServer() *Server {
	return &Server{
		Store:   &fakeStore{},
		Backend: nil,
		Cache:   cache.NewRegistry(),
		Logger:  slog.Default(),
	}
}

func TestHandleListFiles_MaxItemsOutOfRange(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/?max_items=0", nil)
	w := httptest.NewRecorder()

	s.handleListFiles(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["success"] != false {
		t.Fatalf("expected success:false, got %#v", body)
	}
}

func TestHandleMeta_MissingPath(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/example.h5/meta", nil)
	w := httptest.NewRecorder()

	s.handleMeta(w, req, "example.h5")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestHandlePreview_MissingPath(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/example.h5/preview", nil)
	w := httptest.NewRecorder()

	s.handlePreview(w, req, "example.h5")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestHandleData_MissingPath(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/example.h5/data?mode=matrix", nil)
	w := httptest.NewRecorder()

	s.handleData(w, req, "example.h5")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestHandleData_InvalidMode(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/example.h5/data?path=/ds&mode=pie", nil)
	w := httptest.NewRecorder()

	s.handleData(w, req, "example.h5")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", w.Code)
	}
}

func TestHandleFileSubroute_UnknownSuffix(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/files/example.h5/nonsense", nil)
	req.SetPathValue("rest", "example.h5/nonsense")
	w := httptest.NewRecorder()

	s.handleFileSubroute(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404", w.Code)
	}
}

func TestHasSuffixSegmentAndTrim(t *testing.T) {
	if !hasSuffixSegment("a/b/children", "children") {
		t.Fatalf("expected suffix match")
	}
	if hasSuffixSegment("childrenish", "children") {
		t.Fatalf("did not expect suffix match without separator")
	}
	if got := trimSuffixSegment("a/b/children", "children"); got != "a/b" {
		t.Fatalf("got %q, want a/b", got)
	}
}
