package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	uploadstore "github.com/dalemusser/meethub/internal/app/system/uploads"
	"github.com/dalemusser/meethub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := uploadstore.New(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("uploadstore.New failed: %v", err)
	}
	return NewHandler(store, zap.NewNop())
}

func multipartBody(t *testing.T, fieldFirst bool, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if fieldFirst {
		if err := w.WriteField("caption", "my photo"); err != nil {
			t.Fatalf("WriteField failed: %v", err)
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing file part failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestIngest_StoresFile(t *testing.T) {
	h := newTestHandler(t)
	content := []byte("image bytes")

	body, contentType := multipartBody(t, true, "photo.png", content)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !strings.HasSuffix(resp.Filename, "_photo.png") {
		t.Errorf("stored name %q does not end in _photo.png", resp.Filename)
	}

	got, err := os.ReadFile(filepath.Join(h.Store.Dir(), resp.Filename))
	if err != nil {
		t.Fatalf("reading stored file failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("stored bytes differ from uploaded bytes")
	}
}

func TestIngest_NotMultipart(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader("raw body"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d, want 422", rec.Code)
	}
}

func TestIngest_NoFilePart(t *testing.T) {
	h := newTestHandler(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("caption", "text only"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d, want 422", rec.Code)
	}
}

func TestServeFile(t *testing.T) {
	h := newTestHandler(t)
	content := []byte("served bytes")

	body, contentType := multipartBody(t, false, "photo.png", content)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.Ingest(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload failed: %d", rec.Code)
	}
	var resp struct {
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	get := testutil.NewRequest(http.MethodGet, "/files/"+resp.Filename)
	rec = httptest.NewRecorder()
	h.ServeFile(rec, get, resp.Filename)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), content) {
		t.Error("served bytes differ from stored bytes")
	}

	// Escaping names and absent files are both not-found.
	rec = httptest.NewRecorder()
	h.ServeFile(rec, testutil.NewRequest(http.MethodGet, "/files/x"), "../secrets.txt")
	if rec.Code != http.StatusNotFound {
		t.Errorf("escaping name: got %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeFile(rec, testutil.NewRequest(http.MethodGet, "/files/x"), "123_missing.png")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file: got %d, want 404", rec.Code)
	}
}
