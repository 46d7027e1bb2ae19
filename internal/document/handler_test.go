package document

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestDocHandler(t *testing.T) (*Handler, *Store) {
	t.Helper()
	store := NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(store, t.TempDir(), logger), store
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("form file error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("form write error: %v", err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func doUpload(t *testing.T, h *Handler, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/documents", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Upload(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestUploadRejectsMissingFile(t *testing.T) {
	h, _ := newTestDocHandler(t)

	body, contentType := multipartBody(t, "attachment", "report.pdf", []byte("x"))
	rec := doUpload(t, h, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing pdf field, got %d", rec.Code)
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if apiErr.Code != "missing_file" {
		t.Errorf("unexpected error code: %q", apiErr.Code)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	h, store := newTestDocHandler(t)

	body, contentType := multipartBody(t, "pdf", "report.docx", []byte("not a pdf"))
	rec := doUpload(t, h, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-pdf extension, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Error("rejected upload must not populate the store")
	}
}

func TestUploadRejectsCorruptPDF(t *testing.T) {
	h, store := newTestDocHandler(t)

	body, contentType := multipartBody(t, "pdf", "report.pdf", []byte("not actually pdf bytes"))
	rec := doUpload(t, h, body, contentType)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for corrupt pdf, got %d", rec.Code)
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if apiErr.Code != "parse_failed" {
		t.Errorf("unexpected error code: %q", apiErr.Code)
	}
	if store.Len() != 0 {
		t.Error("failed extraction must not populate the store")
	}
}

func TestClear(t *testing.T) {
	h, store := newTestDocHandler(t)
	store.Set("previous report")

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/documents", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Clear(c); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Error("store not cleared")
	}
}

func TestRegisterRoutes(t *testing.T) {
	h, _ := newTestDocHandler(t)
	e := echo.New()
	h.RegisterRoutes(e.Group("/documents"))

	methods := map[string]bool{}
	for _, r := range e.Routes() {
		if r.Path == "/documents" {
			methods[r.Method] = true
		}
	}
	if !methods[http.MethodPost] || !methods[http.MethodDelete] {
		t.Errorf("expected POST and DELETE on /documents, got %v", methods)
	}
}
