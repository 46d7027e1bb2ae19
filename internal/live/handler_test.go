package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/counsellive/voice-backend/internal/document"
	"github.com/counsellive/voice-backend/internal/dto"
	"github.com/counsellive/voice-backend/internal/prompt"
	"github.com/labstack/echo/v4"
)

func newTestHandler(d *fakeDialer) *Handler {
	logger := discardLogger()
	client := NewClient(ClientOptions{
		Backoff: testBackoff(),
		Logger:  logger,
		Dial:    d.dial,
	})
	prompts := prompt.NewBuilder(absentDataDir, logger)
	return NewHandler(client, document.NewStore(), prompts, HandlerConfig{
		Model:    "models/test-live",
		Voice:    "Aoede",
		Language: "en-GB",
	}, logger)
}

// absentDataDir points at a directory that never exists, so the prompt
// builder contributes no reference data during handler tests.
const absentDataDir = "testdata/absent"

func doRequest(h echo.HandlerFunc, method, path string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, err
}

func TestHandlerRegisterRoutes(t *testing.T) {
	h := newTestHandler(&fakeDialer{})
	e := echo.New()
	h.RegisterRoutes(e.Group("/live"))

	want := map[string]bool{
		"/live/connect":    false,
		"/live/disconnect": false,
		"/live/status":     false,
	}
	for _, r := range e.Routes() {
		if _, ok := want[r.Path]; ok {
			want[r.Path] = true
		}
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("expected route %s to be registered", path)
		}
	}
}

func TestHandlerConnect(t *testing.T) {
	d := &fakeDialer{}
	h := newTestHandler(d)

	rec, err := doRequest(h.Connect, http.MethodPost, "/live/connect")
	if err != nil {
		t.Fatalf("connect error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ConnectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.State != "connected" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if d.attemptCount() != 1 {
		t.Errorf("expected 1 dial, got %d", d.attemptCount())
	}
}

func TestHandlerConnectConflict(t *testing.T) {
	h := newTestHandler(&fakeDialer{})

	if rec, _ := doRequest(h.Connect, http.MethodPost, "/live/connect"); rec.Code != http.StatusOK {
		t.Fatalf("first connect: expected 200, got %d", rec.Code)
	}
	rec, _ := doRequest(h.Connect, http.MethodPost, "/live/connect")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a second connect, got %d", rec.Code)
	}
}

func TestHandlerConnectPending(t *testing.T) {
	// Every dial fails, so the first attempt leaves the client retrying.
	h := newTestHandler(&fakeDialer{failures: 100})

	rec, err := doRequest(h.Connect, http.MethodPost, "/live/connect")
	if err != nil {
		t.Fatalf("connect error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 while retrying, got %d", rec.Code)
	}

	var resp dto.ConnectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Success || resp.State != "reconnecting" {
		t.Errorf("unexpected response: %+v", resp)
	}
	h.client.Disconnect()
}

func TestHandlerDisconnect(t *testing.T) {
	h := newTestHandler(&fakeDialer{})

	rec, _ := doRequest(h.Disconnect, http.MethodPost, "/live/disconnect")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.DisconnectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Message != "no active session" {
		t.Errorf("unexpected message for idle disconnect: %q", resp.Message)
	}

	doRequest(h.Connect, http.MethodPost, "/live/connect")
	rec, _ = doRequest(h.Disconnect, http.MethodPost, "/live/disconnect")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Message != "disconnected from live endpoint" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestHandlerStatus(t *testing.T) {
	h := newTestHandler(&fakeDialer{})

	rec, _ := doRequest(h.Status, http.MethodGet, "/live/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp dto.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.State != "disconnected" || resp.RetryCount != 0 {
		t.Errorf("unexpected status: %+v", resp)
	}

	doRequest(h.Connect, http.MethodPost, "/live/connect")
	rec, _ = doRequest(h.Status, http.MethodGet, "/live/status")
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.State != "connected" {
		t.Errorf("expected connected status, got %+v", resp)
	}
}

func TestHandlerSessionConfig(t *testing.T) {
	h := newTestHandler(&fakeDialer{})
	h.docs.Set("report body")

	cfg := h.sessionConfig()
	if len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
		t.Errorf("unexpected modalities: %v", cfg.ResponseModalities)
	}
	if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Aoede" {
		t.Errorf("unexpected voice: %+v", cfg.SpeechConfig)
	}
	if cfg.SpeechConfig.LanguageCode != "en-GB" {
		t.Errorf("unexpected language: %q", cfg.SpeechConfig.LanguageCode)
	}
	if cfg.InputAudioTranscription == nil || cfg.OutputAudioTranscription == nil {
		t.Error("transcription must be enabled on both sides")
	}
	if cfg.SystemInstruction == "" {
		t.Error("system instruction must not be empty")
	}
}
