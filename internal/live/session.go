package live

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/counsellive/voice-backend/internal/shared"
	"github.com/gorilla/websocket"
)

const (
	// DefaultEndpoint is the bidirectional streaming endpoint of the Gemini
	// Live API.
	DefaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	sessionCloseWait = 2 * time.Second
)

// Callbacks are the lifecycle hooks of one transport session. OnMessage
// receives raw inbound frames in arrival order; OnClose fires exactly once
// when the read loop ends.
type Callbacks struct {
	OnOpen    func()
	OnMessage func(data []byte)
	OnError   func(err error)
	OnClose   func(code int, reason string)
}

// Transport is the outbound surface of a live session.
type Transport interface {
	SendRealtimeInput(chunks []MediaChunk) error
	SendToolResponse(resp ToolResponse) error
	SendClientContent(turns []Content, turnComplete bool) error
	Close() error
}

// Session owns exactly one websocket connection to the live endpoint. It does
// not retry; reconnection policy lives in Client.
type Session struct {
	ws     *websocket.Conn
	logger *slog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

// Dial performs a single connection handshake: open the websocket, send the
// setup frame, start the read loop. On success the returned session is live
// and callbacks are armed.
func Dial(endpoint, apiKey, model string, cfg SessionConfig, cb Callbacks, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	ws, _, err := websocket.DefaultDialer.Dial(endpoint+"?key="+url.QueryEscape(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("dial live endpoint: %w", err)
	}

	s := &Session{ws: ws, logger: logger}

	if err := s.sendJSON(setupMessage{Setup: newSetupPayload(model, cfg)}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("send setup: %w", err)
	}

	go s.readLoop(cb)

	if cb.OnOpen != nil {
		cb.OnOpen()
	}
	return s, nil
}

func (s *Session) readLoop(cb Callbacks) {
	defer func() { _ = s.Close() }()

	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			code, reason := closeStatus(err)
			if cb.OnError != nil && !s.closed.Load() && code == websocket.CloseAbnormalClosure {
				cb.OnError(err)
			}
			if cb.OnClose != nil {
				cb.OnClose(code, reason)
			}
			return
		}
		if cb.OnMessage != nil {
			cb.OnMessage(data)
		}
	}
}

func closeStatus(err error) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}

// SendRealtimeInput forwards media chunks fire-and-forget.
func (s *Session) SendRealtimeInput(chunks []MediaChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.sendJSON(realtimeInputMessage{RealtimeInput: realtimeInputPayload{MediaChunks: chunks}})
}

// SendToolResponse forwards tool-call results; an empty response list is a
// silent no-op.
func (s *Session) SendToolResponse(resp ToolResponse) error {
	if len(resp.FunctionResponses) == 0 {
		return nil
	}
	return s.sendJSON(toolResponseMessage{ToolResponse: resp})
}

// SendClientContent forwards content turns plus the end-of-turn marker.
func (s *Session) SendClientContent(turns []Content, turnComplete bool) error {
	return s.sendJSON(clientContentMessage{ClientContent: clientContentPayload{
		Turns:        turns,
		TurnComplete: turnComplete,
	}})
}

func (s *Session) sendJSON(v any) error {
	if s.closed.Load() {
		return shared.ErrNoSession
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.ws.WriteJSON(v)
}

// Close requests graceful shutdown. Idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.writeMu.Lock()
		_ = s.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(sessionCloseWait))
		s.writeMu.Unlock()
		_ = s.ws.Close()
	})
	return nil
}
