package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/counsellive/voice-backend/internal/audio"
	"github.com/counsellive/voice-backend/internal/live"
)

// Envelope is one message on the browser websocket, in either direction.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

var captureMIMEType = fmt.Sprintf("audio/pcm;rate=%d", audio.CaptureRate)

// Hub fans live-session events out to every connected browser client and
// forwards client input (microphone audio, text) upstream. Model audio is
// routed through a pacer so clients receive chunks at real-time cadence. The
// hub registers exactly one subscriber per event kind.
type Hub struct {
	client *live.Client
	pacer  *audio.Pacer
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[*Conn]struct{}

	cancels []func()
}

func NewHub(client *live.Client, logger *slog.Logger) *Hub {
	h := &Hub{
		client: client,
		logger: logger.With("component", "gateway_hub"),
		conns:  make(map[*Conn]struct{}),
	}
	h.pacer = audio.NewPacer(audio.PlaybackRate, h.emitPaced)
	h.subscribe()
	return h
}

func (h *Hub) subscribe() {
	events := h.client.Events()

	sub := func(t live.EventType, fn func(live.Event)) {
		h.cancels = append(h.cancels, events.Subscribe(t, fn))
	}

	sub(live.EventAudio, func(ev live.Event) {
		if pcm, ok := ev.Payload.([]byte); ok {
			h.pacer.AddPCM16(pcm)
		}
	})
	sub(live.EventContent, func(ev live.Event) {
		h.Broadcast("content", ev.Payload)
	})
	sub(live.EventInputTranscription, func(ev live.Event) {
		h.Broadcast("input-transcription", ev.Payload)
	})
	sub(live.EventOutputTranscription, func(ev live.Event) {
		h.Broadcast("output-transcription", ev.Payload)
	})
	sub(live.EventTranscription, func(ev live.Event) {
		h.Broadcast("transcription", ev.Payload)
	})
	sub(live.EventInterrupted, func(ev live.Event) {
		h.pacer.Stop()
		h.Broadcast("interrupted", nil)
	})
	sub(live.EventTurnComplete, func(ev live.Event) {
		h.Broadcast("turn-complete", nil)
	})
	sub(live.EventToolCall, func(ev live.Event) {
		h.Broadcast("toolcall", ev.Payload)
	})
	sub(live.EventToolCallCancellation, func(ev live.Event) {
		h.Broadcast("toolcallcancellation", ev.Payload)
	})
	sub(live.EventOpen, func(ev live.Event) {
		h.Broadcast("open", nil)
	})
	sub(live.EventClose, func(ev live.Event) {
		h.pacer.Stop()
		h.Broadcast("close", ev.Payload)
	})
	sub(live.EventError, func(ev live.Event) {
		if err, ok := ev.Payload.(error); ok {
			h.Broadcast("error", err.Error())
		}
	})
	sub(live.EventLog, func(ev live.Event) {
		h.Broadcast("log", ev.Payload)
	})
}

// emitPaced is the pacer's consumer: paced float chunks go back to PCM16 and
// out to every client as base64.
func (h *Hub) emitPaced(samples []float32) {
	pcm := audio.Int16ToPCMBytes(audio.Float32ToInt16(samples))
	h.Broadcast("audio-data", base64.StdEncoding.EncodeToString(pcm))
}

func (h *Hub) Broadcast(kind string, payload any) {
	data, err := json.Marshal(Envelope{Type: kind, Payload: payload})
	if err != nil {
		h.logger.Error("envelope marshal failed", "type", kind, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		conn.enqueue(data)
	}
}

func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("client connected", "conn_id", conn.id, "clients", count)
}

func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("client disconnected", "conn_id", conn.id, "clients", count)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// handleClientMessage routes one inbound browser message upstream.
func (h *Hub) handleClientMessage(conn *Conn, msg clientMessage) {
	switch msg.Type {
	case "audio-data":
		if msg.Data == "" {
			return
		}
		h.client.SendRealtimeInput([]live.MediaChunk{{
			MIMEType: captureMIMEType,
			Data:     msg.Data,
		}})
	case "text":
		if msg.Text == "" {
			return
		}
		h.client.Send([]live.Part{{Text: msg.Text}}, true)
	default:
		h.logger.Debug("unknown client message", "conn_id", conn.id, "type", msg.Type)
	}
}

// Close cancels the event subscriptions, stops the pacer and drops every
// client connection.
func (h *Hub) Close() {
	for _, cancel := range h.cancels {
		cancel()
	}
	h.cancels = nil
	h.pacer.Stop()

	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
