package live

import (
	"sync"
	"time"
)

type EventType string

const (
	EventOpen                 EventType = "open"
	EventClose                EventType = "close"
	EventError                EventType = "error"
	EventSetupComplete        EventType = "setupcomplete"
	EventToolCall             EventType = "toolcall"
	EventToolCallCancellation EventType = "toolcallcancellation"
	EventInterrupted          EventType = "interrupted"
	EventTurnComplete         EventType = "turncomplete"
	EventInputTranscription   EventType = "inputtranscription"
	EventOutputTranscription  EventType = "outputtranscription"
	EventTranscription        EventType = "transcription"
	EventAudio                EventType = "audio"
	EventContent              EventType = "content"
	EventLog                  EventType = "log"
)

// Event is one notification raised by the live client. Payload holds the
// kind-specific value: []byte for audio, *Content for content, Transcription
// for the direction-specific transcription kinds, TranscriptionUpdate for the
// unified kind, CloseInfo, error, *ToolCall, *ToolCallCancellation, LogEntry.
type Event struct {
	Type    EventType
	Payload any
}

type CloseInfo struct {
	Code   int    `json:"code"`
	Reason string `json:"reason,omitempty"`
}

type LogEntry struct {
	Date    time.Time `json:"date"`
	Type    string    `json:"type"`
	Message string    `json:"message"`
}

// Emitter fans events out to any number of subscribers per kind. Delivery
// iterates over a snapshot of the subscriber set, so subscribing or cancelling
// from inside a handler never mutates the set being walked.
type Emitter struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]func(Event)
}

func NewEmitter() *Emitter {
	return &Emitter{
		subs: make(map[EventType]map[int]func(Event)),
	}
}

// Subscribe registers fn for events of kind t and returns a cancel func.
// Cancel is idempotent.
func (e *Emitter) Subscribe(t EventType, fn func(Event)) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	if e.subs[t] == nil {
		e.subs[t] = make(map[int]func(Event))
	}
	e.subs[t][id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subs[t], id)
		e.mu.Unlock()
	}
}

func (e *Emitter) Emit(t EventType, payload any) {
	e.mu.RLock()
	handlers := make([]func(Event), 0, len(e.subs[t]))
	for _, fn := range e.subs[t] {
		handlers = append(handlers, fn)
	}
	e.mu.RUnlock()

	ev := Event{Type: t, Payload: payload}
	for _, fn := range handlers {
		fn(ev)
	}
}

// SubscriberCount reports how many handlers are registered for kind t.
func (e *Emitter) SubscriberCount(t EventType) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[t])
}
