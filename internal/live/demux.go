package live

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// handleMessage demultiplexes one inbound frame into events. Frames are
// processed in arrival order; each facet present on the frame raises its own
// event. setupComplete, toolCall and toolCallCancellation are frame-exclusive;
// within serverContent, interrupted short-circuits, then turnComplete,
// inputTranscription, outputTranscription and modelTurn are each checked
// independently because they can co-occur on a single frame.
func (c *Client) handleMessage(data []byte) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("dropping undecodable frame", "error", err)
		return
	}

	switch {
	case msg.SetupComplete != nil:
		c.logEvent("server.send", "setupComplete")
		c.events.Emit(EventSetupComplete, nil)
		return
	case msg.ToolCall != nil:
		c.logEvent("server.toolCall", fmt.Sprintf("%d function calls", len(msg.ToolCall.FunctionCalls)))
		c.events.Emit(EventToolCall, msg.ToolCall)
		return
	case msg.ToolCallCancellation != nil:
		c.logEvent("server.toolCallCancellation", strings.Join(msg.ToolCallCancellation.IDs, ","))
		c.events.Emit(EventToolCallCancellation, msg.ToolCallCancellation)
		return
	case msg.ServerContent != nil:
		c.handleServerContent(msg.ServerContent)
		return
	}

	c.logger.Debug("received unmatched frame", "frame", string(data))
}

func (c *Client) handleServerContent(sc *serverContent) {
	if sc.Interrupted != nil {
		c.logEvent("server.content", "interrupted")
		c.events.Emit(EventInterrupted, nil)
		return
	}

	if sc.TurnComplete != nil {
		c.logEvent("server.content", "turnComplete")
		c.events.Emit(EventTurnComplete, nil)
	}

	if sc.InputTranscription != nil {
		c.emitTranscription(DirectionInput, EventInputTranscription, sc.InputTranscription)
	}

	if sc.OutputTranscription != nil {
		c.emitTranscription(DirectionOutput, EventOutputTranscription, sc.OutputTranscription)
	}

	if sc.ModelTurn != nil {
		c.handleModelTurn(sc.ModelTurn)
	}
}

// emitTranscription raises the direction-specific event plus the unified
// transcription event. Whitespace-only text is dropped; non-blank text is
// forwarded untrimmed.
func (c *Client) emitTranscription(direction string, kind EventType, t *Transcription) {
	if strings.TrimSpace(t.Text) == "" {
		return
	}
	c.events.Emit(kind, *t)
	c.events.Emit(EventTranscription, TranscriptionUpdate{
		Direction: direction,
		Text:      t.Text,
		Finished:  t.Finished,
	})
	c.logEvent(fmt.Sprintf("server.%sTranscription", direction), fmt.Sprintf("text=%q finished=%t", t.Text, t.Finished))
}

// handleModelTurn splits the turn into PCM audio parts and everything else.
// Each audio payload is decoded and raised as its own audio event, in part
// order; the residual parts are re-wrapped and raised once as content so
// audio bytes are never duplicated on the content channel.
func (c *Client) handleModelTurn(turn *Content) {
	var other []Part
	for _, p := range turn.Parts {
		if p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, "audio/pcm") {
			if p.InlineData.Data == "" {
				continue
			}
			raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				c.logger.Warn("skipping undecodable audio part", "error", err)
				continue
			}
			c.events.Emit(EventAudio, raw)
			c.logEvent("server.audio", fmt.Sprintf("buffer (%d)", len(raw)))
			continue
		}
		other = append(other, p)
	}

	if len(other) > 0 {
		c.events.Emit(EventContent, &Content{Role: turn.Role, Parts: other})
		c.logEvent("server.content", fmt.Sprintf("%d parts", len(other)))
	}
}
