package live

import "encoding/json"

// SessionConfig carries the per-session settings sent in the setup frame.
// Everything except SystemInstruction is forwarded opaquely.
type SessionConfig struct {
	ResponseModalities       []string                  `json:"responseModalities,omitempty"`
	SpeechConfig             *SpeechConfig             `json:"speechConfig,omitempty"`
	InputAudioTranscription  *AudioTranscriptionConfig `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *AudioTranscriptionConfig `json:"outputAudioTranscription,omitempty"`
	SystemInstruction        string                    `json:"-"`
}

type SpeechConfig struct {
	LanguageCode string       `json:"languageCode,omitempty"`
	VoiceConfig  *VoiceConfig `json:"voiceConfig,omitempty"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName,omitempty"`
}

type AudioTranscriptionConfig struct {
	TranscriptionMode string `json:"transcriptionMode,omitempty"`
}

// Content is one conversation turn: a role plus ordered parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part is a single piece of turn content, either text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob is inline binary data with its transport encoding applied.
type Blob struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// MediaChunk is one outbound realtime media payload
// (for audio: {mimeType:"audio/pcm;rate=16000", data:<base64>}).
type MediaChunk struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Transcription struct {
	Text     string `json:"text"`
	Finished bool   `json:"finished"`
}

// TranscriptionUpdate is the unified transcription notification, tagged with
// which side of the conversation spoke.
type TranscriptionUpdate struct {
	Direction string `json:"direction"`
	Text      string `json:"text"`
	Finished  bool   `json:"finished"`
}

const (
	DirectionInput  = "input"
	DirectionOutput = "output"
)

type FunctionCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name,omitempty"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolCall struct {
	FunctionCalls []FunctionCall `json:"functionCalls,omitempty"`
}

type ToolCallCancellation struct {
	IDs []string `json:"ids,omitempty"`
}

type FunctionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Response map[string]any `json:"response,omitempty"`
}

type ToolResponse struct {
	FunctionResponses []FunctionResponse `json:"functionResponses,omitempty"`
}

// --- client -> server frames ---

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                    string                    `json:"model"`
	GenerationConfig         *generationConfig         `json:"generationConfig,omitempty"`
	SystemInstruction        *Content                  `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *AudioTranscriptionConfig `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *AudioTranscriptionConfig `json:"outputAudioTranscription,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

func newSetupPayload(model string, cfg SessionConfig) setupPayload {
	p := setupPayload{
		Model:                    model,
		InputAudioTranscription:  cfg.InputAudioTranscription,
		OutputAudioTranscription: cfg.OutputAudioTranscription,
	}
	if len(cfg.ResponseModalities) > 0 || cfg.SpeechConfig != nil {
		p.GenerationConfig = &generationConfig{
			ResponseModalities: cfg.ResponseModalities,
			SpeechConfig:       cfg.SpeechConfig,
		}
	}
	if cfg.SystemInstruction != "" {
		p.SystemInstruction = &Content{Parts: []Part{{Text: cfg.SystemInstruction}}}
	}
	return p
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInputPayload `json:"realtimeInput"`
}

type realtimeInputPayload struct {
	MediaChunks []MediaChunk `json:"mediaChunks"`
}

type clientContentMessage struct {
	ClientContent clientContentPayload `json:"clientContent"`
}

type clientContentPayload struct {
	Turns        []Content `json:"turns"`
	TurnComplete bool      `json:"turnComplete"`
}

type toolResponseMessage struct {
	ToolResponse ToolResponse `json:"toolResponse"`
}

// --- server -> client frames ---

// serverMessage is one inbound frame. The wire format is not a strict tagged
// union: within serverContent several facets can co-occur on a single frame,
// so every field is checked independently during demultiplexing.
type serverMessage struct {
	SetupComplete        json.RawMessage       `json:"setupComplete,omitempty"`
	ToolCall             *ToolCall             `json:"toolCall,omitempty"`
	ToolCallCancellation *ToolCallCancellation `json:"toolCallCancellation,omitempty"`
	ServerContent        *serverContent        `json:"serverContent,omitempty"`
}

type serverContent struct {
	Interrupted         *bool          `json:"interrupted,omitempty"`
	TurnComplete        *bool          `json:"turnComplete,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	ModelTurn           *Content       `json:"modelTurn,omitempty"`
}
