package live

import (
	"log/slog"
	"net/http"

	"github.com/counsellive/voice-backend/internal/document"
	"github.com/counsellive/voice-backend/internal/dto"
	"github.com/counsellive/voice-backend/internal/prompt"
	"github.com/counsellive/voice-backend/internal/shared"
	"github.com/labstack/echo/v4"
)

// HandlerConfig selects the model and voice profile for new sessions.
type HandlerConfig struct {
	Model    string
	Voice    string
	Language string
}

type Handler struct {
	client  *Client
	docs    *document.Store
	prompts *prompt.Builder
	cfg     HandlerConfig
	logger  *slog.Logger
}

func NewHandler(client *Client, docs *document.Store, prompts *prompt.Builder, cfg HandlerConfig, logger *slog.Logger) *Handler {
	return &Handler{
		client:  client,
		docs:    docs,
		prompts: prompts,
		cfg:     cfg,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/connect", h.Connect)
	g.POST("/disconnect", h.Disconnect)
	g.GET("/status", h.Status)
}

// sessionConfig builds the upstream session settings: audio responses in the
// configured voice, realtime transcription on both sides, and the assembled
// counselor instructions including any uploaded report.
func (h *Handler) sessionConfig() SessionConfig {
	return SessionConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &SpeechConfig{
			LanguageCode: h.cfg.Language,
			VoiceConfig: &VoiceConfig{
				PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: h.cfg.Voice},
			},
		},
		InputAudioTranscription:  &AudioTranscriptionConfig{TranscriptionMode: "REALTIME"},
		OutputAudioTranscription: &AudioTranscriptionConfig{TranscriptionMode: "REALTIME"},
		SystemInstruction:        h.prompts.SystemInstruction(h.docs.Text()),
	}
}

// @Summary      Connect the live session
// @Description  Opens the upstream conversational session; rejected while one is already active
// @Tags         live
// @Produce      json
// @Success      200  {object}  dto.ConnectResponse
// @Success      202  {object}  dto.ConnectResponse
// @Failure      409  {object}  shared.APIError
// @Failure      502  {object}  shared.APIError
// @Router       /live/connect [post]
func (h *Handler) Connect(c echo.Context) error {
	if h.client.State() != StateDisconnected {
		return shared.Conflict("already_connected", "a live session is already active")
	}

	if h.client.Connect(h.cfg.Model, h.sessionConfig()) {
		return c.JSON(http.StatusOK, dto.ConnectResponse{
			Success: true,
			State:   h.client.State().String(),
			Message: "connected to live endpoint",
		})
	}

	if state := h.client.State(); state == StateReconnecting || state == StateConnecting {
		return c.JSON(http.StatusAccepted, dto.ConnectResponse{
			Success: false,
			State:   state.String(),
			Message: "connection pending, retrying in background",
		})
	}

	return shared.BadGateway("connect_failed", "failed to connect to live endpoint")
}

// @Summary      Disconnect the live session
// @Tags         live
// @Produce      json
// @Success      200  {object}  dto.DisconnectResponse
// @Router       /live/disconnect [post]
func (h *Handler) Disconnect(c echo.Context) error {
	had := h.client.Disconnect()
	msg := "disconnected from live endpoint"
	if !had {
		msg = "no active session"
	}
	return c.JSON(http.StatusOK, dto.DisconnectResponse{Success: true, Message: msg})
}

// @Summary      Live session status
// @Tags         live
// @Produce      json
// @Success      200  {object}  dto.StatusResponse
// @Router       /live/status [get]
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.StatusResponse{
		State:      h.client.State().String(),
		RetryCount: h.client.RetryCount(),
	})
}
