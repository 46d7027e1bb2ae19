package gateway

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades browser connections onto the hub's websocket stream.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With("component", "gateway_handler"),
	}
}

// @Summary      Open the event stream
// @Description  Upgrades the request to a websocket carrying audio, transcription and session events
// @Tags         stream
// @Success      101  {string}  string  "Switching Protocols"
// @Router       /stream [get]
func (h *Handler) HandleStream(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	conn := newConn(ws, h.logger)
	h.hub.Register(conn)

	go conn.writePump()
	conn.readPump(h.hub)
	return nil
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/stream", h.HandleStream)
}
