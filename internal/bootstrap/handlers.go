package bootstrap

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/counsellive/voice-backend/docs"
	"github.com/counsellive/voice-backend/internal/document"
	"github.com/counsellive/voice-backend/internal/gateway"
	"github.com/counsellive/voice-backend/internal/live"
	"github.com/counsellive/voice-backend/internal/prompt"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	LiveHandler     *live.Handler
	DocumentHandler *document.Handler
	GatewayHandler  *gateway.Handler
	Config          *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	params.LiveHandler.RegisterRoutes(api.Group("/live"))
	params.DocumentHandler.RegisterRoutes(api.Group("/documents"))
	params.GatewayHandler.RegisterRoutes(e)

	e.GET("/swagger/*", echoSwagger.EchoWrapHandler())
	e.GET("/asyncapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", docs.AsyncAPISpec)
	})

	e.Static("/assets", params.Config.StaticDir)
	e.GET("/*", func(c echo.Context) error {
		return c.File(params.Config.IndexHTML)
	})
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideLiveHandler(client *live.Client, store *document.Store, prompts *prompt.Builder, cfg *Config, logger *slog.Logger) *live.Handler {
	return live.NewHandler(client, store, prompts, live.HandlerConfig{
		Model:    cfg.GeminiModel,
		Voice:    cfg.GeminiVoice,
		Language: cfg.GeminiLanguage,
	}, logger.With("handler", "live"))
}

func ProvideDocumentHandler(store *document.Store, cfg *Config, logger *slog.Logger) *document.Handler {
	return document.NewHandler(store, cfg.UploadDir, logger.With("handler", "document"))
}

func ProvideGatewayHandler(hub *gateway.Hub, logger *slog.Logger) *gateway.Handler {
	return gateway.NewHandler(hub, logger)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideLiveHandler,
		ProvideDocumentHandler,
		ProvideGatewayHandler,
	),
	fx.Invoke(RegisterRoutes),
)
