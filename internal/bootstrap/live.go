package bootstrap

import (
	"context"
	"log/slog"

	"github.com/counsellive/voice-backend/internal/document"
	"github.com/counsellive/voice-backend/internal/gateway"
	"github.com/counsellive/voice-backend/internal/live"
	"github.com/counsellive/voice-backend/internal/prompt"
	"go.uber.org/fx"
)

func ProvideLiveClient(cfg *Config, logger *slog.Logger) *live.Client {
	return live.NewClient(live.ClientOptions{
		Endpoint: cfg.LiveEndpoint,
		APIKey:   cfg.GeminiAPIKey,
		Backoff:  cfg.Backoff,
		Logger:   logger,
	})
}

func ProvideDocumentStore() *document.Store {
	return document.NewStore()
}

func ProvidePromptBuilder(cfg *Config, logger *slog.Logger) *prompt.Builder {
	return prompt.NewBuilder(cfg.DataDir, logger.With("component", "prompt"))
}

func ProvideHub(lc fx.Lifecycle, client *live.Client, logger *slog.Logger) *gateway.Hub {
	hub := gateway.NewHub(client, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			client.Disconnect()
			return nil
		},
	})
	return hub
}

var LiveModule = fx.Options(
	fx.Provide(
		ProvideLiveClient,
		ProvideDocumentStore,
		ProvidePromptBuilder,
		ProvideHub,
	),
)
