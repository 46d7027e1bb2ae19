package bootstrap

import (
	"os"
	"strconv"
	"time"

	"github.com/counsellive/voice-backend/internal/shared"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	GeminiAPIKey   string
	GeminiModel    string
	GeminiVoice    string
	GeminiLanguage string
	LiveEndpoint   string

	Backoff shared.BackoffConfig

	DataDir   string
	UploadDir string

	StaticDir string
	IndexHTML string
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "models/gemini-2.0-flash-live-001"),
		GeminiVoice:    getEnv("GEMINI_VOICE", "Aoede"),
		GeminiLanguage: getEnv("GEMINI_LANGUAGE", "en-GB"),
		LiveEndpoint:   getEnv("LIVE_ENDPOINT", ""),

		Backoff: shared.BackoffConfig{
			Initial:     time.Duration(getEnvInt("RECONNECT_INITIAL_MS", 1000)) * time.Millisecond,
			MaxDelay:    time.Duration(getEnvInt("RECONNECT_MAX_DELAY_MS", 30000)) * time.Millisecond,
			Multiplier:  2,
			MaxAttempts: getEnvInt("RECONNECT_MAX_ATTEMPTS", 5),
		},

		DataDir:   getEnv("DATA_DIR", "./data"),
		UploadDir: getEnv("UPLOAD_DIR", os.TempDir()),

		StaticDir: getEnv("STATIC_DIR", "./static"),
		IndexHTML: getEnv("INDEX_HTML", "./static/index.html"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
