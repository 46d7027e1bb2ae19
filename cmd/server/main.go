package main

import (
	_ "github.com/counsellive/voice-backend/docs"
	"github.com/counsellive/voice-backend/internal/bootstrap"
)

// @title Counsel Live Voice Backend API
// @version 1.0
// @description Realtime voice counselling backend bridging browser clients and the Gemini Live API

// @BasePath /v1

func main() {
	bootstrap.Run()
}
