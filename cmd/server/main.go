package main

import (
	"log"

	"github.com/alimgiray/gmash/internal/server"
	"github.com/alimgiray/gmash/pkg/config"
	"github.com/alimgiray/gmash/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log)

	if err := server.Run(cfg); err != nil {
		logger.Fatalf("Server stopped with error: %v", err)
	}
}
