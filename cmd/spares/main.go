package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vsinha/spares/pkg/infrastructure/config"
	"github.com/vsinha/spares/pkg/infrastructure/logger"
	"github.com/vsinha/spares/pkg/interfaces/cli/commands"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	commands.Execute(cfg)
}
