package main

import (
	"fmt"
	"os"

	"github.com/gametu-dev/gametu/internal/config"
	"github.com/gametu-dev/gametu/internal/devserver"
	"github.com/gametu-dev/gametu/internal/logger"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.LevelOr("info"), cfg.Logging.Format)
	log := logger.GetLogger()

	srv, err := devserver.New(cfg.DevServer, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().Str("version", version).Str("addr", cfg.DevServer.Addr).Msg("Starting GameTu dev server...")

	// Blocks until SIGINT/SIGTERM
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
