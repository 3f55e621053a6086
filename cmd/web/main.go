package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marquee-dev/marquee/internal/app"
	"github.com/marquee-dev/marquee/internal/config"
	"github.com/marquee-dev/marquee/internal/logger"
	"github.com/marquee-dev/marquee/internal/web"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}

	srv, err := web.New(a)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create web server")
	}

	log.Info().Str("version", version).Str("api", cfg.API.BaseURL).Msg("Starting marquee web UI...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	runErr := srv.Run(ctx)
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close session storage")
	}

	if runErr != nil {
		log.Error().Err(runErr).Msg("Web UI stopped with error")
		os.Exit(1)
	}
}
