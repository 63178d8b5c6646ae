package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/callgate/callgate-server/internal/app"
	"github.com/callgate/callgate-server/internal/config"
	"github.com/callgate/callgate-server/internal/log"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	bootstrap := log.New("info", "console")

	cfg, resolvedPath, err := config.Load(bootstrap, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info().Str("config", resolvedPath).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, &cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize")
		os.Exit(1)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting callgate server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}
