package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/durianostics/durianostics-client/internal/app"
	"github.com/durianostics/durianostics-client/pkg/config"
	"github.com/durianostics/durianostics-client/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "durianostics"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "durianostics",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	core, err := app.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap client core", err)
		os.Exit(1)
	}

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"storage": cfg.Storage.NormalizedDriver(),
		"api_url": core.API.BaseURL(),
	})
	logg.Info(startCtx, "durianostics client core ready")

	if health, err := core.API.Ping(ctx); err != nil {
		logg.Warn(startCtx, "backend unreachable at startup")
	} else {
		logg.Info(logg.WithField(startCtx, "status", health.Status), "backend reachable")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logg.Info(ctx, "shutting down")
	if err := core.Close(ctx); err != nil {
		logg.Error(ctx, "error closing client core", err)
	}
}
