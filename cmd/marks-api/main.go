package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/noah-isme/sma-marks/internal/server"
	"github.com/noah-isme/sma-marks/pkg/config"
	"github.com/noah-isme/sma-marks/pkg/logger"
)

// @title SMA Marks API
// @version 1.0.0
// @description Student marks record store with class summaries, exports and jokes.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
