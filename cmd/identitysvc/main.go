package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kcczz8xx/JumpRope-App-sub000/internal/app"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/config"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to CONFIG_PATH or config/config.yml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Fatal("app stopped", zap.Error(err))
	}
}
