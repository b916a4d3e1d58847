package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"futuresBot/config"
	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/scheduler"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	s, err := scheduler.New(scheduler.Config{
		ExecuteURL:     cfg.ExecuteURL,
		TrailingURL:    cfg.TrailingURL,
		SettleDelay:    cfg.SettleDelay,
		CycleDelay:     cfg.CycleDelay,
		ExecuteTimeout: cfg.ExecuteTimeout,
		TrailTimeout:   cfg.TrailTimeout,
		Logger:         appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize scheduler: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		appLogger.Error(context.Background(), err, "Scheduler exited with error")
		os.Exit(1)
	}
}
