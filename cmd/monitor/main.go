package main

import (
	"fmt"
	"log"
	"os"

	"futuresBot/config"
	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/adapters/sqlite"
	"futuresBot/internal/monitor"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// The viewer owns the terminal, so repository logs are discarded.
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: logger.NewFromZap(zap.NewNop()),
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to open database: %v", err)
	}
	defer repo.Close()

	if err := monitor.Run(repo, cfg.MonitorRefresh, cfg.MonitorTradesLimit); err != nil {
		fmt.Fprintf(os.Stderr, "monitor error: %v\n", err)
		os.Exit(1)
	}
}
