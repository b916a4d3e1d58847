package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"futuresBot/config"
	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/bootstrap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "show the position without closing it")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	bot, err := bootstrap.NewBot(cfg, appLogger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init error: %v\n", err)
		os.Exit(1)
	}
	defer bot.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pos, err := bot.Exchange.GetPosition(ctx, cfg.Symbol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get position error: %v\n", err)
		os.Exit(1)
	}
	if pos.IsFlat() {
		fmt.Printf("No open position on %s.\n", cfg.Symbol)
	} else {
		fmt.Printf("%s: amount %.6f, entry %.4f, updated %s\n",
			pos.Symbol, pos.Amount, pos.EntryPrice, pos.UpdateTime.Format(time.RFC3339))
	}

	if *dryRun {
		fmt.Println("Dry run, no orders placed.")
		return
	}

	order, err := bot.Service.CloseAllPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FAIL] close: %v\n", err)
		os.Exit(1)
	}
	if order != nil {
		fmt.Printf("[OK] closing order %d %s %g (%s)\n", order.OrderID, order.Side, order.OrigQuantity, order.Status)
	}
	fmt.Println("Open orders cancelled.")
}
