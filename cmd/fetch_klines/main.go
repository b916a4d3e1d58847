package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"futuresBot/config"
	"futuresBot/internal/adapters/binanceclient"
	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/strategy"
	"futuresBot/internal/utils"
)

// fetch_klines downloads the candles the bot would analyse, exports them to CSV
// and prints the indicator snapshot computed from them. Public endpoints only.
func main() {
	out := flag.String("out", "", "CSV output path (default data/<symbol>_<interval>_<date>.csv)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.APIKey,
		SecretKey:         cfg.SecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            appLogger,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	klines, err := binanceClient.GetKlines(ctx, cfg.Symbol, cfg.Interval, cfg.CandleLimit)
	if err != nil {
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(klines)})

	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/%s_%s_%s.csv", cfg.Symbol, cfg.Interval, time.Now().UTC().Format("20060102"))
	}
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	fmt.Printf("Saved %d candles to %s\n", len(klines), filename)

	snap, err := strategy.ComputeIndicators(klines, strategy.IndicatorParams{
		SMAFastPeriod:   cfg.SMAFastPeriod,
		SMASlowPeriod:   cfg.SMASlowPeriod,
		RSIPeriod:       cfg.RSILength,
		BBLength:        cfg.BBLength,
		BBStdDev:        cfg.BBStdDev,
		VolumeAvgWindow: cfg.VolumeAvgWindow,
	})
	if err != nil {
		fmt.Printf("Indicators unavailable: %v\n", err)
		return
	}
	fmt.Printf("close %.4f  sma %.4f/%.4f  rsi %.2f  bb %.4f/%.4f/%.4f  vol %.4f (avg %.4f)\n",
		snap.LastClose, snap.SMAFast, snap.SMASlow, snap.RSI,
		snap.BBLower, snap.BBMiddle, snap.BBUpper, snap.LastVolume, snap.VolumeAvg)
	fmt.Printf("conservative: %s  aggressive: %s\n",
		strategy.ConservativeSignal(snap),
		strategy.AggressiveSignal(snap.RSI, cfg.RSIBuyThreshold, cfg.RSISellThreshold))
}
