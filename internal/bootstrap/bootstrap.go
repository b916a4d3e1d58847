// Package bootstrap wires configuration into the adapters and the trading service.
package bootstrap

import (
	"context"
	"fmt"

	"futuresBot/config"
	"futuresBot/internal/adapters/binanceclient"
	"futuresBot/internal/adapters/influx"
	"futuresBot/internal/adapters/sqlite"
	"futuresBot/internal/adapters/telegram"
	"futuresBot/internal/app"
	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
	"futuresBot/internal/strategy"
)

// Bot holds every long-lived component of a trading process.
type Bot struct {
	Repo     *sqlite.Repository
	Exchange *binanceclient.Client
	Notifier *telegram.Notifier
	Mirror   *influx.StatusWriter
	Service  *app.TradingService

	logger ports.Logger
}

// NewBot builds the trading stack. Credentials are required.
func NewBot(cfg *config.Config, log ports.Logger) (*Bot, error) {
	ctx := context.Background()
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}

	b := &Bot{logger: log}
	var err error

	b.Repo, err = sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database repository: %w", err)
	}
	log.Info(ctx, "Database repository initialized")

	b.Exchange, err = binanceclient.New(binanceclient.Config{
		APIKey:            cfg.APIKey,
		SecretKey:         cfg.SecretKey,
		UseTestnet:        cfg.IsTestnet,
		Logger:            log,
		RequestTimeout:    cfg.RequestTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize Binance client: %w", err)
	}
	log.Info(ctx, "Binance client initialized", map[string]interface{}{"testnet": cfg.IsTestnet})

	rm := risk.NewRiskManager(risk.RiskConfig{
		StopLossPercent: cfg.StopLoss,
		RiskPercentage:  cfg.RiskPercentage,
		TrailCallback:   cfg.TrailingStopCallback,
	})

	strat, err := strategy.New(strategy.Config{
		Name: cfg.Strategy,
		Indicators: strategy.IndicatorParams{
			SMAFastPeriod:   cfg.SMAFastPeriod,
			SMASlowPeriod:   cfg.SMASlowPeriod,
			RSIPeriod:       cfg.RSILength,
			BBLength:        cfg.BBLength,
			BBStdDev:        cfg.BBStdDev,
			VolumeAvgWindow: cfg.VolumeAvgWindow,
		},
		Quantity:         cfg.Quantity,
		RSIBuyThreshold:  cfg.RSIBuyThreshold,
		RSISellThreshold: cfg.RSISellThreshold,
	}, rm, log)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize trading strategy: %w", err)
	}
	log.Info(ctx, "Trading strategy initialized", map[string]interface{}{"strategy": strat.Name()})

	b.Notifier = telegram.NewNotifier(telegram.Config{
		Enabled:  cfg.TelegramEnabled,
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Logger:   log,
	})

	b.Mirror, err = influx.NewStatusWriter(influx.Config{
		URL:    cfg.InfluxURL,
		Token:  cfg.InfluxToken,
		Org:    cfg.InfluxOrg,
		Bucket: cfg.InfluxBucket,
		Logger: log,
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize status mirror: %w", err)
	}

	b.Service, err = app.NewTradingService(cfg, log, b.Exchange, b.Repo, b.Repo, strat, rm, b.Notifier, b.Mirror)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to initialize trading service: %w", err)
	}
	log.Info(ctx, "Trading service initialized")
	return b, nil
}

// Close releases storage and network resources.
func (b *Bot) Close() {
	if b.Mirror != nil {
		b.Mirror.Close()
	}
	if b.Repo != nil {
		if err := b.Repo.Close(); err != nil {
			b.logger.Error(context.Background(), err, "Error closing database repository")
		}
	}
}
