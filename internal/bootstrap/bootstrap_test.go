package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"futuresBot/config"
	"futuresBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		APIKey:               "key",
		SecretKey:            "secret",
		IsTestnet:            true,
		Symbol:               "BTCUSDT",
		Interval:             "4h",
		CandleLimit:          100,
		QuoteAsset:           "USDT",
		Strategy:             domain.StrategyConservative,
		Quantity:             0.003,
		BBLength:             20,
		BBStdDev:             2,
		VolumeAvgWindow:      20,
		SMAFastPeriod:        10,
		SMASlowPeriod:        30,
		RSILength:            14,
		RSIBuyThreshold:      48,
		RSISellThreshold:     52,
		RiskPercentage:       1,
		StopLoss:             0.02,
		TrailingStopEnabled:  true,
		TrailingStopCallback: 0.005,
		MaxHoldingTime:       24 * time.Hour,
		DBPath:               filepath.Join(t.TempDir(), "bot.db"),
		RequestTimeout:       time.Second,
		RequestsPerSecond:    5,
	}
}

func TestNewBot(t *testing.T) {
	bot, err := NewBot(testConfig(t), &mockLogger{})
	require.NoError(t, err)
	defer bot.Close()

	assert.NotNil(t, bot.Service)
	assert.NotNil(t, bot.Repo)
	assert.NotNil(t, bot.Exchange)
	assert.False(t, bot.Notifier.Enabled())
	assert.False(t, bot.Mirror.Enabled())
}

func TestNewBot_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{name: "missing credentials", mutate: func(c *config.Config) { c.SecretKey = "" }},
		{name: "invalid strategy parameters", mutate: func(c *config.Config) { c.BBStdDev = 0 }},
		{name: "candle limit too small", mutate: func(c *config.Config) { c.CandleLimit = 5 }},
		{name: "influx without bucket", mutate: func(c *config.Config) { c.InfluxURL = "http://localhost:8086" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)
			bot, err := NewBot(cfg, &mockLogger{})
			assert.Error(t, err)
			assert.Nil(t, bot)
		})
	}
}
