package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"futuresBot/internal/adapters/logger"
	"futuresBot/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsTestnet)
	assert.Equal(t, "BTCUSDT", cfg.Symbol)
	assert.Equal(t, "4h", cfg.Interval)
	assert.Equal(t, domain.StrategyConservative, cfg.Strategy)
	assert.Equal(t, 0.003, cfg.Quantity)
	assert.Equal(t, 20, cfg.BBLength)
	assert.Equal(t, 2.0, cfg.BBStdDev)
	assert.Equal(t, 48.0, cfg.RSIBuyThreshold)
	assert.Equal(t, 52.0, cfg.RSISellThreshold)
	assert.Equal(t, 0.02, cfg.StopLoss)
	assert.Equal(t, 24*time.Hour, cfg.MaxHoldingTime)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, 55*time.Second, cfg.CycleDelay)
	assert.Equal(t, time.Second, cfg.MonitorRefresh)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, ":8000", cfg.HTTPAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STRATEGY", "Aggressive")
	t.Setenv("SYMBOL", "ethusdt")
	t.Setenv("RISK_PERCENTAGE", "2.5")
	t.Setenv("MAX_HOLDING_HOURS", "12")
	t.Setenv("TRAILING_STOP_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, domain.StrategyAggressive, cfg.Strategy)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 2.5, cfg.RiskPercentage)
	assert.Equal(t, 12*time.Hour, cfg.MaxHoldingTime)
	assert.False(t, cfg.TrailingStopEnabled)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "unknown strategy",
			env:     map[string]string{"STRATEGY": "yolo"},
			wantMsg: "STRATEGY must be",
		},
		{
			name:    "malformed float",
			env:     map[string]string{"QUANTITY": "lots"},
			wantMsg: "invalid QUANTITY",
		},
		{
			name:    "stop loss out of range",
			env:     map[string]string{"STOP_LOSS": "1.5"},
			wantMsg: "STOP_LOSS must be between",
		},
		{
			name:    "inverted rsi thresholds",
			env:     map[string]string{"RSI_BUY_THRESHOLD": "60", "RSI_SELL_THRESHOLD": "40"},
			wantMsg: "invalid RSI thresholds",
		},
		{
			name:    "sma order",
			env:     map[string]string{"SMA_FAST": "30", "SMA_SLOW": "10"},
			wantMsg: "SMA_FAST must be less than SMA_SLOW",
		},
		{
			name:    "telegram without token",
			env:     map[string]string{"TELEGRAM_ENABLED": "true"},
			wantMsg: "TELEGRAM_BOT_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := LoadConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "configuration validation failed")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadConfig_FileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	content := "SYMBOL: SOLUSDT\nQUANTITY: 1.5\nSTRATEGY: aggressive\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("QUANTITY", "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "SOLUSDT", cfg.Symbol)
	assert.Equal(t, domain.StrategyAggressive, cfg.Strategy)
	assert.Equal(t, 2.0, cfg.Quantity)
}

func TestRequireCredentials(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireCredentials()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BINANCE_API_KEY")
	assert.Contains(t, err.Error(), "BINANCE_API_SECRET")

	cfg.APIKey, cfg.SecretKey = "k", "s"
	assert.NoError(t, cfg.RequireCredentials())
}
