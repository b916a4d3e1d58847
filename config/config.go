package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"futuresBot/internal/adapters/logger" // Import the logger package for LogLevel
	"futuresBot/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Market
	Symbol      string
	Interval    string // Candle interval, e.g. "4h"
	CandleLimit int    // Candles fetched per cycle
	QuoteAsset  string // Balance asset used for sizing, e.g. "USDT"

	// Strategy
	Strategy         domain.StrategyName
	Quantity         float64 // Fixed order size for the conservative strategy
	BBLength         int
	BBStdDev         float64
	VolumeAvgWindow  int
	SMAFastPeriod    int
	SMASlowPeriod    int
	RSILength        int
	RSIBuyThreshold  float64
	RSISellThreshold float64
	RiskPercentage   float64 // Percent of quote balance committed per aggressive trade

	// Risk
	StopLoss             float64 // Fraction, e.g. 0.02 for 2%
	TrailingStopEnabled  bool
	TrailingStopCallback float64 // Profit fraction that arms the breakeven stop
	MaxHoldingTime       time.Duration

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// HTTP
	HTTPAddr          string
	RequestTimeout    time.Duration
	RequestsPerSecond float64

	// Scheduler
	ExecuteURL     string
	TrailingURL    string
	SettleDelay    time.Duration
	CycleDelay     time.Duration
	ExecuteTimeout time.Duration
	TrailTimeout   time.Duration

	// Monitor
	MonitorRefresh     time.Duration
	MonitorTradesLimit int

	// Telegram
	TelegramEnabled  bool
	TelegramBotToken string
	TelegramChatID   int64

	// InfluxDB status mirror; disabled when InfluxURL is empty.
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("IS_TESTNET", true) // Default to testnet for safety
	v.SetDefault("SYMBOL", "BTCUSDT")
	v.SetDefault("INTERVAL", "4h")
	v.SetDefault("CANDLE_LIMIT", 100)
	v.SetDefault("QUOTE_ASSET", "USDT")

	v.SetDefault("STRATEGY", string(domain.StrategyConservative))
	v.SetDefault("QUANTITY", 0.003)
	v.SetDefault("BB_LENGTH", 20)
	v.SetDefault("BB_STD", 2.0)
	v.SetDefault("VOLUME_AVG_WINDOW", 20)
	v.SetDefault("SMA_FAST", 10)
	v.SetDefault("SMA_SLOW", 30)
	v.SetDefault("RSI_LENGTH", 14)
	v.SetDefault("RSI_BUY_THRESHOLD", 48.0)
	v.SetDefault("RSI_SELL_THRESHOLD", 52.0)
	v.SetDefault("RISK_PERCENTAGE", 1.0)

	v.SetDefault("STOP_LOSS", 0.02)
	v.SetDefault("TRAILING_STOP_ENABLED", true)
	v.SetDefault("TRAILING_STOP_CALLBACK", 0.005)
	v.SetDefault("MAX_HOLDING_HOURS", 24.0)

	v.SetDefault("DB_PATH", "./data/trading_bot.db")
	v.SetDefault("LOG_LEVEL", "INFO")

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 10)
	v.SetDefault("REQUESTS_PER_SECOND", 5.0)

	v.SetDefault("API_URL_EXECUTE", "http://localhost:8000/trade/execute")
	v.SetDefault("API_URL_TSL", "http://localhost:8000/trade/update-tsl")
	v.SetDefault("SCHEDULER_SETTLE_SECONDS", 5)
	v.SetDefault("SCHEDULER_CYCLE_SECONDS", 55)
	v.SetDefault("SCHEDULER_EXECUTE_TIMEOUT_SECONDS", 30)
	v.SetDefault("SCHEDULER_TSL_TIMEOUT_SECONDS", 15)

	v.SetDefault("MONITOR_REFRESH_MS", 1000)
	v.SetDefault("MONITOR_TRADES_LIMIT", 10)

	v.SetDefault("TELEGRAM_ENABLED", false)
	v.SetDefault("INFLUX_ORG", "futuresbot")
	v.SetDefault("INFLUX_BUCKET", "status")
}

// LoadConfig loads configuration from the environment (.env file included)
// and, when CONFIG_FILE is set, from that YAML/JSON/TOML file. Environment
// variables take precedence over the file.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	r := &reader{v: v}

	// Binance API
	cfg.APIKey = r.str("BINANCE_API_KEY")
	cfg.SecretKey = r.str("BINANCE_API_SECRET")
	cfg.IsTestnet = r.boolean("IS_TESTNET")

	// Market
	cfg.Symbol = strings.ToUpper(r.str("SYMBOL"))
	if cfg.Symbol == "" {
		r.fail("SYMBOL must be set")
	}
	cfg.Interval = r.str("INTERVAL")
	if cfg.Interval == "" {
		r.fail("INTERVAL must be set")
	}
	cfg.CandleLimit = r.integer("CANDLE_LIMIT")
	if cfg.CandleLimit <= 0 || cfg.CandleLimit > 1500 {
		r.fail("CANDLE_LIMIT must be between 1 and 1500")
	}
	cfg.QuoteAsset = strings.ToUpper(r.str("QUOTE_ASSET"))

	// Strategy
	strategyName, ok := domain.ParseStrategyName(strings.ToLower(r.str("STRATEGY")))
	if !ok {
		r.fail(fmt.Sprintf("STRATEGY must be '%s' or '%s'", domain.StrategyConservative, domain.StrategyAggressive))
	}
	cfg.Strategy = strategyName

	cfg.Quantity = r.float("QUANTITY")
	if cfg.Quantity <= 0 {
		r.fail("QUANTITY must be positive")
	}
	cfg.BBLength = r.integer("BB_LENGTH")
	cfg.BBStdDev = r.float("BB_STD")
	if cfg.BBStdDev <= 0 {
		r.fail("BB_STD must be positive")
	}
	cfg.VolumeAvgWindow = r.integer("VOLUME_AVG_WINDOW")
	cfg.SMAFastPeriod = r.integer("SMA_FAST")
	cfg.SMASlowPeriod = r.integer("SMA_SLOW")
	cfg.RSILength = r.integer("RSI_LENGTH")
	if cfg.BBLength <= 1 || cfg.VolumeAvgWindow <= 0 || cfg.SMAFastPeriod <= 0 || cfg.SMASlowPeriod <= 0 || cfg.RSILength <= 1 {
		r.fail("indicator periods (BB, volume, SMA, RSI) must be positive")
	}
	if cfg.SMAFastPeriod >= cfg.SMASlowPeriod {
		r.fail("SMA_FAST must be less than SMA_SLOW")
	}
	cfg.RSIBuyThreshold = r.float("RSI_BUY_THRESHOLD")
	cfg.RSISellThreshold = r.float("RSI_SELL_THRESHOLD")
	if cfg.RSIBuyThreshold < 0 || cfg.RSISellThreshold > 100 || cfg.RSIBuyThreshold > cfg.RSISellThreshold {
		r.fail("invalid RSI thresholds (buy must be <= sell, between 0-100)")
	}
	cfg.RiskPercentage = r.float("RISK_PERCENTAGE")
	if cfg.RiskPercentage <= 0 || cfg.RiskPercentage > 100 {
		r.fail("RISK_PERCENTAGE must be between 0 and 100")
	}

	// Risk
	cfg.StopLoss = r.float("STOP_LOSS")
	if cfg.StopLoss <= 0 || cfg.StopLoss >= 1.0 {
		r.fail("STOP_LOSS must be between 0.0 and 1.0 (exclusive)")
	}
	cfg.TrailingStopEnabled = r.boolean("TRAILING_STOP_ENABLED")
	cfg.TrailingStopCallback = r.float("TRAILING_STOP_CALLBACK")
	if cfg.TrailingStopCallback <= 0 {
		r.fail("TRAILING_STOP_CALLBACK must be positive")
	}
	maxHours := r.float("MAX_HOLDING_HOURS")
	if maxHours <= 0 {
		r.fail("MAX_HOLDING_HOURS must be positive")
	}
	cfg.MaxHoldingTime = time.Duration(maxHours * float64(time.Hour))

	// Database
	cfg.DBPath = r.str("DB_PATH")
	if cfg.DBPath == "" {
		r.fail("DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(r.str("LOG_LEVEL"))

	// HTTP
	cfg.HTTPAddr = r.str("HTTP_ADDR")
	cfg.RequestTimeout = r.seconds("REQUEST_TIMEOUT_SECONDS")
	cfg.RequestsPerSecond = r.float("REQUESTS_PER_SECOND")
	if cfg.RequestsPerSecond <= 0 {
		r.fail("REQUESTS_PER_SECOND must be positive")
	}

	// Scheduler
	cfg.ExecuteURL = r.str("API_URL_EXECUTE")
	cfg.TrailingURL = r.str("API_URL_TSL")
	cfg.SettleDelay = r.seconds("SCHEDULER_SETTLE_SECONDS")
	cfg.CycleDelay = r.seconds("SCHEDULER_CYCLE_SECONDS")
	cfg.ExecuteTimeout = r.seconds("SCHEDULER_EXECUTE_TIMEOUT_SECONDS")
	cfg.TrailTimeout = r.seconds("SCHEDULER_TSL_TIMEOUT_SECONDS")

	// Monitor
	refreshMs := r.integer("MONITOR_REFRESH_MS")
	if refreshMs <= 0 {
		r.fail("MONITOR_REFRESH_MS must be positive")
	}
	cfg.MonitorRefresh = time.Duration(refreshMs) * time.Millisecond
	cfg.MonitorTradesLimit = r.integer("MONITOR_TRADES_LIMIT")
	if cfg.MonitorTradesLimit <= 0 {
		r.fail("MONITOR_TRADES_LIMIT must be positive")
	}

	// Telegram
	cfg.TelegramEnabled = r.boolean("TELEGRAM_ENABLED")
	cfg.TelegramBotToken = r.str("TELEGRAM_BOT_TOKEN")
	if v.IsSet("TELEGRAM_CHAT_ID") {
		cfg.TelegramChatID = r.integer64("TELEGRAM_CHAT_ID")
	}
	if cfg.TelegramEnabled && (cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0) {
		r.fail("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set when TELEGRAM_ENABLED is true")
	}

	// InfluxDB
	cfg.InfluxURL = r.str("INFLUX_URL")
	cfg.InfluxToken = r.str("INFLUX_TOKEN")
	cfg.InfluxOrg = r.str("INFLUX_ORG")
	cfg.InfluxBucket = r.str("INFLUX_BUCKET")

	// Combine validation errors
	if len(r.errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(r.errs, "; "))
	}

	return cfg, nil
}

// RequireCredentials reports missing API keys. Only commands that talk to
// private exchange endpoints call it; the monitor runs without keys.
func (c *Config) RequireCredentials() error {
	var errs []string
	if c.APIKey == "" {
		errs = append(errs, "BINANCE_API_KEY must be set")
	}
	if c.SecretKey == "" {
		errs = append(errs, "BINANCE_API_SECRET must be set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// --- Viper Helpers ---

// reader converts raw viper values with cast and collects conversion errors
// instead of silently falling back to defaults.
type reader struct {
	v    *viper.Viper
	errs []string
}

func (r *reader) fail(msg string) {
	r.errs = append(r.errs, msg)
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(cast.ToString(r.v.Get(key)))
}

func (r *reader) integer(key string) int {
	value, err := cast.ToIntE(r.v.Get(key))
	if err != nil {
		r.fail(fmt.Sprintf("invalid %s: %v", key, err))
		return 0
	}
	return value
}

func (r *reader) integer64(key string) int64 {
	value, err := cast.ToInt64E(r.v.Get(key))
	if err != nil {
		r.fail(fmt.Sprintf("invalid %s: %v", key, err))
		return 0
	}
	return value
}

func (r *reader) float(key string) float64 {
	value, err := cast.ToFloat64E(r.v.Get(key))
	if err != nil {
		r.fail(fmt.Sprintf("invalid %s: %v", key, err))
		return 0
	}
	return value
}

func (r *reader) boolean(key string) bool {
	value, err := cast.ToBoolE(r.v.Get(key))
	if err != nil {
		r.fail(fmt.Sprintf("invalid %s: %v", key, err))
		return false
	}
	return value
}

func (r *reader) seconds(key string) time.Duration {
	n := r.integer(key)
	if n < 0 {
		r.fail(fmt.Sprintf("%s cannot be negative", key))
		return 0
	}
	return time.Duration(n) * time.Second
}
