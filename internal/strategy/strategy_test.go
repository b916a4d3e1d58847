package strategy

import (
	"context"
	"testing"
	"time"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"
	"futuresBot/internal/risk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct {
	debugMsgs []string
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.debugMsgs = append(m.debugMsgs, msg)
}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.errorMsgs = append(m.errorMsgs, msg)
}

var testParams = IndicatorParams{
	SMAFastPeriod:   2,
	SMASlowPeriod:   3,
	RSIPeriod:       3,
	BBLength:        20,
	BBStdDev:        2.0,
	VolumeAvgWindow: 20,
}

func makeKlines(closes, volumes []float64) []*domain.Kline {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*domain.Kline, len(closes))
	for i, c := range closes {
		v := 1.0
		if volumes != nil {
			v = volumes[i]
		}
		out[i] = &domain.Kline{
			OpenTime:  start.Add(time.Duration(i) * 4 * time.Hour),
			CloseTime: start.Add(time.Duration(i+1)*4*time.Hour - time.Millisecond),
			Symbol:    "BTCUSDT",
			Interval:  "4h",
			Open:      c, High: c, Low: c, Close: c,
			Volume: v,
		}
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestStrategy(t *testing.T, cfg Config) *Strategy {
	t.Helper()
	rm := risk.NewRiskManager(risk.RiskConfig{StopLossPercent: 0.02, RiskPercentage: 1.0, TrailCallback: 0.005})
	s, err := New(cfg, rm, &mockLogger{})
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	rm := risk.NewRiskManager(risk.RiskConfig{RiskPercentage: 1})
	tests := []struct {
		name    string
		cfg     Config
		rm      *risk.RiskManager
		logger  ports.Logger
		wantErr bool
	}{
		{
			name:   "valid conservative",
			cfg:    Config{Name: domain.StrategyConservative, Indicators: testParams, Quantity: 0.003},
			rm:     rm,
			logger: &mockLogger{},
		},
		{
			name:   "valid aggressive",
			cfg:    Config{Name: domain.StrategyAggressive, Indicators: testParams, RSIBuyThreshold: 48, RSISellThreshold: 52},
			rm:     rm,
			logger: &mockLogger{},
		},
		{
			name:    "nil logger",
			cfg:     Config{Name: domain.StrategyConservative, Indicators: testParams, Quantity: 0.003},
			rm:      rm,
			wantErr: true,
		},
		{
			name:    "nil risk manager",
			cfg:     Config{Name: domain.StrategyConservative, Indicators: testParams, Quantity: 0.003},
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "unknown strategy",
			cfg:     Config{Name: "momentum", Indicators: testParams, Quantity: 0.003},
			rm:      rm,
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "invalid periods",
			cfg:     Config{Name: domain.StrategyConservative, Indicators: IndicatorParams{SMASlowPeriod: 3, RSIPeriod: 3, BBLength: 20, BBStdDev: 2, VolumeAvgWindow: 20}, Quantity: 0.003},
			rm:      rm,
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "conservative without quantity",
			cfg:     Config{Name: domain.StrategyConservative, Indicators: testParams},
			rm:      rm,
			logger:  &mockLogger{},
			wantErr: true,
		},
		{
			name:    "inverted thresholds",
			cfg:     Config{Name: domain.StrategyAggressive, Indicators: testParams, RSIBuyThreshold: 60, RSISellThreshold: 40},
			rm:      rm,
			logger:  &mockLogger{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg, tt.rm, tt.logger)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestRequiredDataPoints(t *testing.T) {
	assert.Equal(t, 20, testParams.RequiredDataPoints())
	assert.Equal(t, 30, IndicatorParams{SMAFastPeriod: 10, SMASlowPeriod: 30, RSIPeriod: 14, BBLength: 20, BBStdDev: 2, VolumeAvgWindow: 20}.RequiredDataPoints())
	assert.Equal(t, 51, IndicatorParams{SMAFastPeriod: 10, SMASlowPeriod: 30, RSIPeriod: 50, BBLength: 20, BBStdDev: 2, VolumeAvgWindow: 20}.RequiredDataPoints())
}

func TestConservativeSignal(t *testing.T) {
	tests := []struct {
		name string
		snap domain.IndicatorSnapshot
		want domain.Signal
	}{
		{
			name: "breakout above upper band",
			snap: domain.IndicatorSnapshot{LastClose: 105, BBUpper: 100, BBLower: 90, LastVolume: 50, VolumeAvg: 40},
			want: domain.SignalBuy,
		},
		{
			name: "breakdown on high volume",
			snap: domain.IndicatorSnapshot{LastClose: 85, BBUpper: 100, BBLower: 90, LastVolume: 50, VolumeAvg: 40},
			want: domain.SignalSell,
		},
		{
			name: "breakdown on low volume holds",
			snap: domain.IndicatorSnapshot{LastClose: 85, BBUpper: 100, BBLower: 90, LastVolume: 30, VolumeAvg: 40},
			want: domain.SignalHold,
		},
		{
			name: "inside bands",
			snap: domain.IndicatorSnapshot{LastClose: 95, BBUpper: 100, BBLower: 90, LastVolume: 50, VolumeAvg: 40},
			want: domain.SignalHold,
		},
		{
			name: "touching upper band is not a breakout",
			snap: domain.IndicatorSnapshot{LastClose: 100, BBUpper: 100, BBLower: 90, LastVolume: 50, VolumeAvg: 40},
			want: domain.SignalHold,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConservativeSignal(tt.snap))
		})
	}
}

func TestAggressiveSignal(t *testing.T) {
	assert.Equal(t, domain.SignalBuy, AggressiveSignal(45, 48, 52))
	assert.Equal(t, domain.SignalSell, AggressiveSignal(55, 48, 52))
	assert.Equal(t, domain.SignalHold, AggressiveSignal(50, 48, 52))
	assert.Equal(t, domain.SignalHold, AggressiveSignal(48, 48, 52))
	assert.Equal(t, domain.SignalHold, AggressiveSignal(52, 48, 52))
}

func TestDecide_ConservativeSeries(t *testing.T) {
	s := newTestStrategy(t, Config{Name: domain.StrategyConservative, Indicators: testParams, Quantity: 0.003})
	ctx := context.Background()

	t.Run("close breaks above upper band", func(t *testing.T) {
		closes := append(repeat(100, 19), 110)
		signal, qty, snap, err := s.Decide(ctx, makeKlines(closes, nil), ports.MarketState{})
		require.NoError(t, err)
		assert.Equal(t, domain.SignalBuy, signal)
		assert.Equal(t, 0.003, qty)
		assert.Greater(t, snap.LastClose, snap.BBUpper)
		assert.InDelta(t, 100.5, snap.BBMiddle, 1e-9)
	})

	t.Run("close breaks below lower band on volume spike", func(t *testing.T) {
		closes := append(repeat(100, 19), 90)
		volumes := append(repeat(10, 19), 50)
		signal, qty, snap, err := s.Decide(ctx, makeKlines(closes, volumes), ports.MarketState{})
		require.NoError(t, err)
		assert.Equal(t, domain.SignalSell, signal)
		assert.Equal(t, 0.003, qty)
		assert.InDelta(t, 12.0, snap.VolumeAvg, 1e-9)
	})

	t.Run("breakdown without volume holds", func(t *testing.T) {
		closes := append(repeat(100, 19), 90)
		volumes := append(repeat(10, 19), 5)
		signal, qty, _, err := s.Decide(ctx, makeKlines(closes, volumes), ports.MarketState{})
		require.NoError(t, err)
		assert.Equal(t, domain.SignalHold, signal)
		assert.Zero(t, qty)
	})
}

func TestDecide_AggressiveSeries(t *testing.T) {
	s := newTestStrategy(t, Config{Name: domain.StrategyAggressive, Indicators: testParams, RSIBuyThreshold: 48, RSISellThreshold: 52})
	ctx := context.Background()

	rising := make([]float64, 20)
	falling := make([]float64, 20)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
	}

	t.Run("steady gains read as overbought", func(t *testing.T) {
		signal, qty, snap, err := s.Decide(ctx, makeKlines(rising, nil), ports.MarketState{MarkPrice: 20000, QuoteBalance: 100000})
		require.NoError(t, err)
		assert.InDelta(t, 100.0, snap.RSI, 1e-9)
		assert.Equal(t, domain.SignalSell, signal)
		assert.Equal(t, 0.05, qty)
	})

	t.Run("steady losses read as oversold", func(t *testing.T) {
		signal, qty, snap, err := s.Decide(ctx, makeKlines(falling, nil), ports.MarketState{MarkPrice: 20000, QuoteBalance: 100000})
		require.NoError(t, err)
		assert.InDelta(t, 0.0, snap.RSI, 1e-9)
		assert.Equal(t, domain.SignalBuy, signal)
		assert.Equal(t, 0.05, qty)
	})

	t.Run("zero balance gives zero quantity", func(t *testing.T) {
		signal, qty, _, err := s.Decide(ctx, makeKlines(falling, nil), ports.MarketState{MarkPrice: 20000})
		require.NoError(t, err)
		assert.Equal(t, domain.SignalBuy, signal)
		assert.Zero(t, qty)
	})
}

func TestDecide_InsufficientCandles(t *testing.T) {
	logger := &mockLogger{}
	rm := risk.NewRiskManager(risk.RiskConfig{RiskPercentage: 1})
	s, err := New(Config{Name: domain.StrategyConservative, Indicators: testParams, Quantity: 0.003}, rm, logger)
	require.NoError(t, err)

	signal, qty, _, err := s.Decide(context.Background(), makeKlines(repeat(100, 10), nil), ports.MarketState{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrIndicatorUnavailable)
	assert.Equal(t, domain.SignalHold, signal)
	assert.Zero(t, qty)
	assert.Contains(t, logger.warnMsgs, "Indicators unavailable")
}
