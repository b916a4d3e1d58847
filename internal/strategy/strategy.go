package strategy

import (
	"context"
	"fmt"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
)

// Config holds parameters for the trading strategy.
type Config struct {
	Name       domain.StrategyName
	Indicators IndicatorParams

	// Conservative
	Quantity float64 // Fixed order size

	// Aggressive
	RSIBuyThreshold  float64 // BUY when RSI is below
	RSISellThreshold float64 // SELL when RSI is above
}

// Strategy implements the trading logic.
type Strategy struct {
	cfg    Config
	risk   *risk.RiskManager
	logger ports.Logger
}

// New creates a new Strategy instance. The risk manager sizes aggressive orders.
func New(cfg Config, rm *risk.RiskManager, logger ports.Logger) (*Strategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy")
	}
	if rm == nil {
		return nil, fmt.Errorf("risk manager is required for strategy")
	}
	if _, ok := domain.ParseStrategyName(string(cfg.Name)); !ok {
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}
	p := cfg.Indicators
	if p.SMAFastPeriod <= 0 || p.SMASlowPeriod <= 0 || p.RSIPeriod <= 1 || p.BBLength <= 1 || p.VolumeAvgWindow <= 0 {
		return nil, fmt.Errorf("strategy periods must be positive")
	}
	if p.BBStdDev <= 0 {
		return nil, fmt.Errorf("bollinger band deviation must be positive")
	}
	if cfg.Name == domain.StrategyConservative && cfg.Quantity <= 0 {
		return nil, fmt.Errorf("conservative strategy requires a positive quantity")
	}
	if cfg.Name == domain.StrategyAggressive && cfg.RSIBuyThreshold > cfg.RSISellThreshold {
		return nil, fmt.Errorf("RSI buy threshold must not exceed sell threshold")
	}
	return &Strategy{cfg: cfg, risk: rm, logger: logger}, nil
}

// Name returns the configured strategy selector.
func (s *Strategy) Name() domain.StrategyName {
	return s.cfg.Name
}

// RequiredDataPoints returns the minimum number of klines needed for the strategy calculations.
func (s *Strategy) RequiredDataPoints() int {
	return s.cfg.Indicators.RequiredDataPoints()
}

// Decide computes indicators and derives the signal and order quantity.
// Quantity is zero for HOLD and for an aggressive signal with no balance.
func (s *Strategy) Decide(ctx context.Context, klines []*domain.Kline, state ports.MarketState) (domain.Signal, float64, domain.IndicatorSnapshot, error) {
	snap, err := ComputeIndicators(klines, s.cfg.Indicators)
	if err != nil {
		s.logger.Warn(ctx, "Indicators unavailable", map[string]interface{}{"candles": len(klines), "required": s.RequiredDataPoints(), "error": err.Error()})
		return domain.SignalHold, 0, domain.IndicatorSnapshot{}, err
	}

	var signal domain.Signal
	var quantity float64
	switch s.cfg.Name {
	case domain.StrategyAggressive:
		signal = AggressiveSignal(snap.RSI, s.cfg.RSIBuyThreshold, s.cfg.RSISellThreshold)
		if signal != domain.SignalHold {
			quantity = s.risk.GetPositionSize(state.QuoteBalance, state.MarkPrice)
		}
	default:
		signal = ConservativeSignal(snap)
		if signal != domain.SignalHold {
			quantity = s.cfg.Quantity
		}
	}

	s.logger.Debug(ctx, "Strategy evaluated", map[string]interface{}{
		"strategy":  s.cfg.Name,
		"signal":    signal,
		"quantity":  quantity,
		"close":     snap.LastClose,
		"rsi":       snap.RSI,
		"bbUpper":   snap.BBUpper,
		"bbLower":   snap.BBLower,
		"volume":    snap.LastVolume,
		"volumeAvg": snap.VolumeAvg,
	})
	return signal, quantity, snap, nil
}

// ConservativeSignal is the Bollinger breakout rule: BUY above the upper band,
// SELL below the lower band only on above-average volume.
func ConservativeSignal(snap domain.IndicatorSnapshot) domain.Signal {
	switch {
	case snap.LastClose > snap.BBUpper:
		return domain.SignalBuy
	case snap.LastClose < snap.BBLower && snap.LastVolume > snap.VolumeAvg:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}

// AggressiveSignal is the RSI threshold rule.
func AggressiveSignal(rsi, buyThreshold, sellThreshold float64) domain.Signal {
	switch {
	case rsi < buyThreshold:
		return domain.SignalBuy
	case rsi > sellThreshold:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
