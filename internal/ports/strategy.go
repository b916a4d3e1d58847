package ports

import (
	"context"

	"futuresBot/internal/domain"
)

// MarketState is the account and exchange context a strategy needs besides candles.
type MarketState struct {
	MarkPrice    float64
	QuoteBalance float64
}

// Strategy defines the interface for trading strategies.
type Strategy interface {
	// Name returns the configured strategy selector.
	Name() domain.StrategyName

	// RequiredDataPoints returns the minimum number of klines needed for the strategy calculations.
	RequiredDataPoints() int

	// Decide computes indicators over klines and derives a signal and quantity.
	// It returns ErrIndicatorUnavailable when the series is too short or yields no value.
	Decide(ctx context.Context, klines []*domain.Kline, state MarketState) (domain.Signal, float64, domain.IndicatorSnapshot, error)
}
