package app

import (
	"context"
	"fmt"

	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
)

// Startup synchronises the clock and clears resting orders left by a previous run.
func (s *TradingService) Startup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exchange.SetServerTime(ctx); err != nil {
		s.logger.Warn(ctx, "Failed to synchronize server time, continuing", map[string]interface{}{"error": err.Error()})
	} else {
		s.logger.Info(ctx, "Server time synchronized")
	}

	if err := s.exchange.CancelAllOpenOrders(ctx, s.cfg.Symbol); err != nil {
		s.logger.Error(ctx, err, "Failed to cancel open orders on startup", map[string]interface{}{"symbol": s.cfg.Symbol})
		return fmt.Errorf("startup: failed to cancel open orders: %w", err)
	}
	s.logger.Info(ctx, "Open orders cleared", map[string]interface{}{"symbol": s.cfg.Symbol, "strategy": s.strategy.Name()})
	s.notifier.NotifyStatus(ctx, fmt.Sprintf("🚀 Bot started: %s %s (%s)", s.cfg.Symbol, s.cfg.Interval, s.strategy.Name()))
	return nil
}

// Shutdown flattens the position. Failures are logged only.
func (s *TradingService) Shutdown(ctx context.Context) {
	s.logger.Info(ctx, "Shutting down trading service, closing positions...")
	if _, err := s.CloseAllPositions(ctx); err != nil {
		s.logger.Error(ctx, err, "Failed to close positions on shutdown")
		s.notifier.NotifyError(ctx, "shutdown", err)
		return
	}
	s.notifier.NotifyStatus(ctx, fmt.Sprintf("🛑 Bot stopped: %s flattened", s.cfg.Symbol))
}

// CloseAllPositions submits a reduce-only market order for the whole position,
// if any, and cancels remaining open orders. The returned order is nil when
// the position was already flat.
func (s *TradingService) CloseAllPositions(ctx context.Context) (*ports.OrderResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeAllPositions(ctx)
}

func (s *TradingService) closeAllPositions(ctx context.Context) (*ports.OrderResponse, error) {
	ctx = context.WithoutCancel(ctx)
	op := "CloseAllPositions"
	symbol := s.cfg.Symbol

	position, err := s.exchange.GetPosition(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get position: %w", op, err)
	}

	var order *ports.OrderResponse
	if !position.IsFlat() {
		prec, err := s.exchange.GetSymbolPrecision(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to get symbol precision: %w", op, err)
		}
		qtyStr := risk.FormatDecimal(position.AbsAmount(), prec.QuantityPrecision)
		s.logger.Info(ctx, op+": Placing reduce-only market order...", map[string]interface{}{
			"side":     position.CloseSide(),
			"quantity": qtyStr,
		})
		order, err = s.exchange.PlaceMarketOrder(ctx, symbol, position.CloseSide(), qtyStr, true)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to place closing order: %w", op, err)
		}
		s.logger.Info(ctx, op+": Position closed", map[string]interface{}{"orderID": order.OrderID})
	} else {
		s.logger.Info(ctx, op+": No open position", map[string]interface{}{"symbol": symbol})
	}

	if err := s.exchange.CancelAllOpenOrders(ctx, symbol); err != nil {
		return order, fmt.Errorf("%s: failed to cancel open orders: %w", op, err)
	}
	return order, nil
}
