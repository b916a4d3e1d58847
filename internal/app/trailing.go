package app

import (
	"context"
	"fmt"

	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
)

// Trailing stop statuses.
const (
	TrailDisabled         = "disabled"
	TrailNoPosition       = "no_position"
	TrailProfitNotReached = "profit_not_reached"
	TrailIgnored          = "ignored"
	TrailUpdated          = "updated"
)

// TrailingStopResult describes what one trailing stop check did.
type TrailingStopResult struct {
	Status     string               `json:"status"`
	Reason     string               `json:"reason,omitempty"`
	Symbol     string               `json:"symbol"`
	Amount     float64              `json:"position_amount,omitempty"`
	EntryPrice float64              `json:"entry_price,omitempty"`
	MarkPrice  float64              `json:"mark_price,omitempty"`
	Profit     float64              `json:"profit,omitempty"`
	StopPrice  float64              `json:"stop_price,omitempty"`
	Order      *ports.OrderResponse `json:"order,omitempty"`
}

// UpdateTrailingStop moves the protective stop to breakeven once the open
// position has gained at least the configured callback fraction. The stop only
// ever moves in the position's favour.
func (s *TradingService) UpdateTrailingStop(ctx context.Context) (*TrailingStopResult, error) {
	symbol := s.cfg.Symbol
	if !s.cfg.TrailingStopEnabled {
		return &TrailingStopResult{Status: TrailDisabled, Symbol: symbol}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	op := "UpdateTrailingStop"

	position, err := s.exchange.GetPosition(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get position: %w", op, err)
	}
	if position.IsFlat() {
		return &TrailingStopResult{Status: TrailNoPosition, Symbol: symbol}, nil
	}

	mark, err := s.exchange.GetMarkPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get mark price: %w", op, err)
	}

	isLong := position.IsLong()
	result := &TrailingStopResult{
		Symbol:     symbol,
		Amount:     position.Amount,
		EntryPrice: position.EntryPrice,
		MarkPrice:  mark,
		Profit:     risk.ProfitFraction(position.EntryPrice, mark, isLong),
	}
	if !s.risk.TrailArmed(result.Profit) {
		result.Status = TrailProfitNotReached
		return result, nil
	}

	prec, err := s.exchange.GetSymbolPrecision(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get symbol precision: %w", op, err)
	}
	result.StopPrice = s.risk.GetBreakevenPrice(position.EntryPrice, isLong, prec.PricePrecision)

	orders, err := s.exchange.GetOpenOrders(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list open orders: %w", op, err)
	}
	closeSide := position.CloseSide()
	for _, o := range orders {
		if !o.IsStop() || o.Side != closeSide {
			continue
		}
		if risk.IsAtLeastAsFavorable(o.StopPrice, result.StopPrice, isLong) {
			s.logger.Debug(ctx, op+": Existing stop already better", map[string]interface{}{
				"existingStop":  o.StopPrice,
				"breakevenStop": result.StopPrice,
			})
			result.Status = TrailIgnored
			result.Reason = "already better"
			return result, nil
		}
	}

	// Cancel and replace must not be split by the caller going away.
	ctx = context.WithoutCancel(ctx)
	if err := s.exchange.CancelAllOpenOrders(ctx, symbol); err != nil {
		return nil, fmt.Errorf("%s: failed to cancel open orders: %w", op, err)
	}

	qtyStr := risk.FormatDecimal(position.AbsAmount(), prec.QuantityPrecision)
	priceStr := risk.FormatDecimal(result.StopPrice, prec.PricePrecision)
	order, err := s.exchange.PlaceStopMarketOrder(ctx, symbol, closeSide, qtyStr, priceStr)
	if err != nil {
		// Open orders were cancelled; the position is now unprotected.
		s.notifier.NotifyError(ctx, "trailing stop", err)
		return nil, fmt.Errorf("%s: failed to place breakeven stop: %w", op, err)
	}

	s.logger.Info(ctx, op+": Stop moved to breakeven", map[string]interface{}{
		"stopPrice": priceStr,
		"quantity":  qtyStr,
		"profit":    result.Profit,
		"orderID":   order.OrderID,
	})
	result.Status = TrailUpdated
	result.Order = order
	return result, nil
}
