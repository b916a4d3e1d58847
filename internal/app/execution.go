package app

import (
	"context"
	"fmt"

	"futuresBot/internal/domain"
	"futuresBot/internal/ports"
	"futuresBot/internal/risk"
)

// Sequence steps, reported by PartialExecutionError.
const (
	StepMarkPrice   = "mark_price"
	StepStopCompute = "stop_price"
	StepStopLoss    = "stop_loss"
)

// PartialExecutionError reports a sequence that stopped after the main order
// was accepted. The position on the exchange has changed but is unprotected.
type PartialExecutionError struct {
	Step      string
	MainOrder *ports.OrderResponse
	Err       error
}

func (e *PartialExecutionError) Error() string {
	orderID := int64(0)
	if e.MainOrder != nil {
		orderID = e.MainOrder.OrderID
	}
	return fmt.Sprintf("order sequence halted at %s after main order %d was accepted: %v", e.Step, orderID, e.Err)
}

func (e *PartialExecutionError) Unwrap() error {
	return e.Err
}

// ExecutionResult holds the orders placed by one sequence.
type ExecutionResult struct {
	MainOrder *ports.OrderResponse `json:"main_order"`
	StopOrder *ports.OrderResponse `json:"stop_order"`
	StopPrice float64              `json:"stop_price"`
	MarkPrice float64              `json:"mark_price"`
}

// executeOrderSequence cancels resting orders, submits the market order and
// protects the new position with a reduce-only stop sized to stopQuantity.
// Any failure aborts the remaining steps.
func (s *TradingService) executeOrderSequence(ctx context.Context, side domain.OrderSide, orderQuantity, stopQuantity float64) (*ExecutionResult, error) {
	// Once submission starts the sequence runs to completion or failure;
	// a caller giving up must not strand a position without its stop.
	ctx = context.WithoutCancel(ctx)
	op := "executeOrderSequence"
	symbol := s.cfg.Symbol

	prec, err := s.exchange.GetSymbolPrecision(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get symbol precision: %w", op, err)
	}

	if err := s.exchange.CancelAllOpenOrders(ctx, symbol); err != nil {
		return nil, fmt.Errorf("%s: failed to cancel open orders: %w", op, err)
	}

	qtyStr := risk.FormatDecimal(orderQuantity, prec.QuantityPrecision)
	s.logger.Info(ctx, op+": Placing market order...", map[string]interface{}{
		"symbol":   symbol,
		"side":     side,
		"quantity": qtyStr,
	})
	mainOrder, err := s.exchange.PlaceMarketOrder(ctx, symbol, side, qtyStr, false)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to place market order: %w", op, err)
	}
	s.logger.Info(ctx, op+": Market order accepted", map[string]interface{}{
		"orderID":  mainOrder.OrderID,
		"status":   mainOrder.Status,
		"avgPrice": mainOrder.AvgPrice,
	})
	result := &ExecutionResult{MainOrder: mainOrder}

	mark, err := s.exchange.GetMarkPrice(ctx, symbol)
	if err != nil {
		return result, s.partial(ctx, StepMarkPrice, mainOrder, err)
	}
	result.MarkPrice = mark

	isLong := side == domain.Buy
	stopPrice := s.risk.GetStopLoss(mark, isLong, prec.PricePrecision)
	if stopPrice <= 0 {
		return result, s.partial(ctx, StepStopCompute, mainOrder, fmt.Errorf("non-positive stop price %v from mark %v", stopPrice, mark))
	}
	result.StopPrice = stopPrice

	stopQtyStr := risk.FormatDecimal(stopQuantity, prec.QuantityPrecision)
	stopPriceStr := risk.FormatDecimal(stopPrice, prec.PricePrecision)
	s.logger.Info(ctx, op+": Placing stop-loss order...", map[string]interface{}{
		"side":      side.Opposite(),
		"quantity":  stopQtyStr,
		"stopPrice": stopPriceStr,
	})
	stopOrder, err := s.exchange.PlaceStopMarketOrder(ctx, symbol, side.Opposite(), stopQtyStr, stopPriceStr)
	if err != nil {
		return result, s.partial(ctx, StepStopLoss, mainOrder, err)
	}
	result.StopOrder = stopOrder
	s.logger.Info(ctx, op+": Stop-loss order accepted", map[string]interface{}{"orderID": stopOrder.OrderID})
	return result, nil
}

func (s *TradingService) partial(ctx context.Context, step string, mainOrder *ports.OrderResponse, err error) error {
	perr := &PartialExecutionError{Step: step, MainOrder: mainOrder, Err: err}
	s.logger.Error(ctx, perr, "CRITICAL: position opened without protective stop", map[string]interface{}{
		"step":    step,
		"orderID": mainOrder.OrderID,
	})
	return perr
}
